// Package cdpengine adapts chromedp to the browser capability. Element
// operations run as small scripts over the DevTools protocol and are
// polled until they succeed or the bound elapses.
package cdpengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const pollInterval = 50 * time.Millisecond

// Options configures the launched Chrome
type Options struct {
	Headless          bool
	IgnoreHTTPSErrors bool
	ExecPath          string
	Log               *logging.Sink
}

// Engine owns one Chrome process
type Engine struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	log           *logging.Sink

	closeOnce sync.Once
}

// Launch starts Chrome. The process lives until Close.
func Launch(opts Options) (*Engine, error) {
	log := opts.Log
	if log == nil {
		log = logging.NewNop()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("ignore-certificate-errors", opts.IgnoreHTTPSErrors),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf(format, args...), zap.String("engine", "chromedp"))
		}),
	)

	start := time.Now()
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}
	log.Perf("browser launch", start, zap.String("browser", "chrome"))

	return &Engine{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		log:           log,
	}, nil
}

// Name implements browser.Engine
func (e *Engine) Name() string { return "chromedp" }

// NewContext creates an incognito browser context
func (e *Engine) NewContext(ctx context.Context, opts browser.ContextOptions) (browser.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.browserCtx.Err() != nil {
		return nil, browser.ErrClosed
	}
	return &Context{engine: e, opts: opts}, nil
}

// Close shuts Chrome down
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.browserCancel()
		e.allocCancel()
	})
	return nil
}

// Context is an isolated Chrome browser context. Its first page creates it.
type Context struct {
	engine *Engine
	opts   browser.ContextOptions

	mu     sync.Mutex
	pages  []*Page
	closed bool
}

// NewPage opens a tab in a fresh browser context
func (c *Context) NewPage(ctx context.Context) (browser.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, browser.ErrClosed
	}

	tabCtx, cancel := chromedp.NewContext(c.engine.browserCtx, chromedp.WithNewBrowserContext())

	setup := []chromedp.Action{}
	if c.opts.ViewportWidth > 0 && c.opts.ViewportHeight > 0 {
		setup = append(setup, chromedp.EmulateViewport(int64(c.opts.ViewportWidth), int64(c.opts.ViewportHeight)))
	}
	if c.opts.TimezoneID != "" {
		setup = append(setup, emulation.SetTimezoneOverride(c.opts.TimezoneID))
	}
	if c.opts.Locale != "" {
		setup = append(setup, emulation.SetLocaleOverride().WithLocale(c.opts.Locale))
	}

	runCtx, stop := withCaller(tabCtx, ctx, 0)
	defer stop()
	if err := chromedp.Run(runCtx, setup...); err != nil {
		cancel()
		return nil, translate(err, "opening tab")
	}

	p := &Page{tabCtx: tabCtx, cancel: cancel, baseURL: c.opts.BaseURL}
	c.pages = append(c.pages, p)
	return p, nil
}

// Close closes every tab of the context
func (c *Context) Close() error {
	c.mu.Lock()
	pages := c.pages
	c.pages = nil
	c.closed = true
	c.mu.Unlock()

	var errs []error
	for _, p := range pages {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// withCaller derives an operation context from the tab context that is also
// cancelled with the caller context and bounded by timeout.
func withCaller(tabCtx, caller context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if b := browser.Bound(caller, timeout); b > 0 {
		ctx, cancel = context.WithTimeout(tabCtx, b)
	} else if _, ok := caller.Deadline(); ok {
		ctx, cancel = context.WithTimeout(tabCtx, time.Millisecond)
	} else {
		ctx, cancel = context.WithCancel(tabCtx)
	}
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, browser.ErrTimeout), errors.Is(err, browser.ErrStrictMode),
		errors.Is(err, browser.ErrNotFound), errors.Is(err, browser.ErrClosed):
		return fmt.Errorf("%s: %w", what, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", what, browser.ErrTimeout, err)
	case errors.Is(err, chromedp.ErrInvalidContext):
		return fmt.Errorf("%s: %w: %w", what, browser.ErrClosed, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
