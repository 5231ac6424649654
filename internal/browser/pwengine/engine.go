// Package pwengine adapts playwright-go to the browser capability.
package pwengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Options configures the launched browser
type Options struct {
	Browser  string
	Headless bool
	Log      *logging.Sink
}

// Engine owns the playwright driver and one launched browser
type Engine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	log     *logging.Sink

	closeOnce sync.Once
	closeErr  error
}

// Install downloads the driver and the named browsers.
func Install(browsers ...string) error {
	if len(browsers) == 0 {
		browsers = []string{"chromium"}
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: browsers}); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// Launch starts playwright and launches the configured browser.
func Launch(opts Options) (*Engine, error) {
	log := opts.Log
	if log == nil {
		log = logging.NewNop()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "", "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown browser %q", opts.Browser)
	}

	start := time.Now()
	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", browserType.Name(), err)
	}
	log.Perf("browser launch", start, zap.String("browser", browserType.Name()), zap.String("version", b.Version()))

	return &Engine{pw: pw, browser: b, log: log}, nil
}

// Name implements browser.Engine
func (e *Engine) Name() string { return "playwright" }

// NewContext implements browser.Engine
func (e *Engine) NewContext(ctx context.Context, opts browser.ContextOptions) (browser.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	options := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(opts.IgnoreHTTPSErrors),
	}
	if opts.BaseURL != "" {
		options.BaseURL = playwright.String(opts.BaseURL)
	}
	if opts.Locale != "" {
		options.Locale = playwright.String(opts.Locale)
	}
	if opts.TimezoneID != "" {
		options.TimezoneId = playwright.String(opts.TimezoneID)
	}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		options.Viewport = &playwright.Size{Width: opts.ViewportWidth, Height: opts.ViewportHeight}
	}
	if opts.RecordVideoDir != "" {
		options.RecordVideo = &playwright.RecordVideo{Dir: opts.RecordVideoDir}
	}

	bctx, err := e.browser.NewContext(options)
	if err != nil {
		return nil, translate(err, "creating browser context")
	}
	return &Context{bctx: bctx}, nil
}

// Close closes the browser and stops the driver
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = errors.Join(e.browser.Close(), e.pw.Stop())
	})
	return e.closeErr
}

// Context wraps a playwright browser context
type Context struct {
	bctx playwright.BrowserContext

	mu    sync.Mutex
	pages []*Page
}

// NewPage implements browser.Context
func (c *Context) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pg, err := c.bctx.NewPage()
	if err != nil {
		return nil, translate(err, "opening page")
	}
	p := &Page{page: pg}
	c.mu.Lock()
	c.pages = append(c.pages, p)
	c.mu.Unlock()
	return p, nil
}

// Close implements browser.Context
func (c *Context) Close() error {
	return translate(c.bctx.Close(), "closing browser context")
}

// StartTrace implements browser.ArtifactRecorder
func (c *Context) StartTrace(name string) error {
	err := c.bctx.Tracing().Start(playwright.TracingStartOptions{
		Name:        playwright.String(name),
		Screenshots: playwright.Bool(true),
		Snapshots:   playwright.Bool(true),
	})
	return translate(err, "starting trace")
}

// StopTrace implements browser.ArtifactRecorder
func (c *Context) StopTrace(path string) error {
	if path == "" {
		return translate(c.bctx.Tracing().Stop(), "stopping trace")
	}
	return translate(c.bctx.Tracing().Stop(path), "stopping trace")
}

// DiscardVideos deletes the videos of every page. Only valid after Close.
func (c *Context) DiscardVideos() error {
	c.mu.Lock()
	pages := c.pages
	c.mu.Unlock()

	var errs []error
	for _, p := range pages {
		if v := p.page.Video(); v != nil {
			if err := v.Delete(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%s: %w: %w", what, browser.ErrTimeout, err)
	case isStrictViolation(err):
		return fmt.Errorf("%s: %w: %w", what, browser.ErrStrictMode, err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%s: %w: %w", what, browser.ErrClosed, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", what, browser.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
