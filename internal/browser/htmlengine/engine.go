// Package htmlengine implements the browser capability over net/http and
// goquery. It does not run scripts; forms, links and the inline
// "this.form.submit()" change handler are emulated.
package htmlengine

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/logging"
	"go.uber.org/zap"
)

const (
	defaultPollInterval      = 20 * time.Millisecond
	defaultNavigationTimeout = 30 * time.Second
	maxRedirects             = 10
)

// Options configures the engine
type Options struct {
	Log               *logging.Sink
	PollInterval      time.Duration
	NavigationTimeout time.Duration
}

// Engine is the pure Go engine
type Engine struct {
	log          *logging.Sink
	pollInterval time.Duration
	navTimeout   time.Duration

	mu     sync.Mutex
	closed bool
}

// New creates an engine. There is no process to launch.
func New(opts Options) *Engine {
	e := &Engine{
		log:          opts.Log,
		pollInterval: opts.PollInterval,
		navTimeout:   opts.NavigationTimeout,
	}
	if e.log == nil {
		e.log = logging.NewNop()
	}
	if e.pollInterval <= 0 {
		e.pollInterval = defaultPollInterval
	}
	if e.navTimeout <= 0 {
		e.navTimeout = defaultNavigationTimeout
	}
	return e
}

// Name implements browser.Engine
func (e *Engine) Name() string { return "html" }

// NewContext creates a context with its own cookie jar.
func (e *Engine) NewContext(ctx context.Context, opts browser.ContextOptions) (browser.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, browser.ErrClosed
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.IgnoreHTTPSErrors {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Context{
		engine: e,
		opts:   opts,
		client: &http.Client{
			Transport: transport,
			Jar:       jar,
			// Redirects are followed by the page so the final URL is tracked.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Close implements browser.Engine
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Context is an isolated set of pages sharing one cookie jar
type Context struct {
	engine *Engine
	opts   browser.ContextOptions
	client *http.Client

	mu      sync.Mutex
	pages   []*Page
	closed  bool
	tracing bool
	trace   []TraceEvent
}

// TraceEvent is a recorded page action
type TraceEvent struct {
	Time    time.Time `json:"time"`
	Action  string    `json:"action"`
	URL     string    `json:"url"`
	Locator string    `json:"locator,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// NewPage implements browser.Context
func (c *Context) NewPage(ctx context.Context) (browser.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, browser.ErrClosed
	}
	p := newPage(c)
	c.pages = append(c.pages, p)
	return p, nil
}

// Close implements browser.Context
func (c *Context) Close() error {
	c.mu.Lock()
	pages := c.pages
	c.pages = nil
	c.closed = true
	c.mu.Unlock()

	for _, p := range pages {
		_ = p.Close()
	}
	c.client.CloseIdleConnections()
	return nil
}

// StartTrace implements browser.ArtifactRecorder
func (c *Context) StartTrace(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracing = true
	c.trace = nil
	return nil
}

// StopTrace writes the recorded actions as JSON, or drops them when path is empty.
func (c *Context) StopTrace(path string) error {
	c.mu.Lock()
	events := c.trace
	c.tracing = false
	c.trace = nil
	c.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DiscardVideos is a no-op; the engine does not record video.
func (c *Context) DiscardVideos() error { return nil }

func (c *Context) record(action, url string, loc *browser.Locator, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tracing {
		return
	}
	ev := TraceEvent{Time: time.Now(), Action: action, URL: url}
	if loc != nil {
		ev.Locator = loc.String()
	}
	if err != nil {
		ev.Error = err.Error()
	}
	c.trace = append(c.trace, ev)
}

func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, browser.ErrTimeout) || errors.Is(err, browser.ErrClosed) {
		return fmt.Errorf("%s: %w", what, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", what, browser.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (c *Context) debug(msg string, fields ...zap.Field) {
	c.engine.log.Debug(msg, fields...)
}
