// Package browser defines the engine-neutral browser capability the page
// objects are written against. Engines live in the sub packages.
package browser

import (
	"context"
	"errors"
	"time"
)

// Engine sentinels. Engines wrap their native errors with these so callers
// can match with errors.Is regardless of the engine in use.
var (
	ErrTimeout    = errors.New("browser: timeout exceeded")
	ErrNotFound   = errors.New("browser: element not found")
	ErrStrictMode = errors.New("browser: locator resolved to more than one element")
	ErrClosed     = errors.New("browser: page closed")
)

// State is the element state a wait blocks on.
type State string

// Element states
const (
	StateVisible  State = "visible"
	StateHidden   State = "hidden"
	StateAttached State = "attached"
	StateDetached State = "detached"
)

// ContextOptions configures an isolated browser context.
type ContextOptions struct {
	BaseURL           string
	Locale            string
	TimezoneID        string
	IgnoreHTTPSErrors bool
	ViewportWidth     int
	ViewportHeight    int
	// RecordVideoDir enables video recording when the engine supports it.
	RecordVideoDir string
}

// Engine is a launched browser. It is shared per process; contexts are not.
type Engine interface {
	Name() string
	NewContext(ctx context.Context, opts ContextOptions) (Context, error)
	Close() error
}

// Context is an isolated browser context with its own cookies and storage.
type Context interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// ArtifactRecorder is implemented by contexts that can record traces and videos.
type ArtifactRecorder interface {
	StartTrace(name string) error
	// StopTrace writes the trace to path, or discards it when path is empty.
	StopTrace(path string) error
	// DiscardVideos deletes the videos recorded by the context's pages.
	DiscardVideos() error
}

// Page is a single tab. Every element operation re-resolves its locator.
// Timeouts of zero fall back to the context deadline only.
type Page interface {
	Goto(ctx context.Context, url string, timeout time.Duration) error
	Reload(ctx context.Context, timeout time.Duration) error
	URL() string
	Title(ctx context.Context) (string, error)
	WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error

	WaitFor(ctx context.Context, loc Locator, state State, timeout time.Duration) error
	Count(ctx context.Context, loc Locator) (int, error)
	Fill(ctx context.Context, loc Locator, text string, timeout time.Duration) error
	Clear(ctx context.Context, loc Locator, timeout time.Duration) error
	Click(ctx context.Context, loc Locator, timeout time.Duration) error
	SelectOption(ctx context.Context, loc Locator, value string, timeout time.Duration) error

	TextContent(ctx context.Context, loc Locator, timeout time.Duration) (string, error)
	AllTextContents(ctx context.Context, loc Locator) ([]string, error)
	// Attribute returns ok == false when the attribute is absent.
	Attribute(ctx context.Context, loc Locator, name string, timeout time.Duration) (value string, ok bool, err error)
	IsVisible(ctx context.Context, loc Locator) (bool, error)
	IsEnabled(ctx context.Context, loc Locator, timeout time.Duration) (bool, error)

	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Bound returns the effective wait bound: the smaller of timeout and the time
// left until the context deadline. A zero timeout means the deadline only.
func Bound(ctx context.Context, timeout time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout
	}
	left := time.Until(deadline)
	if left < 0 {
		left = 0
	}
	if timeout <= 0 || left < timeout {
		return left
	}
	return timeout
}
