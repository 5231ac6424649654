// Package pages holds the page objects of the storefront and the bounded
// interaction primitives they are built from.
package pages

import (
	"context"
	"strings"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/session"
	"go.uber.org/zap"
)

// Base implements the interaction primitives over a borrowed session.
// A zero timeout argument means the session's action timeout.
type Base struct {
	Session *session.Session
}

// NewBase wraps a session
func NewBase(s *session.Session) Base {
	return Base{Session: s}
}

func (b Base) page() browser.Page { return b.Session.Page }

func (b Base) actionTimeout(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	return b.Session.Timeouts.Action
}

// Navigate loads a path or absolute URL within the navigation timeout
func (b Base) Navigate(ctx context.Context, target string) error {
	log := b.Session.Log
	bound := b.Session.Timeouts.Navigation
	start := time.Now()
	log.Debug("navigating", zap.String("target", target))

	if err := b.page().Goto(ctx, target, bound); err != nil {
		log.Error("navigation failed", err, zap.String("target", target))
		return translate(err, "navigate", nil, bound, start, map[string]any{"target": target, "timeout": bound})
	}

	log.Debug("navigation complete", zap.String("target", target), zap.String("url", b.page().URL()))
	return nil
}

// WaitForURL waits until the page URL matches a glob pattern such as "**/inventory.html"
func (b Base) WaitForURL(ctx context.Context, pattern string) error {
	bound := b.Session.Timeouts.Navigation
	start := time.Now()
	if err := b.page().WaitForURL(ctx, pattern, bound); err != nil {
		b.Session.Log.Error("url wait failed", err, zap.String("pattern", pattern), zap.String("url", b.page().URL()))
		return translate(err, "wait for url", nil, bound, start, map[string]any{"pattern": pattern})
	}
	return nil
}

// WaitForReady waits until the element reaches state
func (b Base) WaitForReady(ctx context.Context, loc browser.Locator, state browser.State, timeout time.Duration) error {
	bound := b.actionTimeout(timeout)
	start := time.Now()
	if err := b.page().WaitFor(ctx, loc, state, bound); err != nil {
		b.Session.Log.Error("element wait failed", err,
			zap.Stringer("locator", loc),
			zap.String("state", string(state)),
			zap.Duration("bound", bound))
		return translate(err, "wait for "+string(state), &loc, bound, start, map[string]any{"state": state})
	}
	b.Session.Log.Debug("element ready", zap.Stringer("locator", loc), zap.String("state", string(state)))
	return nil
}

// WaitForElement waits until the element is visible
func (b Base) WaitForElement(ctx context.Context, loc browser.Locator) error {
	return b.WaitForReady(ctx, loc, browser.StateVisible, 0)
}

// WaitForElementToDisappear waits until the element is hidden or gone
func (b Base) WaitForElementToDisappear(ctx context.Context, loc browser.Locator) error {
	return b.WaitForReady(ctx, loc, browser.StateHidden, 0)
}

// Fill waits for the field, clears it and types text. The text is never logged.
func (b Base) Fill(ctx context.Context, loc browser.Locator, text string, timeout time.Duration) error {
	bound := b.actionTimeout(timeout)
	params := map[string]any{"text_length": len(text), "timeout": bound}
	b.Session.Log.Debug("filling", zap.Stringer("locator", loc), zap.Int("text_length", len(text)))

	fail := func(err error) error {
		b.Session.Log.Error("fill failed", err, zap.Stringer("locator", loc), zap.Int("text_length", len(text)))
		return &InteractionError{Op: "fill", Locator: loc.String(), Params: params, Err: err}
	}

	start := time.Now()
	if err := b.page().WaitFor(ctx, loc, browser.StateVisible, bound); err != nil {
		return fail(translate(err, "wait for "+string(browser.StateVisible), &loc, bound, start, nil))
	}
	if err := b.page().Clear(ctx, loc, bound); err != nil {
		return fail(translate(err, "clear", &loc, bound, start, nil))
	}
	if err := b.page().Fill(ctx, loc, text, bound); err != nil {
		return fail(translate(err, "type", &loc, bound, start, nil))
	}
	return nil
}

// Click clicks the element once it is actionable
func (b Base) Click(ctx context.Context, loc browser.Locator) error {
	bound := b.actionTimeout(0)
	start := time.Now()
	if err := b.page().Click(ctx, loc, bound); err != nil {
		b.Session.Log.Error("click failed", err, zap.Stringer("locator", loc))
		return translate(err, "click", &loc, bound, start, map[string]any{"timeout": bound})
	}
	b.Session.Log.Debug("clicked", zap.Stringer("locator", loc))
	return nil
}

// SelectOption selects an option by value
func (b Base) SelectOption(ctx context.Context, loc browser.Locator, value string) error {
	bound := b.actionTimeout(0)
	start := time.Now()
	if err := b.page().SelectOption(ctx, loc, value, bound); err != nil {
		b.Session.Log.Error("select failed", err, zap.Stringer("locator", loc), zap.String("value", value))
		return translate(err, "select option", &loc, bound, start, map[string]any{"value": value})
	}
	b.Session.Log.Debug("selected", zap.Stringer("locator", loc), zap.String("value", value))
	return nil
}

// ReadText returns the element text, trimmed. An empty element yields "".
func (b Base) ReadText(ctx context.Context, loc browser.Locator) (string, error) {
	bound := b.actionTimeout(0)
	start := time.Now()
	text, err := b.page().TextContent(ctx, loc, bound)
	if err != nil {
		b.Session.Log.Error("read text failed", err, zap.Stringer("locator", loc))
		return "", translate(err, "read text", &loc, bound, start, nil)
	}
	return strings.TrimSpace(text), nil
}

// ReadAllTexts returns the trimmed text of every match in document order
func (b Base) ReadAllTexts(ctx context.Context, loc browser.Locator) ([]string, error) {
	start := time.Now()
	texts, err := b.page().AllTextContents(ctx, loc)
	if err != nil {
		b.Session.Log.Error("read texts failed", err, zap.Stringer("locator", loc))
		return nil, translate(err, "read all texts", &loc, 0, start, nil)
	}
	for i := range texts {
		texts[i] = strings.TrimSpace(texts[i])
	}
	return texts, nil
}

// ReadAttribute returns the attribute value; ok is false when it is absent
func (b Base) ReadAttribute(ctx context.Context, loc browser.Locator, name string) (string, bool, error) {
	bound := b.actionTimeout(0)
	start := time.Now()
	value, ok, err := b.page().Attribute(ctx, loc, name, bound)
	if err != nil {
		b.Session.Log.Error("read attribute failed", err, zap.Stringer("locator", loc), zap.String("attribute", name))
		return "", false, translate(err, "read attribute", &loc, bound, start, map[string]any{"attribute": name})
	}
	return value, ok, nil
}

// IsVisible reports visibility. A failed query is logged and reported as not visible.
func (b Base) IsVisible(ctx context.Context, loc browser.Locator) bool {
	visible, err := b.page().IsVisible(ctx, loc)
	if err != nil {
		b.Session.Log.Warn("visibility check failed", zap.Stringer("locator", loc), zap.Error(err))
		return false
	}
	return visible
}

// IsEnabled reports whether the element is enabled
func (b Base) IsEnabled(ctx context.Context, loc browser.Locator) (bool, error) {
	bound := b.actionTimeout(0)
	start := time.Now()
	enabled, err := b.page().IsEnabled(ctx, loc, bound)
	if err != nil {
		b.Session.Log.Error("enabled check failed", err, zap.Stringer("locator", loc))
		return false, translate(err, "is enabled", &loc, bound, start, nil)
	}
	return enabled, nil
}

// Count returns the number of matches
func (b Base) Count(ctx context.Context, loc browser.Locator) (int, error) {
	start := time.Now()
	n, err := b.page().Count(ctx, loc)
	if err != nil {
		b.Session.Log.Error("count failed", err, zap.Stringer("locator", loc))
		return 0, translate(err, "count", &loc, 0, start, nil)
	}
	return n, nil
}

// CaptureScreenshot writes "<label>-<millis>.png" into the session artifact
// directory and returns its path
func (b Base) CaptureScreenshot(ctx context.Context, label string) (string, error) {
	start := time.Now()
	path, err := b.Session.Artifacts.NewFile(label, "png")
	if err != nil {
		b.Session.Log.Error("screenshot directory unavailable", err, zap.String("label", label))
		return "", &InteractionError{Op: "screenshot", Params: map[string]any{"label": label}, Err: err}
	}
	if err := b.page().Screenshot(ctx, path); err != nil {
		b.Session.Log.Error("screenshot failed", err, zap.String("path", path))
		return "", translate(err, "screenshot", nil, 0, start, map[string]any{"label": label})
	}
	b.Session.Log.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

// Reload reloads the current document
func (b Base) Reload(ctx context.Context) error {
	bound := b.Session.Timeouts.Navigation
	start := time.Now()
	if err := b.page().Reload(ctx, bound); err != nil {
		b.Session.Log.Error("reload failed", err, zap.String("url", b.page().URL()))
		return translate(err, "reload", nil, bound, start, nil)
	}
	return nil
}

// Title returns the document title
func (b Base) Title(ctx context.Context) (string, error) {
	title, err := b.page().Title(ctx)
	if err != nil {
		return "", translate(err, "title", nil, 0, time.Now(), nil)
	}
	return title, nil
}

// CurrentURL returns the page URL
func (b Base) CurrentURL() string {
	return b.page().URL()
}
