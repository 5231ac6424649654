package pwengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/playwright-community/playwright-go"
)

// Page wraps a playwright page. Playwright calls are not context aware, so
// every call is bounded by the smaller of its timeout and the context deadline.
type Page struct {
	page playwright.Page
}

// Goto implements browser.Page
func (p *Page) Goto(ctx context.Context, url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   bound(ctx, timeout),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return translate(err, "navigating to "+url)
}

// Reload implements browser.Page
func (p *Page) Reload(ctx context.Context, timeout time.Duration) error {
	_, err := p.page.Reload(playwright.PageReloadOptions{Timeout: bound(ctx, timeout)})
	return translate(err, "reloading")
}

// URL implements browser.Page
func (p *Page) URL() string { return p.page.URL() }

// Title implements browser.Page
func (p *Page) Title(ctx context.Context) (string, error) {
	title, err := p.page.Title()
	return title, translate(err, "reading title")
}

// WaitForURL implements browser.Page
func (p *Page) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	err := p.page.WaitForURL(pattern, playwright.PageWaitForURLOptions{Timeout: bound(ctx, timeout)})
	return translate(err, fmt.Sprintf("waiting for url %q", pattern))
}

// WaitFor implements browser.Page
func (p *Page) WaitFor(ctx context.Context, loc browser.Locator, state browser.State, timeout time.Duration) error {
	var s *playwright.WaitForSelectorState
	switch state {
	case browser.StateHidden:
		s = playwright.WaitForSelectorStateHidden
	case browser.StateAttached:
		s = playwright.WaitForSelectorStateAttached
	case browser.StateDetached:
		s = playwright.WaitForSelectorStateDetached
	default:
		s = playwright.WaitForSelectorStateVisible
	}
	err := p.locate(loc).WaitFor(playwright.LocatorWaitForOptions{State: s, Timeout: bound(ctx, timeout)})
	return translate(err, fmt.Sprintf("waiting for %s to be %s", loc, state))
}

// Count implements browser.Page
func (p *Page) Count(ctx context.Context, loc browser.Locator) (int, error) {
	n, err := p.locate(loc).Count()
	return n, translate(err, fmt.Sprintf("counting %s", loc))
}

// Fill implements browser.Page
func (p *Page) Fill(ctx context.Context, loc browser.Locator, text string, timeout time.Duration) error {
	err := p.locate(loc).Fill(text, playwright.LocatorFillOptions{Timeout: bound(ctx, timeout)})
	return translate(err, fmt.Sprintf("filling %s", loc))
}

// Clear implements browser.Page
func (p *Page) Clear(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	err := p.locate(loc).Clear(playwright.LocatorClearOptions{Timeout: bound(ctx, timeout)})
	return translate(err, fmt.Sprintf("clearing %s", loc))
}

// Click implements browser.Page
func (p *Page) Click(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	err := p.locate(loc).Click(playwright.LocatorClickOptions{Timeout: bound(ctx, timeout)})
	return translate(err, fmt.Sprintf("clicking %s", loc))
}

// SelectOption implements browser.Page
func (p *Page) SelectOption(ctx context.Context, loc browser.Locator, value string, timeout time.Duration) error {
	_, err := p.locate(loc).SelectOption(
		playwright.SelectOptionValues{Values: playwright.StringSlice(value)},
		playwright.LocatorSelectOptionOptions{Timeout: bound(ctx, timeout)},
	)
	return translate(err, fmt.Sprintf("selecting %q in %s", value, loc))
}

// TextContent implements browser.Page
func (p *Page) TextContent(ctx context.Context, loc browser.Locator, timeout time.Duration) (string, error) {
	text, err := p.locate(loc).TextContent(playwright.LocatorTextContentOptions{Timeout: bound(ctx, timeout)})
	return text, translate(err, fmt.Sprintf("reading text of %s", loc))
}

// AllTextContents implements browser.Page
func (p *Page) AllTextContents(ctx context.Context, loc browser.Locator) ([]string, error) {
	texts, err := p.locate(loc).AllTextContents()
	if texts == nil {
		texts = []string{}
	}
	return texts, translate(err, fmt.Sprintf("reading texts of %s", loc))
}

// Attribute reads the attribute in the page so a missing attribute can be
// told apart from an empty one.
func (p *Page) Attribute(ctx context.Context, loc browser.Locator, name string, timeout time.Duration) (string, bool, error) {
	v, err := p.locate(loc).Evaluate("(el, name) => el.getAttribute(name)", name,
		playwright.LocatorEvaluateOptions{Timeout: bound(ctx, timeout)})
	if err != nil {
		return "", false, translate(err, fmt.Sprintf("reading attribute %q of %s", name, loc))
	}
	s, ok := v.(string)
	return s, ok, nil
}

// IsVisible implements browser.Page
func (p *Page) IsVisible(ctx context.Context, loc browser.Locator) (bool, error) {
	visible, err := p.locate(loc).IsVisible()
	return visible, translate(err, fmt.Sprintf("checking %s is visible", loc))
}

// IsEnabled implements browser.Page
func (p *Page) IsEnabled(ctx context.Context, loc browser.Locator, timeout time.Duration) (bool, error) {
	enabled, err := p.locate(loc).IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: bound(ctx, timeout)})
	return enabled, translate(err, fmt.Sprintf("checking %s is enabled", loc))
}

// Screenshot implements browser.Page
func (p *Page) Screenshot(ctx context.Context, path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return translate(err, "capturing screenshot")
}

// Close implements browser.Page
func (p *Page) Close() error {
	return translate(p.page.Close(), "closing page")
}

func (p *Page) locate(loc browser.Locator) playwright.Locator {
	var l playwright.Locator
	if text := loc.HasText(); text != "" {
		l = p.page.Locator(loc.Selector, playwright.PageLocatorOptions{HasText: text})
	} else {
		l = p.page.Locator(loc.Selector)
	}
	if i, ok := loc.Index(); ok {
		l = l.Nth(i)
	}
	return l
}

// bound converts the effective wait bound to playwright milliseconds. An
// expired deadline maps to 1ms since 0 disables the playwright timeout.
func bound(ctx context.Context, timeout time.Duration) *float64 {
	b := browser.Bound(ctx, timeout)
	if b <= 0 {
		if _, ok := ctx.Deadline(); ok {
			return playwright.Float(1)
		}
		return nil
	}
	ms := float64(b) / float64(time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(ms)
}

func isStrictViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "strict mode violation")
}
