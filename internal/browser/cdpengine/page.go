package cdpengine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/chromedp/chromedp"
)

// resolveJS returns the elements a locator addresses, in document order.
const resolveJS = `function(sel, text, idx, indexed) {
  let els = Array.from(document.querySelectorAll(sel));
  if (text) els = els.filter(e => (e.textContent || '').includes(text));
  if (indexed) els = idx < els.length ? [els[idx]] : [];
  return els;
}`

// actionabilityJS reports the actionability of the single element a locator addresses.
const actionabilityJS = `function(el) {
  const style = getComputedStyle(el);
  const visible = !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length) &&
    style.visibility !== 'hidden';
  const enabled = !(el.disabled || el.closest('fieldset[disabled]'));
  return {visible, enabled};
}`

// actionJS performs an action on the single element a locator addresses.
const actionJS = `(function(sel, text, idx, indexed, kind, value) {
  const els = (%s)(sel, text, idx, indexed);
  if (els.length === 0) return {status: 'missing'};
  if (els.length > 1) return {status: 'strict', count: els.length};
  const el = els[0];
  const state = (%s)(el);
  switch (kind) {
  case 'state':
    return {status: 'ok', visible: state.visible, enabled: state.enabled};
  case 'text':
    return {status: 'ok', text: el.textContent || ''};
  case 'attr':
    return {status: 'ok', found: el.hasAttribute(value), text: el.getAttribute(value) || ''};
  }
  if (!state.visible || !state.enabled) return {status: 'notready'};
  switch (kind) {
  case 'click':
    el.click();
    break;
  case 'fill':
    el.focus();
    setValue(el, value);
    break;
  case 'select':
    if (!Array.from(el.options || []).some(o => o.value === value)) return {status: 'nooption'};
    setValue(el, value);
    break;
  }
  return {status: 'ok'};

  // the prototype setter bypasses per-instance value trackers such as
  // React's, so the input event carries a real change
  function setValue(el, value) {
    const proto = el instanceof HTMLTextAreaElement ? HTMLTextAreaElement.prototype
      : el instanceof HTMLSelectElement ? HTMLSelectElement.prototype
      : HTMLInputElement.prototype;
    Object.getOwnPropertyDescriptor(proto, 'value').set.call(el, value);
    el.dispatchEvent(new Event('input', {bubbles: true}));
    el.dispatchEvent(new Event('change', {bubbles: true}));
  }
})(%s)`

type actionResult struct {
	Status  string `json:"status"`
	Count   int    `json:"count"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
	Found   bool   `json:"found"`
}

// Page is a Chrome tab
type Page struct {
	tabCtx  context.Context
	cancel  context.CancelFunc
	baseURL string

	mu     sync.Mutex
	url    string
	closed bool
}

// Goto implements browser.Page
func (p *Page) Goto(ctx context.Context, target string, timeout time.Duration) error {
	resolved, err := browser.ResolveURL(p.baseURL, target)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", target, err)
	}
	return translate(p.run(ctx, timeout, chromedp.Navigate(resolved)), "navigating to "+resolved)
}

// Reload implements browser.Page
func (p *Page) Reload(ctx context.Context, timeout time.Duration) error {
	return translate(p.run(ctx, timeout, chromedp.Reload()), "reloading")
}

// URL implements browser.Page
func (p *Page) URL() string {
	var loc string
	ctx, cancel := context.WithTimeout(p.tabCtx, 2*time.Second)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Location(&loc)); err != nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.url
	}
	p.mu.Lock()
	p.url = loc
	p.mu.Unlock()
	return loc
}

// Title implements browser.Page
func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, 0, chromedp.Title(&title))
	return title, translate(err, "reading title")
}

// WaitForURL implements browser.Page
func (p *Page) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	err := p.poll(ctx, timeout, func(opCtx context.Context) (bool, error) {
		var loc string
		if err := chromedp.Run(opCtx, chromedp.Location(&loc)); err != nil {
			return false, err
		}
		return browser.MatchURL(pattern, loc), nil
	})
	return translate(err, fmt.Sprintf("waiting for url %q", pattern))
}

// WaitFor implements browser.Page
func (p *Page) WaitFor(ctx context.Context, loc browser.Locator, state browser.State, timeout time.Duration) error {
	err := p.poll(ctx, timeout, func(opCtx context.Context) (bool, error) {
		res, err := p.eval(opCtx, loc, "state", "")
		if err != nil {
			return false, err
		}
		switch res.Status {
		case "strict":
			return false, fmt.Errorf("%w: %s matched %d elements", browser.ErrStrictMode, loc, res.Count)
		case "missing":
			return state == browser.StateHidden || state == browser.StateDetached, nil
		}
		switch state {
		case browser.StateAttached:
			return true, nil
		case browser.StateDetached:
			return false, nil
		case browser.StateHidden:
			return !res.Visible, nil
		default:
			return res.Visible, nil
		}
	})
	return translate(err, fmt.Sprintf("waiting for %s to be %s", loc, state))
}

// Count implements browser.Page
func (p *Page) Count(ctx context.Context, loc browser.Locator) (int, error) {
	var n int
	expr := fmt.Sprintf("(%s)(%s).length", resolveJS, args(loc))
	err := p.run(ctx, 0, chromedp.Evaluate(expr, &n))
	return n, translate(err, fmt.Sprintf("counting %s", loc))
}

// Fill implements browser.Page
func (p *Page) Fill(ctx context.Context, loc browser.Locator, text string, timeout time.Duration) error {
	return translate(p.act(ctx, loc, "fill", text, timeout), fmt.Sprintf("filling %s", loc))
}

// Clear implements browser.Page
func (p *Page) Clear(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	return translate(p.act(ctx, loc, "fill", "", timeout), fmt.Sprintf("clearing %s", loc))
}

// Click implements browser.Page. A click that starts a navigation returns
// before the new document loads; callers wait for the next anchor.
func (p *Page) Click(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	return translate(p.act(ctx, loc, "click", "", timeout), fmt.Sprintf("clicking %s", loc))
}

// SelectOption implements browser.Page
func (p *Page) SelectOption(ctx context.Context, loc browser.Locator, value string, timeout time.Duration) error {
	return translate(p.act(ctx, loc, "select", value, timeout), fmt.Sprintf("selecting %q in %s", value, loc))
}

// TextContent implements browser.Page
func (p *Page) TextContent(ctx context.Context, loc browser.Locator, timeout time.Duration) (string, error) {
	res, err := p.attached(ctx, loc, "text", "", timeout)
	return res.Text, translate(err, fmt.Sprintf("reading text of %s", loc))
}

// AllTextContents implements browser.Page
func (p *Page) AllTextContents(ctx context.Context, loc browser.Locator) ([]string, error) {
	texts := []string{}
	expr := fmt.Sprintf("(%s)(%s).map(e => e.textContent || '')", resolveJS, args(loc))
	err := p.run(ctx, 0, chromedp.Evaluate(expr, &texts))
	return texts, translate(err, fmt.Sprintf("reading texts of %s", loc))
}

// Attribute implements browser.Page
func (p *Page) Attribute(ctx context.Context, loc browser.Locator, name string, timeout time.Duration) (string, bool, error) {
	res, err := p.attached(ctx, loc, "attr", name, timeout)
	if err != nil {
		return "", false, translate(err, fmt.Sprintf("reading attribute %q of %s", name, loc))
	}
	return res.Text, res.Found, nil
}

// IsVisible implements browser.Page
func (p *Page) IsVisible(ctx context.Context, loc browser.Locator) (bool, error) {
	var res actionResult
	err := p.run(ctx, 0, chromedp.ActionFunc(func(opCtx context.Context) error {
		var err error
		res, err = p.eval(opCtx, loc, "state", "")
		return err
	}))
	if err != nil {
		return false, translate(err, fmt.Sprintf("checking %s is visible", loc))
	}
	if res.Status == "strict" {
		return false, fmt.Errorf("%w: %s matched %d elements", browser.ErrStrictMode, loc, res.Count)
	}
	return res.Status == "ok" && res.Visible, nil
}

// IsEnabled implements browser.Page
func (p *Page) IsEnabled(ctx context.Context, loc browser.Locator, timeout time.Duration) (bool, error) {
	res, err := p.attached(ctx, loc, "state", "", timeout)
	return res.Enabled, translate(err, fmt.Sprintf("checking %s is enabled", loc))
}

// Screenshot implements browser.Page
func (p *Page) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := p.run(ctx, 0, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return translate(err, "capturing screenshot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return os.WriteFile(path, buf, 0o644)
}

// Close implements browser.Page
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.cancel()
	return nil
}

func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return browser.ErrClosed
	}
	opCtx, stop := withCaller(p.tabCtx, ctx, timeout)
	defer stop()
	return chromedp.Run(opCtx, actions...)
}

// poll runs check until it reports done, fails, or the bound elapses.
func (p *Page) poll(ctx context.Context, timeout time.Duration, check func(context.Context) (bool, error)) error {
	return p.run(ctx, timeout, chromedp.ActionFunc(func(opCtx context.Context) error {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			done, err := check(opCtx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			select {
			case <-opCtx.Done():
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%w after %s", browser.ErrTimeout, timeout)
			case <-ticker.C:
			}
		}
	}))
}

func (p *Page) act(ctx context.Context, loc browser.Locator, kind, value string, timeout time.Duration) error {
	return p.poll(ctx, timeout, func(opCtx context.Context) (bool, error) {
		res, err := p.eval(opCtx, loc, kind, value)
		if err != nil {
			return false, err
		}
		switch res.Status {
		case "ok":
			return true, nil
		case "strict":
			return false, fmt.Errorf("%w: %s matched %d elements", browser.ErrStrictMode, loc, res.Count)
		case "nooption":
			return false, fmt.Errorf("%w: option %q", browser.ErrNotFound, value)
		}
		return false, nil
	})
}

func (p *Page) attached(ctx context.Context, loc browser.Locator, kind, value string, timeout time.Duration) (actionResult, error) {
	var out actionResult
	err := p.poll(ctx, timeout, func(opCtx context.Context) (bool, error) {
		res, err := p.eval(opCtx, loc, kind, value)
		if err != nil {
			return false, err
		}
		switch res.Status {
		case "strict":
			return false, fmt.Errorf("%w: %s matched %d elements", browser.ErrStrictMode, loc, res.Count)
		case "missing":
			return false, nil
		}
		out = res
		return true, nil
	})
	return out, err
}

func (p *Page) eval(ctx context.Context, loc browser.Locator, kind, value string) (actionResult, error) {
	var res actionResult
	extra, _ := json.Marshal([]string{kind, value})
	callArgs := args(loc) + ", " + string(extra[1:len(extra)-1])
	expr := fmt.Sprintf(actionJS, resolveJS, actionabilityJS, callArgs)
	err := chromedp.Evaluate(expr, &res).Do(ctx)
	return res, err
}

// args renders the locator as the JSON argument list of resolveJS.
func args(loc browser.Locator) string {
	idx, indexed := loc.Index()
	raw, _ := json.Marshal([]interface{}{loc.Selector, loc.HasText(), idx, indexed})
	return string(raw[1 : len(raw)-1])
}
