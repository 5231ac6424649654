package htmlengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/adyen/storefront-e2e/internal/browser"
	"go.uber.org/zap"
)

const blankDocument = "<html><head></head><body></body></html>"

// Page is a single document loaded over HTTP
type Page struct {
	bctx *Context

	mu     sync.Mutex
	url    string
	doc    *goquery.Document
	closed bool
}

func newPage(c *Context) *Page {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(blankDocument))
	return &Page{bctx: c, url: "about:blank", doc: doc}
}

// Goto loads target, resolved against the context base URL.
func (p *Page) Goto(ctx context.Context, target string, timeout time.Duration) error {
	resolved, err := browser.ResolveURL(p.bctx.opts.BaseURL, target)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", target, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrClosed
	}

	err = p.navigateLocked(ctx, http.MethodGet, resolved, nil, timeout)
	p.bctx.record("goto", resolved, nil, err)
	return translate(err, "navigating to "+resolved)
}

// Reload loads the current URL again
func (p *Page) Reload(ctx context.Context, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrClosed
	}
	if p.url == "about:blank" {
		return nil
	}
	err := p.navigateLocked(ctx, http.MethodGet, p.url, nil, timeout)
	p.bctx.record("reload", p.url, nil, err)
	return translate(err, "reloading "+p.url)
}

// URL returns the URL of the loaded document after redirects
func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Title returns the document title
func (p *Page) Title(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", browser.ErrClosed
	}
	return strings.TrimSpace(p.doc.Find("title").First().Text()), nil
}

// WaitForURL blocks until the page URL matches the glob pattern
func (p *Page) WaitForURL(ctx context.Context, pattern string, timeout time.Duration) error {
	err := p.poll(ctx, timeout, func() (bool, error) {
		return browser.MatchURL(pattern, p.url), nil
	})
	return translate(err, fmt.Sprintf("waiting for url %q (current %q)", pattern, p.URL()))
}

// WaitFor blocks until the locator reaches state
func (p *Page) WaitFor(ctx context.Context, loc browser.Locator, state browser.State, timeout time.Duration) error {
	err := p.poll(ctx, timeout, func() (bool, error) {
		sel := p.resolve(loc)
		if sel.Length() > 1 {
			return false, fmt.Errorf("%w: %s matched %d elements", browser.ErrStrictMode, loc, sel.Length())
		}
		switch state {
		case browser.StateAttached:
			return sel.Length() == 1, nil
		case browser.StateDetached:
			return sel.Length() == 0, nil
		case browser.StateHidden:
			return sel.Length() == 0 || !isVisible(sel), nil
		default:
			return sel.Length() == 1 && isVisible(sel), nil
		}
	})
	p.bctx.record("wait-for-"+string(state), p.URL(), &loc, err)
	return translate(err, fmt.Sprintf("waiting for %s to be %s", loc, state))
}

// Count returns the number of matches
func (p *Page) Count(ctx context.Context, loc browser.Locator) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, browser.ErrClosed
	}
	return p.resolve(loc).Length(), nil
}

// Fill replaces the value of an input or textarea
func (p *Page) Fill(ctx context.Context, loc browser.Locator, text string, timeout time.Duration) error {
	err := p.act(ctx, loc, timeout, func(sel *goquery.Selection) error {
		switch goquery.NodeName(sel) {
		case "textarea":
			sel.SetText(text)
		case "input":
			switch strings.ToLower(sel.AttrOr("type", "text")) {
			case "checkbox", "radio", "submit", "button", "reset", "image", "file", "hidden":
				return fmt.Errorf("input of type %q cannot be filled", sel.AttrOr("type", ""))
			}
			if _, readonly := sel.Attr("readonly"); readonly {
				return errors.New("element is readonly")
			}
			sel.SetAttr("value", text)
		default:
			return fmt.Errorf("element is not an <input> or <textarea>: <%s>", goquery.NodeName(sel))
		}
		return nil
	})
	p.bctx.record("fill", p.URL(), &loc, err)
	return translate(err, fmt.Sprintf("filling %s", loc))
}

// Clear empties an input or textarea
func (p *Page) Clear(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	return p.Fill(ctx, loc, "", timeout)
}

// Click activates a link, a submit control or a checkbox
func (p *Page) Click(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	err := p.act(ctx, loc, timeout, func(sel *goquery.Selection) error {
		return p.activateLocked(ctx, sel)
	})
	p.bctx.record("click", p.URL(), &loc, err)
	return translate(err, fmt.Sprintf("clicking %s", loc))
}

// SelectOption selects the option with the given value and runs an inline
// form submit change handler when present.
func (p *Page) SelectOption(ctx context.Context, loc browser.Locator, value string, timeout time.Duration) error {
	err := p.act(ctx, loc, timeout, func(sel *goquery.Selection) error {
		if goquery.NodeName(sel) != "select" {
			return fmt.Errorf("element is not a <select>: <%s>", goquery.NodeName(sel))
		}
		option := sel.Find("option").FilterFunction(func(_ int, o *goquery.Selection) bool {
			return optionValue(o) == value
		}).First()
		if option.Length() == 0 {
			return fmt.Errorf("%w: option %q", browser.ErrNotFound, value)
		}
		if _, multiple := sel.Attr("multiple"); !multiple {
			sel.Find("option").RemoveAttr("selected")
		}
		option.SetAttr("selected", "selected")

		if strings.Contains(strings.ReplaceAll(sel.AttrOr("onchange", ""), " ", ""), "form.submit()") {
			form := owningForm(p.doc, sel)
			if form.Length() == 0 {
				return nil
			}
			return p.submitLocked(ctx, form, nil)
		}
		return nil
	})
	p.bctx.record("select-option", p.URL(), &loc, err)
	return translate(err, fmt.Sprintf("selecting %q in %s", value, loc))
}

// TextContent returns the text of the single match
func (p *Page) TextContent(ctx context.Context, loc browser.Locator, timeout time.Duration) (string, error) {
	var text string
	err := p.attached(ctx, loc, timeout, func(sel *goquery.Selection) {
		text = sel.Text()
	})
	return text, translate(err, fmt.Sprintf("reading text of %s", loc))
}

// AllTextContents returns the text of every match in document order
func (p *Page) AllTextContents(ctx context.Context, loc browser.Locator) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, browser.ErrClosed
	}
	sel := p.resolve(loc)
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return texts, nil
}

// Attribute returns the attribute value of the single match
func (p *Page) Attribute(ctx context.Context, loc browser.Locator, name string, timeout time.Duration) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := p.attached(ctx, loc, timeout, func(sel *goquery.Selection) {
		value, ok = sel.Attr(name)
	})
	return value, ok, translate(err, fmt.Sprintf("reading attribute %q of %s", name, loc))
}

// IsVisible reports whether the single match is visible; no match is not visible.
func (p *Page) IsVisible(ctx context.Context, loc browser.Locator) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false, browser.ErrClosed
	}
	sel := p.resolve(loc)
	switch sel.Length() {
	case 0:
		return false, nil
	case 1:
		return isVisible(sel), nil
	default:
		return false, fmt.Errorf("%w: %s matched %d elements", browser.ErrStrictMode, loc, sel.Length())
	}
}

// IsEnabled reports whether the single match is enabled
func (p *Page) IsEnabled(ctx context.Context, loc browser.Locator, timeout time.Duration) (bool, error) {
	var enabled bool
	err := p.attached(ctx, loc, timeout, func(sel *goquery.Selection) {
		enabled = isEnabled(sel)
	})
	return enabled, translate(err, fmt.Sprintf("checking %s is enabled", loc))
}

// Screenshot writes a blank viewport sized PNG; there is no renderer.
func (p *Page) Screenshot(ctx context.Context, path string) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return browser.ErrClosed
	}

	w, h := p.bctx.opts.ViewportWidth, p.bctx.opts.ViewportHeight
	if w <= 0 || h <= 0 {
		w, h = 1280, 720
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Close implements browser.Page
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// poll runs check under the page lock until it returns true, an error, or the
// bound elapses.
func (p *Page) poll(ctx context.Context, timeout time.Duration, check func() (bool, error)) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(p.bctx.engine.pollInterval)
	defer ticker.Stop()

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return browser.ErrClosed
		}
		done, err := check()
		p.mu.Unlock()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s", browser.ErrTimeout, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// act waits for a single visible, enabled match and runs fn on it under the lock.
func (p *Page) act(ctx context.Context, loc browser.Locator, timeout time.Duration, fn func(*goquery.Selection) error) error {
	return p.poll(ctx, timeout, func() (bool, error) {
		sel := p.resolve(loc)
		if sel.Length() > 1 {
			return false, fmt.Errorf("%w: %s matched %d elements", browser.ErrStrictMode, loc, sel.Length())
		}
		if sel.Length() == 0 || !isVisible(sel) || !isEnabled(sel) {
			return false, nil
		}
		return true, fn(sel)
	})
}

// attached waits for a single match and runs fn on it under the lock.
func (p *Page) attached(ctx context.Context, loc browser.Locator, timeout time.Duration, fn func(*goquery.Selection)) error {
	return p.poll(ctx, timeout, func() (bool, error) {
		sel := p.resolve(loc)
		if sel.Length() > 1 {
			return false, fmt.Errorf("%w: %s matched %d elements", browser.ErrStrictMode, loc, sel.Length())
		}
		if sel.Length() == 0 {
			return false, nil
		}
		fn(sel)
		return true, nil
	})
}

func (p *Page) resolve(loc browser.Locator) *goquery.Selection {
	sel := p.doc.Find(loc.Selector)
	if text := loc.HasText(); text != "" {
		sel = sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), text)
		})
	}
	if i, ok := loc.Index(); ok {
		sel = sel.Eq(i)
	}
	return sel
}

// activateLocked performs the default action of a click.
func (p *Page) activateLocked(ctx context.Context, sel *goquery.Selection) error {
	if link := sel.Closest("a[href]"); link.Length() > 0 {
		href := link.AttrOr("href", "")
		if strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return nil
		}
		target, err := p.resolveHref(href)
		if err != nil {
			return err
		}
		return p.navigateLocked(ctx, http.MethodGet, target, nil, 0)
	}

	name := goquery.NodeName(sel)
	typ := strings.ToLower(sel.AttrOr("type", ""))
	switch {
	case name == "button" && (typ == "" || typ == "submit"),
		name == "input" && (typ == "submit" || typ == "image"):
		form := owningForm(p.doc, sel)
		if form.Length() == 0 {
			return nil
		}
		return p.submitLocked(ctx, form, sel)
	case name == "input" && typ == "checkbox":
		if _, checked := sel.Attr("checked"); checked {
			sel.RemoveAttr("checked")
		} else {
			sel.SetAttr("checked", "checked")
		}
	case name == "input" && typ == "radio":
		if n := sel.AttrOr("name", ""); n != "" {
			owningForm(p.doc, sel).Find(fmt.Sprintf(`input[type="radio"][name=%q]`, n)).RemoveAttr("checked")
		}
		sel.SetAttr("checked", "checked")
	}
	return nil
}

func (p *Page) submitLocked(ctx context.Context, form, submitter *goquery.Selection) error {
	values := formValues(form, submitter)

	action := form.AttrOr("action", "")
	if submitter != nil {
		action = submitter.AttrOr("formaction", action)
	}
	target, err := p.resolveHref(action)
	if err != nil {
		return err
	}

	method := strings.ToUpper(form.AttrOr("method", http.MethodGet))
	if submitter != nil {
		method = strings.ToUpper(submitter.AttrOr("formmethod", method))
	}

	if method == http.MethodPost {
		return p.navigateLocked(ctx, http.MethodPost, target, values, 0)
	}

	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	u.RawQuery = values.Encode()
	u.Fragment = ""
	return p.navigateLocked(ctx, http.MethodGet, u.String(), nil, 0)
}

func (p *Page) resolveHref(href string) (string, error) {
	base, err := url.Parse(p.url)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// navigateLocked issues the request, follows redirects and replaces the
// document. A zero timeout uses the engine navigation timeout.
func (p *Page) navigateLocked(ctx context.Context, method, target string, form url.Values, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.bctx.engine.navTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request for %q: %w", target, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	for i := 0; i <= maxRedirects; i++ {
		p.prepareHeaders(req)
		p.bctx.debug("html engine request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

		resp, err := p.bctx.client.Do(req)
		if err != nil {
			return fmt.Errorf("request for %q failed: %w", req.URL.String(), err)
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 && resp.Header.Get("Location") != "" {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			next, err := req.URL.Parse(resp.Header.Get("Location"))
			if err != nil {
				return fmt.Errorf("failed to parse redirect location: %w", err)
			}
			nextMethod := req.Method
			var nextBody io.Reader
			if resp.StatusCode == http.StatusSeeOther || resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusMovedPermanently {
				nextMethod = http.MethodGet
			} else if form != nil {
				nextBody = strings.NewReader(form.Encode())
			}
			req, err = http.NewRequestWithContext(ctx, nextMethod, next.String(), nextBody)
			if err != nil {
				return err
			}
			if nextBody != nil {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			continue
		}

		return p.load(resp)
	}
	return fmt.Errorf("maximum number of redirects (%d) exceeded", maxRedirects)
}

func (p *Page) prepareHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "storefront-e2e-htmlengine/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if locale := p.bctx.opts.Locale; locale != "" {
		req.Header.Set("Accept-Language", locale)
	}
	if p.url != "about:blank" {
		req.Header.Set("Referer", p.url)
	}
}

func (p *Page) load(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		p.bctx.engine.log.Warn("html engine response status",
			zap.Int("status", resp.StatusCode),
			zap.String("url", resp.Request.URL.String()))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	p.doc = doc
	p.url = resp.Request.URL.String()
	return nil
}
