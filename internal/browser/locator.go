package browser

import (
	"fmt"
	"strings"
)

// Locator is an immutable description of how to find elements. It holds no
// element handle; engines resolve it again on every call.
type Locator struct {
	Name     string
	Selector string

	hasText string
	nth     int
	indexed bool
}

// Locate creates a locator with a human readable name used in logs and errors.
func Locate(name, selector string) Locator {
	return Locator{Name: name, Selector: selector}
}

// Nth narrows the locator to the i-th match in document order.
func (l Locator) Nth(i int) Locator {
	l.nth = i
	l.indexed = true
	if l.Name != "" {
		l.Name = fmt.Sprintf("%s[%d]", l.Name, i)
	}
	return l
}

// Index returns the index set by Nth.
func (l Locator) Index() (int, bool) {
	return l.nth, l.indexed
}

// WithText keeps only matches whose text contains s.
func (l Locator) WithText(s string) Locator {
	l.hasText = s
	return l
}

// HasText returns the text filter, empty when none.
func (l Locator) HasText() string {
	return l.hasText
}

func (l Locator) String() string {
	var b strings.Builder
	if l.Name != "" {
		b.WriteString(l.Name)
		b.WriteString(" ")
	}
	b.WriteString("<")
	b.WriteString(l.Selector)
	if l.hasText != "" {
		fmt.Fprintf(&b, " has-text=%q", l.hasText)
	}
	if l.indexed {
		fmt.Fprintf(&b, " nth=%d", l.nth)
	}
	b.WriteString(">")
	return b.String()
}
