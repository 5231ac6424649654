package pages

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/samber/lo"
)

// ErrOptionNotFound is returned when a select has no option with the requested value
var ErrOptionNotFound = errors.New("option not found")

// TimeoutError reports a wait that exceeded its bound
type TimeoutError struct {
	Op      string
	Locator string
	Bound   time.Duration
	Elapsed time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	target := e.Locator
	if target == "" {
		target = "page"
	}
	return fmt.Sprintf("%s %s: timed out after %s (bound %s): %v", e.Op, target, e.Elapsed.Round(time.Millisecond), e.Bound, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// InteractionError reports a failed interaction. Params never carry typed text.
type InteractionError struct {
	Op      string
	Locator string
	Params  map[string]any
	Err     error
}

func (e *InteractionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Op)
	if e.Locator != "" {
		fmt.Fprintf(&b, " %s", e.Locator)
	}
	if len(e.Params) > 0 {
		keys := lo.Keys(e.Params)
		sort.Strings(keys)
		parts := lo.Map(keys, func(k string, _ int) string {
			return fmt.Sprintf("%s=%v", k, e.Params[k])
		})
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *InteractionError) Unwrap() error { return e.Err }

// LoginErrorKind categorises the message shown on a rejected login
type LoginErrorKind string

// Login error kinds
const (
	LoginLockedOut       LoginErrorKind = "locked-out"
	LoginMismatch        LoginErrorKind = "mismatch"
	LoginMissingUsername LoginErrorKind = "missing-username"
	LoginMissingPassword LoginErrorKind = "missing-password"
	LoginUnauthenticated LoginErrorKind = "unauthenticated"
	LoginUnknown         LoginErrorKind = "unknown"
)

// ClassifyLoginError maps a login error banner text to its kind
func ClassifyLoginError(msg string) LoginErrorKind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "locked out"):
		return LoginLockedOut
	case strings.Contains(m, "username is required"):
		return LoginMissingUsername
	case strings.Contains(m, "password is required"):
		return LoginMissingPassword
	case strings.Contains(m, "username and password do not match"):
		return LoginMismatch
	case strings.Contains(m, "only access") && strings.Contains(m, "when you are logged in"):
		return LoginUnauthenticated
	}
	return LoginUnknown
}

// LoginRejectedError is returned when the shop shows an error instead of the catalog
type LoginRejectedError struct {
	Message string
	Kind    LoginErrorKind
}

func (e *LoginRejectedError) Error() string {
	return fmt.Sprintf("login rejected (%s): %s", e.Kind, e.Message)
}

// translate wraps an engine error into the primitive error taxonomy
func translate(err error, op string, loc *browser.Locator, bound time.Duration, start time.Time, params map[string]any) error {
	if err == nil {
		return nil
	}
	var name string
	if loc != nil {
		name = loc.String()
	}
	if errors.Is(err, browser.ErrTimeout) {
		return &TimeoutError{Op: op, Locator: name, Bound: bound, Elapsed: time.Since(start), Err: err}
	}
	return &InteractionError{Op: op, Locator: name, Params: params, Err: err}
}
