package pwengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "timeout", err: playwright.ErrTimeout, want: browser.ErrTimeout},
		{name: "closed", err: playwright.ErrTargetClosed, want: browser.ErrClosed},
		{name: "deadline", err: context.DeadlineExceeded, want: browser.ErrTimeout},
		{name: "strict", err: errors.New("locator.click: Error: strict mode violation: resolved to 2 elements"), want: browser.ErrStrictMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate(tt.err, "doing")
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "doing")
		})
	}

	assert.NoError(t, translate(nil, "doing"))

	other := errors.New("net::ERR_CONNECTION_REFUSED")
	err := translate(other, "navigating")
	assert.ErrorIs(t, err, other)
	assert.False(t, errors.Is(err, browser.ErrTimeout))
}

func TestBound(t *testing.T) {
	assert.Nil(t, bound(context.Background(), 0))
	assert.Equal(t, 1500.0, *bound(context.Background(), 1500*time.Millisecond))

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.Equal(t, 1.0, *bound(expired, time.Second))

	short, cancel2 := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel2()
	assert.LessOrEqual(t, *bound(short, time.Minute), 100.0)
}
