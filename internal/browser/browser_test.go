package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchURL(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		url     string
		want    bool
	}{
		{name: "double star prefix", pattern: "**/inventory.html", url: "http://127.0.0.1:8080/inventory.html", want: true},
		{name: "query ignored", pattern: "**/inventory.html", url: "http://127.0.0.1:8080/inventory.html?sort=az", want: true},
		{name: "empty query ignored", pattern: "**/checkout-step-one.html", url: "http://127.0.0.1:8080/checkout-step-one.html?", want: true},
		{name: "other page", pattern: "**/inventory.html", url: "http://127.0.0.1:8080/cart.html", want: false},
		{name: "single star stops at slash", pattern: "http://shop/*.html", url: "http://shop/a/b.html", want: false},
		{name: "single star", pattern: "http://shop/*.html", url: "http://shop/cart.html", want: true},
		{name: "exact", pattern: "http://shop/", url: "http://shop/", want: true},
		{name: "exact mismatch", pattern: "http://shop/", url: "http://shop/cart.html", want: false},
		{name: "dots are literal", pattern: "**/cart.html", url: "http://shop/cartxhtml", want: false},
		{name: "empty pattern", pattern: "", url: "anything", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchURL(tt.pattern, tt.url))
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base   string
		target string
		want   string
	}{
		{base: "http://shop:8080", target: "/inventory.html", want: "http://shop:8080/inventory.html"},
		{base: "http://shop:8080", target: "cart.html", want: "http://shop:8080/cart.html"},
		{base: "http://shop:8080/app", target: "cart.html", want: "http://shop:8080/app/cart.html"},
		{base: "http://shop:8080", target: "https://other/x", want: "https://other/x"},
		{base: "", target: "/x", want: "/x"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := ResolveURL(tt.base, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocator(t *testing.T) {
	base := Locate("add to cart", `button[data-test^="add-to-cart"]`)

	// GIVEN a narrowed copy
	second := base.Nth(1).WithText("Backpack")

	// THEN the original is untouched
	_, indexed := base.Index()
	assert.False(t, indexed)
	assert.Empty(t, base.HasText())

	i, indexed := second.Index()
	assert.True(t, indexed)
	assert.Equal(t, 1, i)
	assert.Equal(t, "Backpack", second.HasText())
	assert.Equal(t, `add to cart[1] <button[data-test^="add-to-cart"] has-text="Backpack" nth=1>`, second.String())
}

func TestBound(t *testing.T) {
	assert.Equal(t, time.Second, Bound(context.Background(), time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.LessOrEqual(t, Bound(ctx, time.Hour), 50*time.Millisecond)
	assert.LessOrEqual(t, Bound(ctx, 0), 50*time.Millisecond)
	assert.Equal(t, time.Millisecond, Bound(ctx, time.Millisecond))
}
