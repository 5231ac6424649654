package pages

import (
	"context"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/session"
)

// CartPath is the canonical path of the cart
const CartPath = "/cart.html"

// CartPage lists the cart contents
type CartPage struct {
	Base

	List             browser.Locator
	Items            browser.Locator
	Names            browser.Locator
	Prices           browser.Locator
	Quantities       browser.Locator
	RemoveButtons    browser.Locator
	CheckoutButton   browser.Locator
	ContinueShopping browser.Locator
}

// NewCartPage wraps a session
func NewCartPage(s *session.Session) *CartPage {
	return &CartPage{
		Base:             NewBase(s),
		List:             browser.Locate("cart list", `[data-test="cart-list"]`),
		Items:            browser.Locate("cart item", `[data-test="cart-list"] [data-test="inventory-item"]`),
		Names:            browser.Locate("cart item name", `[data-test="cart-list"] [data-test="inventory-item-name"]`),
		Prices:           browser.Locate("cart item price", `[data-test="cart-list"] [data-test="inventory-item-price"]`),
		Quantities:       browser.Locate("cart item quantity", `[data-test="cart-list"] [data-test="item-quantity"]`),
		RemoveButtons:    browser.Locate("cart remove", `[data-test="cart-list"] button[data-test^="remove"]`),
		CheckoutButton:   browser.Locate("checkout", `[data-test="checkout"]`),
		ContinueShopping: browser.Locate("continue shopping", `[data-test="continue-shopping"]`),
	}
}

// NavigateTo opens the cart and waits for the list
func (p *CartPage) NavigateTo(ctx context.Context) error {
	if err := p.Navigate(ctx, CartPath); err != nil {
		return err
	}
	return p.WaitForElement(ctx, p.List)
}

// IsDisplayed reports whether the cart list is visible
func (p *CartPage) IsDisplayed(ctx context.Context) bool {
	return p.IsVisible(ctx, p.List)
}

// ItemCount returns the number of cart lines
func (p *CartPage) ItemCount(ctx context.Context) (int, error) {
	return p.Count(ctx, p.Items)
}

// ItemNames returns the names of the cart lines in order
func (p *CartPage) ItemNames(ctx context.Context) ([]string, error) {
	return p.ReadAllTexts(ctx, p.Names)
}

// ItemPrices returns the displayed prices of the cart lines
func (p *CartPage) ItemPrices(ctx context.Context) ([]string, error) {
	return p.ReadAllTexts(ctx, p.Prices)
}

// RemoveItemFromCart removes the i-th line; later lines move up one index
func (p *CartPage) RemoveItemFromCart(ctx context.Context, i int) error {
	n, err := p.Count(ctx, p.RemoveButtons)
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return &InteractionError{
			Op:      "remove cart item",
			Locator: p.RemoveButtons.String(),
			Params:  map[string]any{"index": i, "count": n},
			Err:     browser.ErrNotFound,
		}
	}
	if err := p.Click(ctx, p.RemoveButtons.Nth(i)); err != nil {
		return err
	}
	return p.WaitForReady(ctx, p.Items.Nth(n-1), browser.StateDetached, 0)
}

// ClickCheckout starts the checkout
func (p *CartPage) ClickCheckout(ctx context.Context) error {
	if err := p.Click(ctx, p.CheckoutButton); err != nil {
		return err
	}
	return p.WaitForURL(ctx, "**"+CheckoutStepOnePath)
}

// ClickContinueShopping returns to the catalog
func (p *CartPage) ClickContinueShopping(ctx context.Context) error {
	if err := p.Click(ctx, p.ContinueShopping); err != nil {
		return err
	}
	return p.WaitForURL(ctx, "**"+ProductsPath)
}

// IsCartEmpty reports whether the cart has no lines
func (p *CartPage) IsCartEmpty(ctx context.Context) (bool, error) {
	n, err := p.ItemCount(ctx)
	return n == 0, err
}

// IsCheckoutButtonEnabled reports whether checkout can be started
func (p *CartPage) IsCheckoutButtonEnabled(ctx context.Context) (bool, error) {
	return p.IsEnabled(ctx, p.CheckoutButton)
}
