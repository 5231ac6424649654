package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/session"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ProductsPath is the canonical path of the catalog
const ProductsPath = "/inventory.html"

// Sort modes of the catalog
const (
	SortNameAsc   = "az"
	SortNameDesc  = "za"
	SortPriceAsc  = "lohi"
	SortPriceDesc = "hilo"
)

// ProductInfo is a catalog entry as displayed
type ProductInfo struct {
	Name        string
	Description string
	Price       string
}

// ProductsPage is the catalog shown after login
type ProductsPage struct {
	Base

	List          browser.Locator
	Items         browser.Locator
	Names         browser.Locator
	Descriptions  browser.Locator
	Prices        browser.Locator
	AddButtons    browser.Locator
	RemoveButtons browser.Locator
	CartLink      browser.Locator
	CartBadge     browser.Locator
	SortControl   browser.Locator
	MenuButton    browser.Locator
	LogoutLink    browser.Locator
}

// NewProductsPage wraps a session
func NewProductsPage(s *session.Session) *ProductsPage {
	return &ProductsPage{
		Base:          NewBase(s),
		List:          browser.Locate("inventory list", `[data-test="inventory-list"]`),
		Items:         browser.Locate("inventory item", `[data-test="inventory-item"]`),
		Names:         browser.Locate("item name", `[data-test="inventory-item-name"]`),
		Descriptions:  browser.Locate("item description", `[data-test="inventory-item-desc"]`),
		Prices:        browser.Locate("item price", `[data-test="inventory-item-price"]`),
		AddButtons:    browser.Locate("add to cart", `button[data-test^="add-to-cart"]`),
		RemoveButtons: browser.Locate("remove", `button[data-test^="remove"]`),
		CartLink:      browser.Locate("cart link", `[data-test="shopping-cart-link"]`),
		CartBadge:     browser.Locate("cart badge", `[data-test="shopping-cart-badge"]`),
		SortControl:   browser.Locate("sort", `[data-test="product-sort-container"]`),
		MenuButton:    browser.Locate("menu", `#react-burger-menu-btn`),
		LogoutLink:    browser.Locate("logout", `[data-test="logout-sidebar-link"]`),
	}
}

// NavigateTo opens the catalog and waits for the list
func (p *ProductsPage) NavigateTo(ctx context.Context) error {
	if err := p.Navigate(ctx, ProductsPath); err != nil {
		return err
	}
	return p.WaitForElement(ctx, p.List)
}

// IsDisplayed reports whether the product list is visible
func (p *ProductsPage) IsDisplayed(ctx context.Context) bool {
	return p.IsVisible(ctx, p.List)
}

// ProductCount returns the number of products shown
func (p *ProductsPage) ProductCount(ctx context.Context) (int, error) {
	return p.Count(ctx, p.Items)
}

// ProductNames returns the product names in display order
func (p *ProductsPage) ProductNames(ctx context.Context) ([]string, error) {
	return p.ReadAllTexts(ctx, p.Names)
}

// ProductPrices returns the displayed prices, e.g. "$29.99"
func (p *ProductsPage) ProductPrices(ctx context.Context) ([]string, error) {
	return p.ReadAllTexts(ctx, p.Prices)
}

// ProductByName returns the displayed entry of the named product
func (p *ProductsPage) ProductByName(ctx context.Context, name string) (ProductInfo, error) {
	names, err := p.ProductNames(ctx)
	if err != nil {
		return ProductInfo{}, err
	}
	i := lo.IndexOf(names, name)
	if i < 0 {
		return ProductInfo{}, &InteractionError{
			Op:     "find product",
			Params: map[string]any{"name": name},
			Err:    browser.ErrNotFound,
		}
	}

	desc, err := p.ReadText(ctx, p.Descriptions.Nth(i))
	if err != nil {
		return ProductInfo{}, err
	}
	price, err := p.ReadText(ctx, p.Prices.Nth(i))
	if err != nil {
		return ProductInfo{}, err
	}
	return ProductInfo{Name: name, Description: desc, Price: price}, nil
}

// AddProductToCart clicks the i-th "Add to cart" control present now. An
// added product's control turns into "Remove", so calling this twice with
// the same index adds two different products.
func (p *ProductsPage) AddProductToCart(ctx context.Context, i int) error {
	removes, err := p.Count(ctx, p.RemoveButtons)
	if err != nil {
		return err
	}
	if err := p.clickIndexed(ctx, "add to cart", p.AddButtons, i); err != nil {
		return err
	}
	// the document is replaced once a further remove control exists
	return p.WaitForReady(ctx, p.RemoveButtons.Nth(removes), browser.StateAttached, 0)
}

// RemoveProductFromCart clicks the i-th "Remove" control present now
func (p *ProductsPage) RemoveProductFromCart(ctx context.Context, i int) error {
	removes, err := p.Count(ctx, p.RemoveButtons)
	if err != nil {
		return err
	}
	if err := p.clickIndexed(ctx, "remove from cart", p.RemoveButtons, i); err != nil {
		return err
	}
	return p.WaitForReady(ctx, p.RemoveButtons.Nth(removes-1), browser.StateDetached, 0)
}

// AddProductToCartByName adds the named product
func (p *ProductsPage) AddProductToCartByName(ctx context.Context, name string) error {
	loc := browser.Locate("add "+name, fmt.Sprintf(`button[data-test="add-to-cart-%s"]`, Slug(name)))
	removes, err := p.Count(ctx, p.RemoveButtons)
	if err != nil {
		return err
	}
	if err := p.Click(ctx, loc); err != nil {
		return err
	}
	return p.WaitForReady(ctx, p.RemoveButtons.Nth(removes), browser.StateAttached, 0)
}

// CartBadgeCount returns the number on the cart badge, 0 when it is absent
func (p *ProductsPage) CartBadgeCount(ctx context.Context) (int, error) {
	if !p.IsVisible(ctx, p.CartBadge) {
		return 0, nil
	}
	text, err := p.ReadText(ctx, p.CartBadge)
	if err != nil {
		return 0, err
	}
	var n int
	if _, err := fmt.Sscanf(text, "%d", &n); err != nil {
		return 0, &InteractionError{Op: "read cart badge", Locator: p.CartBadge.String(), Params: map[string]any{"text": text}, Err: err}
	}
	return n, nil
}

// GoToCart opens the cart
func (p *ProductsPage) GoToCart(ctx context.Context) error {
	if err := p.Click(ctx, p.CartLink); err != nil {
		return err
	}
	return p.WaitForURL(ctx, "**"+CartPath)
}

// SortProducts sorts the catalog by one of the Sort* modes
func (p *ProductsPage) SortProducts(ctx context.Context, mode string) error {
	if err := p.Click(ctx, p.SortControl); err != nil {
		return err
	}
	option := browser.Locate("sort option "+mode,
		fmt.Sprintf(`[data-test="product-sort-container"] option[value=%q]`, mode))
	n, err := p.Count(ctx, option)
	if err != nil {
		return err
	}
	if n == 0 {
		return &InteractionError{
			Op:      "sort products",
			Locator: p.SortControl.String(),
			Params:  map[string]any{"mode": mode},
			Err:     ErrOptionNotFound,
		}
	}
	if err := p.SelectOption(ctx, p.SortControl, mode); err != nil {
		return err
	}
	// shops sort in place or reload; either way the chosen option ends up
	// selected over a rendered list
	selected := browser.Locate("selected sort "+mode,
		fmt.Sprintf(`[data-test="product-sort-container"] option[value=%q]:checked`, mode))
	if err := p.WaitForReady(ctx, selected, browser.StateAttached, 0); err != nil {
		return err
	}
	if err := p.WaitForElement(ctx, p.List); err != nil {
		return err
	}
	p.Session.Log.Debug("products sorted", zap.String("mode", mode))
	return nil
}

// Logout opens the menu and logs out
func (p *ProductsPage) Logout(ctx context.Context) error {
	if err := p.Click(ctx, p.MenuButton); err != nil {
		return err
	}
	if err := p.WaitForElement(ctx, p.LogoutLink); err != nil {
		return err
	}
	if err := p.Click(ctx, p.LogoutLink); err != nil {
		return err
	}
	return p.WaitForURL(ctx, "**"+LoginPath)
}

func (p *ProductsPage) clickIndexed(ctx context.Context, op string, loc browser.Locator, i int) error {
	n, err := p.Count(ctx, loc)
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return &InteractionError{
			Op:      op,
			Locator: loc.String(),
			Params:  map[string]any{"index": i, "count": n},
			Err:     browser.ErrNotFound,
		}
	}
	return p.Click(ctx, loc.Nth(i))
}

// Slug derives the data-test suffix of a product's controls from its name
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
