package pages

import (
	"context"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/session"
)

// Checkout paths
const (
	CheckoutStepOnePath  = "/checkout-step-one.html"
	CheckoutStepTwoPath  = "/checkout-step-two.html"
	CheckoutCompletePath = "/checkout-complete.html"
)

// CheckoutStepOnePage collects the shipping information
type CheckoutStepOnePage struct {
	Base

	FirstName      browser.Locator
	LastName       browser.Locator
	PostalCode     browser.Locator
	ContinueButton browser.Locator
	CancelButton   browser.Locator
	Error          browser.Locator
	ErrorButton    browser.Locator
}

// NewCheckoutStepOnePage wraps a session
func NewCheckoutStepOnePage(s *session.Session) *CheckoutStepOnePage {
	return &CheckoutStepOnePage{
		Base:           NewBase(s),
		FirstName:      browser.Locate("first name", `[data-test="firstName"]`),
		LastName:       browser.Locate("last name", `[data-test="lastName"]`),
		PostalCode:     browser.Locate("postal code", `[data-test="postalCode"]`),
		ContinueButton: browser.Locate("continue", `[data-test="continue"]`),
		CancelButton:   browser.Locate("cancel", `[data-test="cancel"]`),
		Error:          browser.Locate("checkout error", `[data-test="error"]`),
		ErrorButton:    browser.Locate("checkout error close", `[data-test="error-button"]`),
	}
}

// NavigateTo opens step one and waits for the first name field
func (p *CheckoutStepOnePage) NavigateTo(ctx context.Context) error {
	if err := p.Navigate(ctx, CheckoutStepOnePath); err != nil {
		return err
	}
	return p.WaitForElement(ctx, p.FirstName)
}

// IsDisplayed reports whether the first name field is visible
func (p *CheckoutStepOnePage) IsDisplayed(ctx context.Context) bool {
	return p.IsVisible(ctx, p.FirstName)
}

// FillCheckoutForm fills the three fields; empty values leave a field empty
func (p *CheckoutStepOnePage) FillCheckoutForm(ctx context.Context, firstName, lastName, postalCode string) error {
	if err := p.Fill(ctx, p.FirstName, firstName, 0); err != nil {
		return err
	}
	if err := p.Fill(ctx, p.LastName, lastName, 0); err != nil {
		return err
	}
	return p.Fill(ctx, p.PostalCode, postalCode, 0)
}

// ClickContinue submits the form. The outcome is either step two or an error.
func (p *CheckoutStepOnePage) ClickContinue(ctx context.Context) error {
	return p.Click(ctx, p.ContinueButton)
}

// ClickCancel returns to the cart
func (p *CheckoutStepOnePage) ClickCancel(ctx context.Context) error {
	if err := p.Click(ctx, p.CancelButton); err != nil {
		return err
	}
	return p.WaitForURL(ctx, "**"+CartPath)
}

// ErrorMessage waits for the validation error and returns its text
func (p *CheckoutStepOnePage) ErrorMessage(ctx context.Context) (string, error) {
	if err := p.WaitForElement(ctx, p.Error); err != nil {
		return "", err
	}
	return p.ReadText(ctx, p.Error)
}

// IsErrorMessageDisplayed reports whether a validation error is visible
func (p *CheckoutStepOnePage) IsErrorMessageDisplayed(ctx context.Context) bool {
	return p.IsVisible(ctx, p.Error)
}

// CloseErrorMessage dismisses the validation error when it is shown
func (p *CheckoutStepOnePage) CloseErrorMessage(ctx context.Context) error {
	if !p.IsVisible(ctx, p.ErrorButton) {
		return nil
	}
	if err := p.Click(ctx, p.ErrorButton); err != nil {
		return err
	}
	return p.WaitForElementToDisappear(ctx, p.Error)
}

// OrderSummary holds the overview amounts in cents
type OrderSummary struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// CheckoutStepTwoPage is the order overview
type CheckoutStepTwoPage struct {
	Base

	Items        browser.Locator
	SubtotalText browser.Locator
	TaxText      browser.Locator
	TotalText    browser.Locator
	FinishButton browser.Locator
	CancelButton browser.Locator
}

// NewCheckoutStepTwoPage wraps a session
func NewCheckoutStepTwoPage(s *session.Session) *CheckoutStepTwoPage {
	return &CheckoutStepTwoPage{
		Base:         NewBase(s),
		Items:        browser.Locate("overview item", `[data-test="cart-list"] [data-test="inventory-item"]`),
		SubtotalText: browser.Locate("subtotal", `[data-test="subtotal-label"]`),
		TaxText:      browser.Locate("tax", `[data-test="tax-label"]`),
		TotalText:    browser.Locate("total", `[data-test="total-label"]`),
		FinishButton: browser.Locate("finish", `[data-test="finish"]`),
		CancelButton: browser.Locate("cancel", `[data-test="cancel"]`),
	}
}

// NavigateTo opens the overview and waits for the finish button
func (p *CheckoutStepTwoPage) NavigateTo(ctx context.Context) error {
	if err := p.Navigate(ctx, CheckoutStepTwoPath); err != nil {
		return err
	}
	return p.WaitForElement(ctx, p.FinishButton)
}

// IsDisplayed reports whether the finish button is visible
func (p *CheckoutStepTwoPage) IsDisplayed(ctx context.Context) bool {
	return p.IsVisible(ctx, p.FinishButton)
}

// Subtotal returns the label text, e.g. "Item total: $29.99"
func (p *CheckoutStepTwoPage) Subtotal(ctx context.Context) (string, error) {
	return p.ReadText(ctx, p.SubtotalText)
}

// Tax returns the label text, e.g. "Tax: $2.40"
func (p *CheckoutStepTwoPage) Tax(ctx context.Context) (string, error) {
	return p.ReadText(ctx, p.TaxText)
}

// Total returns the label text, e.g. "Total: $32.39"
func (p *CheckoutStepTwoPage) Total(ctx context.Context) (string, error) {
	return p.ReadText(ctx, p.TotalText)
}

// Summary reads and parses the three amounts
func (p *CheckoutStepTwoPage) Summary(ctx context.Context) (OrderSummary, error) {
	var summary OrderSummary
	for _, f := range []struct {
		read func(context.Context) (string, error)
		dst  *int64
	}{
		{p.Subtotal, &summary.Subtotal},
		{p.Tax, &summary.Tax},
		{p.Total, &summary.Total},
	} {
		text, err := f.read(ctx)
		if err != nil {
			return OrderSummary{}, err
		}
		if *f.dst, err = ParseCents(text); err != nil {
			return OrderSummary{}, err
		}
	}
	return summary, nil
}

// ItemCount returns the number of overview lines
func (p *CheckoutStepTwoPage) ItemCount(ctx context.Context) (int, error) {
	return p.Count(ctx, p.Items)
}

// ClickFinish places the order
func (p *CheckoutStepTwoPage) ClickFinish(ctx context.Context) error {
	if err := p.Click(ctx, p.FinishButton); err != nil {
		return err
	}
	return p.WaitForURL(ctx, "**"+CheckoutCompletePath)
}

// ClickCancel returns to the catalog
func (p *CheckoutStepTwoPage) ClickCancel(ctx context.Context) error {
	if err := p.Click(ctx, p.CancelButton); err != nil {
		return err
	}
	return p.WaitForURL(ctx, "**"+ProductsPath)
}

// CheckoutCompletePage confirms the order
type CheckoutCompletePage struct {
	Base

	Header      browser.Locator
	Text        browser.Locator
	BackHome    browser.Locator
	OrderNumber browser.Locator
}

// NewCheckoutCompletePage wraps a session
func NewCheckoutCompletePage(s *session.Session) *CheckoutCompletePage {
	return &CheckoutCompletePage{
		Base:        NewBase(s),
		Header:      browser.Locate("complete header", `[data-test="complete-header"]`),
		Text:        browser.Locate("complete text", `[data-test="complete-text"]`),
		BackHome:    browser.Locate("back home", `[data-test="back-to-products"]`),
		OrderNumber: browser.Locate("order number", `[data-test="order-number"]`),
	}
}

// NavigateTo opens the confirmation and waits for the header
func (p *CheckoutCompletePage) NavigateTo(ctx context.Context) error {
	if err := p.Navigate(ctx, CheckoutCompletePath); err != nil {
		return err
	}
	return p.WaitForElement(ctx, p.Header)
}

// IsDisplayed reports whether the header is visible
func (p *CheckoutCompletePage) IsDisplayed(ctx context.Context) bool {
	return p.IsVisible(ctx, p.Header)
}

// ConfirmationMessage returns the confirmation text
func (p *CheckoutCompletePage) ConfirmationMessage(ctx context.Context) (string, error) {
	return p.ReadText(ctx, p.Text)
}

// HeaderText returns the header
func (p *CheckoutCompletePage) HeaderText(ctx context.Context) (string, error) {
	return p.ReadText(ctx, p.Header)
}

// OrderReference returns the order number shown by the demo storefront, if any
func (p *CheckoutCompletePage) OrderReference(ctx context.Context) (string, bool, error) {
	n, err := p.Count(ctx, p.OrderNumber)
	if err != nil || n == 0 {
		return "", false, err
	}
	ref, err := p.ReadText(ctx, p.OrderNumber)
	return ref, err == nil, err
}

// ClickBackToHome returns to the catalog
func (p *CheckoutCompletePage) ClickBackToHome(ctx context.Context) error {
	if err := p.Click(ctx, p.BackHome); err != nil {
		return err
	}
	return p.WaitForURL(ctx, "**"+ProductsPath)
}
