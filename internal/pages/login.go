package pages

import (
	"context"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/session"
	"go.uber.org/zap"
)

// LoginPath is the canonical path of the login page
const LoginPath = "/"

// LoginPage is the shop's landing page
type LoginPage struct {
	Base

	Username    browser.Locator
	Password    browser.Locator
	LoginButton browser.Locator
	Error       browser.Locator
	ErrorButton browser.Locator

	// outcome matches the catalog anchor or the error banner, whichever shows.
	outcome browser.Locator
	catalog browser.Locator
}

// NewLoginPage wraps a session
func NewLoginPage(s *session.Session) *LoginPage {
	return &LoginPage{
		Base:        NewBase(s),
		Username:    browser.Locate("username", `[data-test="username"]`),
		Password:    browser.Locate("password", `[data-test="password"]`),
		LoginButton: browser.Locate("login button", `[data-test="login-button"]`),
		Error:       browser.Locate("login error", `[data-test="error"]`),
		ErrorButton: browser.Locate("login error close", `[data-test="error-button"]`),
		outcome:     browser.Locate("login outcome", `[data-test="inventory-list"], [data-test="error"]`),
		catalog:     browser.Locate("inventory list", `[data-test="inventory-list"]`),
	}
}

// NavigateTo opens the login page and waits for the username field
func (p *LoginPage) NavigateTo(ctx context.Context) error {
	if err := p.Navigate(ctx, LoginPath); err != nil {
		return err
	}
	return p.WaitForElement(ctx, p.Username)
}

// IsDisplayed reports whether the username field is visible
func (p *LoginPage) IsDisplayed(ctx context.Context) bool {
	return p.IsVisible(ctx, p.Username)
}

// Login fills the credentials and submits. It does not wait for the outcome.
func (p *LoginPage) Login(ctx context.Context, username, password string) error {
	start := time.Now()
	if err := p.Fill(ctx, p.Username, username, 0); err != nil {
		return err
	}
	if err := p.Fill(ctx, p.Password, password, 0); err != nil {
		return err
	}
	if err := p.Click(ctx, p.LoginButton); err != nil {
		return err
	}
	p.Session.Log.Perf("login submit", start, zap.String("username", username))
	return nil
}

// WaitForOutcome blocks until the catalog or the error banner is visible.
// A shown banner is returned as a *LoginRejectedError.
func (p *LoginPage) WaitForOutcome(ctx context.Context) error {
	if err := p.WaitForReady(ctx, p.outcome, browser.StateVisible, p.Session.Timeouts.Navigation); err != nil {
		return err
	}
	if p.IsVisible(ctx, p.catalog) {
		return nil
	}
	msg, err := p.ReadText(ctx, p.Error)
	if err != nil {
		return err
	}
	return &LoginRejectedError{Message: msg, Kind: ClassifyLoginError(msg)}
}

// ErrorMessage waits for the error banner and returns its text
func (p *LoginPage) ErrorMessage(ctx context.Context) (string, error) {
	if err := p.WaitForElement(ctx, p.Error); err != nil {
		return "", err
	}
	return p.ReadText(ctx, p.Error)
}

// IsErrorMessageDisplayed reports whether the error banner is visible
func (p *LoginPage) IsErrorMessageDisplayed(ctx context.Context) bool {
	return p.IsVisible(ctx, p.Error)
}

// CloseErrorMessage dismisses the error banner when it is shown
func (p *LoginPage) CloseErrorMessage(ctx context.Context) error {
	if !p.IsVisible(ctx, p.ErrorButton) {
		return nil
	}
	if err := p.Click(ctx, p.ErrorButton); err != nil {
		return err
	}
	return p.WaitForElementToDisappear(ctx, p.Error)
}
