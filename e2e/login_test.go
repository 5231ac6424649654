//go:build e2e

package e2e

import (
	"errors"
	"testing"

	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/adyen/storefront-e2e/internal/scenarios"
)

// TestLogin covers every credential row
// Feature: Login
//
//	As a shopper
//	I want to log in with my credentials
//	So that I can browse the catalog
func TestLogin(t *testing.T) {
	for _, row := range scenarios.Logins() {
		t.Run(row.Description, func(t *testing.T) {
			// Scenario: Log in
			//   Given I am on the login page
			//   When I submit the credentials
			//   Then I see the catalog for a valid row
			//   Or an error banner of the expected kind otherwise

			ctx, s := runner.Session(t)
			login := pages.NewLoginPage(s)

			// Given I am on the login page
			if err := login.NavigateTo(ctx); err != nil {
				t.Fatalf("Failed to open login page: %v", err)
			}

			// When I submit the credentials
			if err := login.Login(ctx, row.Username, row.Password); err != nil {
				t.Fatalf("Failed to submit credentials: %v", err)
			}
			err := login.WaitForOutcome(ctx)

			if row.Valid {
				// Then I see the catalog
				if err != nil {
					t.Fatalf("Expected login to succeed, got %v", err)
				}
				if !pages.NewProductsPage(s).IsDisplayed(ctx) {
					t.Error("Catalog is not visible")
				}
				return
			}

			// Or an error banner of the expected kind
			var rejected *pages.LoginRejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("Expected login to be rejected, got %v", err)
			}
			if rejected.Kind != row.Kind {
				t.Errorf("Expected error kind %q, got %q (%s)", row.Kind, rejected.Kind, rejected.Message)
			}
		})
	}
}

// TestLogout checks the session ends from the menu
func TestLogout(t *testing.T) {
	// Scenario: Log out
	//   Given I am logged in
	//   When I log out from the menu
	//   Then I am back on the login page

	// Given I am logged in
	ctx, s := runner.AuthenticatedSession(t)

	// When I log out from the menu
	if err := pages.NewProductsPage(s).Logout(ctx); err != nil {
		t.Fatalf("Failed to log out: %v", err)
	}

	// Then I am back on the login page
	if !pages.NewLoginPage(s).IsDisplayed(ctx) {
		t.Error("Login page is not visible after logout")
	}
}
