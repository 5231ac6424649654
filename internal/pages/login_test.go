package pages_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/adyen/storefront-e2e/internal/scenarios"
	"github.com/adyen/storefront-e2e/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPage_ValidLogins(t *testing.T) {
	runner, _ := testutil.NewRunner(t)

	for _, row := range scenarios.ValidLogins() {
		t.Run(row.Description, func(t *testing.T) {
			ctx, s := runner.Session(t)
			login := pages.NewLoginPage(s)
			require.NoError(t, login.NavigateTo(ctx))

			require.NoError(t, login.Login(ctx, row.Username, row.Password))
			require.NoError(t, login.WaitForOutcome(ctx))

			products := pages.NewProductsPage(s)
			assert.True(t, products.IsDisplayed(ctx))
			assert.True(t, browser.MatchURL("**"+pages.ProductsPath, login.CurrentURL()), "landed on %s", login.CurrentURL())
			assert.False(t, login.IsErrorMessageDisplayed(ctx))
			n, err := products.ProductCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, 6, n)
		})
	}
}

func TestLoginPage_InvalidLogins(t *testing.T) {
	runner, _ := testutil.NewRunner(t)

	for _, row := range scenarios.InvalidLogins() {
		t.Run(row.Description, func(t *testing.T) {
			ctx, s := runner.Session(t)
			login := pages.NewLoginPage(s)
			require.NoError(t, login.NavigateTo(ctx))

			require.NoError(t, login.Login(ctx, row.Username, row.Password))
			err := login.WaitForOutcome(ctx)

			var rejected *pages.LoginRejectedError
			require.True(t, errors.As(err, &rejected), "got %v", err)
			assert.Equal(t, row.Kind, rejected.Kind)
			assert.True(t, strings.HasPrefix(rejected.Message, "Epic sadface:"), rejected.Message)

			msg, err := login.ErrorMessage(ctx)
			require.NoError(t, err)
			assert.Equal(t, rejected.Message, msg)
			assert.True(t, login.IsDisplayed(ctx))
		})
	}
}

func TestLoginPage_CloseErrorMessage(t *testing.T) {
	runner, _ := testutil.NewRunner(t)
	ctx, s := runner.Session(t)
	login := pages.NewLoginPage(s)
	require.NoError(t, login.NavigateTo(ctx))

	// closing without a banner is a no-op
	require.NoError(t, login.CloseErrorMessage(ctx))

	require.NoError(t, login.Login(ctx, "locked_out_user", "secret_sauce"))
	require.Error(t, login.WaitForOutcome(ctx))
	require.True(t, login.IsErrorMessageDisplayed(ctx))

	require.NoError(t, login.CloseErrorMessage(ctx))
	assert.False(t, login.IsErrorMessageDisplayed(ctx))
	assert.True(t, login.IsDisplayed(ctx))
}

func TestLoginPage_ProtectedPageNeedsLogin(t *testing.T) {
	runner, _ := testutil.NewRunner(t)
	ctx, s := runner.Session(t)
	login := pages.NewLoginPage(s)

	require.NoError(t, login.Navigate(ctx, pages.CartPath))

	msg, err := login.ErrorMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, pages.LoginUnauthenticated, pages.ClassifyLoginError(msg))
	assert.Contains(t, msg, pages.CartPath)
}

func TestClassifyLoginError(t *testing.T) {
	tests := []struct {
		msg  string
		want pages.LoginErrorKind
	}{
		{"Epic sadface: Sorry, this user has been locked out.", pages.LoginLockedOut},
		{"Epic sadface: Username is required", pages.LoginMissingUsername},
		{"Epic sadface: Password is required", pages.LoginMissingPassword},
		{"Epic sadface: Username and password do not match any user in this service", pages.LoginMismatch},
		{"Epic sadface: You can only access '/cart.html' when you are logged in.", pages.LoginUnauthenticated},
		{"EPIC SADFACE: SORRY, THIS USER HAS BEEN LOCKED OUT.", pages.LoginLockedOut},
		{"something else", pages.LoginUnknown},
		{"", pages.LoginUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, pages.ClassifyLoginError(tt.msg))
		})
	}
}
