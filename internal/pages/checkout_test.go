package pages_test

import (
	"testing"

	"github.com/adyen/storefront-e2e/internal/fixture"
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/adyen/storefront-e2e/internal/scenarios"
	"github.com/adyen/storefront-e2e/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopperWithCart(t *testing.T, runner *fixture.Runner, indices ...int) *fixture.Pipeline {
	t.Helper()
	return runner.Pipeline().With(fixture.StandardUser(runner.Config()), fixture.SeedCart(indices...))
}

func TestCheckout_CompleteFlow(t *testing.T) {
	runner, shop := testutil.NewRunner(t)
	for _, row := range scenarios.ValidCheckouts() {
		t.Run(row.Description, func(t *testing.T) {
			ctx, s := runner.Run(t, shopperWithCart(t, runner, 0, 0))
			before := shop.Orders.Len()

			cart := pages.NewCartPage(s)
			require.NoError(t, cart.NavigateTo(ctx))
			prices, err := cart.ItemPrices(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"$29.99", "$9.99"}, prices)
			require.NoError(t, cart.ClickCheckout(ctx))

			stepOne := pages.NewCheckoutStepOnePage(s)
			require.NoError(t, stepOne.FillCheckoutForm(ctx, row.FirstName, row.LastName, row.PostalCode))
			require.NoError(t, stepOne.ClickContinue(ctx))

			stepTwo := pages.NewCheckoutStepTwoPage(s)
			require.NoError(t, stepTwo.WaitForURL(ctx, "**"+pages.CheckoutStepTwoPath))
			n, err := stepTwo.ItemCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			summary, err := stepTwo.Summary(ctx)
			require.NoError(t, err)
			assert.Equal(t, pages.OrderSummary{Subtotal: 3998, Tax: 320, Total: 4318}, summary)

			require.NoError(t, stepTwo.ClickFinish(ctx))

			complete := pages.NewCheckoutCompletePage(s)
			header, err := complete.HeaderText(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Thank you for your order!", header)
			ref, ok, err := complete.OrderReference(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.NotEmpty(t, ref)
			assert.Equal(t, before+1, shop.Orders.Len())

			require.NoError(t, complete.ClickBackToHome(ctx))
			badge, err := pages.NewProductsPage(s).CartBadgeCount(ctx)
			require.NoError(t, err)
			assert.Zero(t, badge)
		})
	}
}

func TestCheckout_FieldErrors(t *testing.T) {
	runner, _ := testutil.NewRunner(t)
	for _, row := range scenarios.InvalidCheckouts() {
		t.Run(row.Description, func(t *testing.T) {
			ctx, s := runner.Run(t, shopperWithCart(t, runner, 0))
			stepOne := pages.NewCheckoutStepOnePage(s)
			require.NoError(t, stepOne.NavigateTo(ctx))

			require.NoError(t, stepOne.FillCheckoutForm(ctx, row.FirstName, row.LastName, row.PostalCode))
			require.NoError(t, stepOne.ClickContinue(ctx))

			msg, err := stepOne.ErrorMessage(ctx)
			require.NoError(t, err)
			assert.Equal(t, row.Error, msg)
			assert.True(t, stepOne.IsDisplayed(ctx))

			require.NoError(t, stepOne.CloseErrorMessage(ctx))
			assert.False(t, stepOne.IsErrorMessageDisplayed(ctx))
		})
	}
}

func TestCheckout_CancelReturnsToCart(t *testing.T) {
	runner, _ := testutil.NewRunner(t)
	ctx, s := runner.Run(t, shopperWithCart(t, runner, 0))
	stepOne := pages.NewCheckoutStepOnePage(s)
	require.NoError(t, stepOne.NavigateTo(ctx))

	require.NoError(t, stepOne.ClickCancel(ctx))

	cart := pages.NewCartPage(s)
	n, err := cart.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCheckout_OverviewCancel(t *testing.T) {
	runner, shop := testutil.NewRunner(t)
	ctx, s := runner.Run(t, shopperWithCart(t, runner, 1))
	before := shop.Orders.Len()
	stepOne := pages.NewCheckoutStepOnePage(s)
	require.NoError(t, stepOne.NavigateTo(ctx))
	require.NoError(t, stepOne.FillCheckoutForm(ctx, "John", "Doe", "12345"))
	require.NoError(t, stepOne.ClickContinue(ctx))

	stepTwo := pages.NewCheckoutStepTwoPage(s)
	require.NoError(t, stepTwo.WaitForElement(ctx, stepTwo.FinishButton))
	require.NoError(t, stepTwo.ClickCancel(ctx))

	badge, err := pages.NewProductsPage(s).CartBadgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, badge)
	assert.Equal(t, before, shop.Orders.Len(), "cancelling the overview places no order")
}

func TestCartPage_EmptyCart(t *testing.T) {
	runner, _ := testutil.NewRunner(t)
	ctx, s := runner.AuthenticatedSession(t)
	cart := pages.NewCartPage(s)
	require.NoError(t, cart.NavigateTo(ctx))

	empty, err := cart.IsCartEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)
	enabled, err := cart.IsCheckoutButtonEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	assert.Error(t, cart.RemoveItemFromCart(ctx, 0))

	require.NoError(t, cart.ClickContinueShopping(ctx))
	assert.True(t, pages.NewProductsPage(s).IsDisplayed(ctx))
}

func TestCartPage_RemoveShiftsLines(t *testing.T) {
	runner, _ := testutil.NewRunner(t)
	ctx, s := runner.Run(t, shopperWithCart(t, runner, 0, 0, 0))
	cart := pages.NewCartPage(s)
	require.NoError(t, cart.NavigateTo(ctx))

	require.NoError(t, cart.RemoveItemFromCart(ctx, 0))

	names, err := cart.ItemNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sauce Labs Bike Light", "Sauce Labs Bolt T-Shirt"}, names)
}
