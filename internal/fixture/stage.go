// Package fixture provisions browser sessions for tests. A Pipeline opens an
// isolated session and runs ordered setup stages; the Lease it returns
// releases everything exactly once.
package fixture

import (
	"context"
	"fmt"

	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/adyen/storefront-e2e/internal/session"
	"go.uber.org/zap"
)

// Teardown undoes what a stage set up. It runs during Release.
type Teardown func(ctx context.Context) error

// Stage is one setup step of a pipeline
type Stage interface {
	Name() string
	Setup(ctx context.Context, s *session.Session) (Teardown, error)
}

// StageFunc adapts a function to a Stage
type StageFunc func(ctx context.Context, s *session.Session) (Teardown, error)

type namedStage struct {
	name string
	fn   StageFunc
}

func (n namedStage) Name() string { return n.name }

func (n namedStage) Setup(ctx context.Context, s *session.Session) (Teardown, error) {
	return n.fn(ctx, s)
}

// NewStage names fn
func NewStage(name string, fn StageFunc) Stage {
	return namedStage{name: name, fn: fn}
}

// Login opens the login page, submits the credentials and blocks until the
// catalog is visible. A shown error banner fails the stage with a
// *pages.LoginRejectedError.
func Login(username, password string) Stage {
	return NewStage("login", func(ctx context.Context, s *session.Session) (Teardown, error) {
		login := pages.NewLoginPage(s)
		if err := login.NavigateTo(ctx); err != nil {
			return nil, err
		}
		if err := login.Login(ctx, username, password); err != nil {
			return nil, err
		}
		if err := login.WaitForOutcome(ctx); err != nil {
			return nil, err
		}
		s.Log.Info("logged in", zap.String("username", username))
		return nil, nil
	})
}

// StandardUser logs in with the configured known-good credentials
func StandardUser(cfg *config.E2EConfig) Stage {
	return Login(cfg.AuthUsername, cfg.AuthPassword)
}

// SeedCart adds the products at the given add-to-cart indices and checks the
// badge. Indices are applied in order against the controls present at each
// step. The teardown empties the cart again.
func SeedCart(indices ...int) Stage {
	return NewStage("seed cart", func(ctx context.Context, s *session.Session) (Teardown, error) {
		products := pages.NewProductsPage(s)
		if !products.IsDisplayed(ctx) {
			if err := products.NavigateTo(ctx); err != nil {
				return nil, err
			}
		}
		before, err := products.CartBadgeCount(ctx)
		if err != nil {
			return nil, err
		}
		for _, i := range indices {
			if err := products.AddProductToCart(ctx, i); err != nil {
				return nil, err
			}
		}
		got, err := products.CartBadgeCount(ctx)
		if err != nil {
			return nil, err
		}
		if want := before + len(indices); got != want {
			return nil, fmt.Errorf("cart badge shows %d, want %d", got, want)
		}
		s.Log.Debug("cart seeded", zap.Ints("indices", indices))

		return func(ctx context.Context) error {
			return emptyCart(ctx, s)
		}, nil
	})
}

func emptyCart(ctx context.Context, s *session.Session) error {
	cart := pages.NewCartPage(s)
	if err := cart.NavigateTo(ctx); err != nil {
		return err
	}
	n, err := cart.ItemCount(ctx)
	if err != nil {
		return err
	}
	for ; n > 0; n-- {
		if err := cart.RemoveItemFromCart(ctx, 0); err != nil {
			return err
		}
	}
	return nil
}
