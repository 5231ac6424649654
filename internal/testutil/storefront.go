// Package testutil starts the demo storefront in process and wires the
// browser core against it for package tests.
package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser/htmlengine"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/fixture"
	"github.com/adyen/storefront-e2e/internal/handlers"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository"
	"github.com/adyen/storefront-e2e/internal/services"
	"go.uber.org/zap/zaptest"
)

// Storefront is a running demo shop
type Storefront struct {
	URL    string
	Orders *repository.MemoryOrderRepository
}

// StartStorefront serves the demo shop on a local port until the test ends
func StartStorefront(t testing.TB) *Storefront {
	t.Helper()

	catalog := models.DefaultCatalog()
	orders := repository.NewMemoryOrderRepository()
	store, err := handlers.NewStorefront(handlers.Options{
		Auth:        services.NewAuthService(),
		Orders:      services.NewOrderService(orders, catalog),
		Catalog:     catalog,
		GlitchDelay: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to build storefront: %v", err)
	}

	srv := httptest.NewServer(store.Routes())
	t.Cleanup(srv.Close)
	return &Storefront{URL: srv.URL, Orders: orders}
}

// Config returns an automation configuration for the HTML engine against
// baseURL, with short timeouts and artifacts under a temp directory
func Config(t testing.TB, baseURL string) *config.E2EConfig {
	t.Helper()

	dir := t.TempDir()
	cfg, err := config.LoadE2EConfig(func(key string) string {
		switch key {
		case "BASE_URL":
			return baseURL
		case "BROWSER_ENGINE":
			return config.EngineHTML
		case "NAVIGATION_TIMEOUT":
			return "5000"
		case "ACTION_TIMEOUT":
			return "2000"
		case "TEST_TIMEOUT":
			return "20000"
		case "SCREENSHOT_DIR":
			return dir + "/screenshots"
		case "TRACE_DIR":
			return dir + "/traces"
		case "VIDEO_DIR":
			return dir + "/videos"
		case "REPORT_DIR":
			return dir + "/report"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// Log returns a sink writing through the test log
func Log(t testing.TB) *logging.Sink {
	return logging.NewWithCore(zaptest.NewLogger(t).Core(), false)
}

// NewRunner starts a storefront and returns a runner driving it with the
// HTML engine
func NewRunner(t testing.TB) (*fixture.Runner, *Storefront) {
	t.Helper()

	shop := StartStorefront(t)
	cfg := Config(t, shop.URL)
	log := Log(t)
	engine := htmlengine.New(htmlengine.Options{Log: log, NavigationTimeout: cfg.NavigationTimeout})
	t.Cleanup(func() { _ = engine.Close() })

	return fixture.NewRunner(engine, cfg, log), shop
}
