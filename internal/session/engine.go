package session

import (
	"context"
	"fmt"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/browser/cdpengine"
	"github.com/adyen/storefront-e2e/internal/browser/htmlengine"
	"github.com/adyen/storefront-e2e/internal/browser/pwengine"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/logging"
	"go.uber.org/zap"
)

// LaunchEngine starts the engine named by the configuration
func LaunchEngine(ctx context.Context, cfg *config.E2EConfig, log *logging.Sink) (browser.Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Info("launching browser engine",
		zap.String("engine", cfg.Engine),
		zap.String("browser", cfg.Browser),
		zap.Bool("headless", cfg.Headless))

	switch cfg.Engine {
	case config.EnginePlaywright:
		return pwengine.Launch(pwengine.Options{
			Browser:  cfg.Browser,
			Headless: cfg.Headless,
			Log:      log,
		})
	case config.EngineChromedp:
		if cfg.Browser != "chromium" {
			return nil, fmt.Errorf("chromedp engine only drives chromium, got %q", cfg.Browser)
		}
		return cdpengine.Launch(cdpengine.Options{
			Headless:          cfg.Headless,
			IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
			Log:               log,
		})
	case config.EngineHTML:
		return htmlengine.New(htmlengine.Options{
			Log:               log,
			NavigationTimeout: cfg.NavigationTimeout,
		}), nil
	}
	return nil, fmt.Errorf("unknown browser engine %q", cfg.Engine)
}
