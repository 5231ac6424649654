//go:build e2e

// Package e2e runs the browser suites against BASE_URL with the configured
// engine. Run with: go test -tags e2e ./e2e/...
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/fixture"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/adyen/storefront-e2e/internal/session"
)

var runner *fixture.Runner

// TestMain launches one browser engine for all tests. Every test gets its
// own isolated context from the runner.
func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	cfg, err := config.LoadE2EConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid e2e configuration: %v\n", err)
		return 1
	}
	log, err := logging.New(logging.Options{Debug: cfg.Debug, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	engine, err := session.LaunchEngine(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to launch browser engine", err)
		return 1
	}
	defer func() { _ = engine.Close() }()

	runner = fixture.NewRunner(engine, cfg, log)
	return m.Run()
}
