package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/adyen/storefront-e2e/internal/browser/pwengine"
	internalcli "github.com/adyen/storefront-e2e/internal/cli"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/database"
	"github.com/adyen/storefront-e2e/internal/handlers"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository"
	"github.com/adyen/storefront-e2e/internal/services"
	"github.com/adyen/storefront-e2e/internal/session"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var version = "0.1.0"

// newLog builds the sink used by every command
func newLog(debug bool, format string) (*logging.Sink, error) {
	return logging.New(logging.Options{Debug: debug, Format: format, Output: os.Stderr})
}

// buildServerDependencies wires the storefront. Orders go to PostgreSQL when
// POSTGRES_HOSTNAME is set and stay in memory otherwise. The returned
// closer releases the database, if any.
func buildServerDependencies(sink *logging.Sink) (internalcli.ServerDependencies, func(), error) {
	deps := internalcli.ServerDependencies{Log: sink}
	closer := func() {}

	serverConfig, err := config.LoadServerConfig(os.Getenv)
	if err != nil {
		return deps, closer, fmt.Errorf("invalid server configuration: %w", err)
	}
	deps.ServerConfig = serverConfig

	var orderRepo services.OrderRepository = repository.NewMemoryOrderRepository()
	if config.PostgresEnabled(os.Getenv) {
		db, err := openOrderDatabase()
		if err != nil {
			return deps, closer, err
		}
		closer = func() { _ = db.Close() }
		orderRepo = repository.NewOrderRepositoryWithDB(db)
		sink.Info("orders stored in postgres")
	} else {
		sink.Info("orders stored in memory")
	}

	catalog := models.DefaultCatalog()
	store, err := handlers.NewStorefront(handlers.Options{
		Auth:        services.NewAuthService(),
		Orders:      services.NewOrderService(orderRepo, catalog),
		Catalog:     catalog,
		Log:         sink,
		GlitchDelay: serverConfig.GlitchDelay,
	})
	if err != nil {
		closer()
		return deps, func() {}, fmt.Errorf("failed to create storefront: %w", err)
	}
	deps.Handler = store.Routes()
	return deps, closer, nil
}

func openOrderDatabase() (*sql.DB, error) {
	pgConfig, err := config.LoadPostgresConfig(os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres configuration: %w", err)
	}
	db, err := database.Connect(pgConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return db, nil
}

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the demo storefront",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "log every request", EnvVars: []string{"DEBUG"}},
		},
		Action: func(c *cli.Context) error {
			sink, err := newLog(c.Bool("debug"), os.Getenv("LOG_FORMAT"))
			if err != nil {
				return err
			}
			defer func() { _ = sink.Sync() }()

			deps, closer, err := buildServerDependencies(sink)
			if err != nil {
				return err
			}
			defer closer()

			return internalcli.RunServe(deps)
		},
	}
}

// SmokeCommand returns the smoke command
func SmokeCommand() *cli.Command {
	return &cli.Command{
		Name:  "smoke",
		Usage: "Run every login scenario against BASE_URL and write a JSON report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Usage: "override BASE_URL"},
			&cli.StringFlag{Name: "engine", Usage: "override BROWSER_ENGINE"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadE2EConfigFromEnv()
			if err != nil {
				return err
			}
			if v := c.String("base-url"); v != "" {
				cfg.BaseURL = v
			}
			if v := c.String("engine"); v != "" {
				cfg.Engine = v
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			sink, err := newLog(cfg.Debug, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = sink.Sync() }()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			engine, err := session.LaunchEngine(ctx, cfg, sink)
			if err != nil {
				return fmt.Errorf("failed to launch browser engine: %w", err)
			}
			defer func() {
				if err := engine.Close(); err != nil {
					sink.Warn("closing browser engine failed", zap.Error(err))
				}
			}()

			report, err := internalcli.RunSmoke(ctx, internalcli.SmokeOptions{Engine: engine, Config: cfg, Log: sink})
			if err != nil {
				return err
			}
			path, err := report.Write(cfg.ReportDir)
			if err != nil {
				return err
			}
			sink.Info("smoke report written", zap.String("path", path))

			if report.Failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d login scenarios failed", report.Failed, len(report.Results)), 1)
			}
			return nil
		},
	}
}

// InstallCommand returns the install command
func InstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Download the Playwright driver and browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "browser", Value: "chromium", EnvVars: []string{"BROWSER"}},
		},
		Action: func(c *cli.Context) error {
			return pwengine.Install(c.String("browser"))
		},
	}
}

// ConfigCommand returns the config command
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective automation configuration as JSON",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadE2EConfigFromEnv()
			if err != nil {
				return err
			}
			cfg.AuthPassword = "********"
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "storefront-e2e",
		Usage:   "Demo storefront and browser automation harness",
		Version: version,
		Commands: []*cli.Command{
			ServeCommand(),
			SmokeCommand(),
			InstallCommand(),
			ConfigCommand(),
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
