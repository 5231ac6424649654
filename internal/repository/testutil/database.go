// Package testutil provisions throwaway PostgreSQL schemas for the
// repository integration tests.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/database"
	"github.com/google/uuid"
)

// local development defaults, overridden by the POSTGRES_* environment
var localDefaults = map[string]string{
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "postgres",
	"POSTGRES_DB":       "postgres",
	"POSTGRES_HOSTNAME": "localhost",
}

// TestDatabase is an order store isolated in its own schema
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string
	admin      *sql.DB
}

// SetupTestDatabase creates a fresh schema, migrates it and returns a pool
// whose search_path points at it
func SetupTestDatabase(t testing.TB) *TestDatabase {
	t.Helper()

	pgConfig, err := config.LoadPostgresConfig(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return localDefaults[key]
	})
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}
	pgConfig.SearchPath = ""

	admin, err := database.Connect(pgConfig)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	schema := "orders_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec(fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		admin.Close()
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}
	td := &TestDatabase{SchemaName: schema, admin: admin}

	scoped := *pgConfig
	scoped.SearchPath = schema
	if td.DB, err = database.Connect(&scoped); err != nil {
		td.Teardown(t)
		t.Fatalf("Failed to connect to schema %s: %v", schema, err)
	}
	td.DB.SetMaxOpenConns(5)

	if err := database.RunMigrations(td.DB); err != nil {
		td.Teardown(t)
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return td
}

// Teardown closes the pool and drops the schema
func (td *TestDatabase) Teardown(t testing.TB) {
	t.Helper()

	if td.DB != nil {
		td.DB.Close()
		td.DB = nil
	}
	if td.admin == nil {
		return
	}
	if _, err := td.admin.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", td.SchemaName)); err != nil {
		t.Logf("Warning: failed to drop schema %s: %v", td.SchemaName, err)
	}
	td.admin.Close()
	td.admin = nil
}
