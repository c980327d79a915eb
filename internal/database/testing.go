package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/skycast/internal/config"
)

// SetupTestDB creates a test database connection, skipping the test when no
// test database is configured. Set SKYCAST_TEST_DB_HOST (and friends) to run
// the integration tests against a real PostgreSQL instance.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv("SKYCAST_TEST_DB_HOST")
	if host == "" {
		t.Skip("integration test - set SKYCAST_TEST_DB_HOST to run")
	}

	cfg := &config.DatabaseConfig{
		Enabled:        true,
		Host:           host,
		Port:           envInt("SKYCAST_TEST_DB_PORT", 5432),
		Name:           envString("SKYCAST_TEST_DB_NAME", "skycast_test"),
		User:           envString("SKYCAST_TEST_DB_USER", "postgres"),
		Password:       os.Getenv("SKYCAST_TEST_DB_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 4,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema to test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	db.Close()
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}
