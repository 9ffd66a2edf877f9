package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the document store. They need a running Postgres
// with the documents/collection_summaries/sync_status tables; without one
// they skip.

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     envOr("TEST_DATABASE_HOST", "localhost"),
		Port:     envOr("TEST_DATABASE_PORT", "5432"),
		Database: envOr("TEST_DATABASE_NAME", "sportsedge_test"),
		User:     envOr("TEST_DATABASE_USER", "sportsedge_user"),
		Password: envOr("TEST_DATABASE_PASSWORD", "sportsedge_password"),
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	require.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}
