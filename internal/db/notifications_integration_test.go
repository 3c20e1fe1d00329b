//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests require a running PostgreSQL database.
// Set TEST_DATABASE_URL environment variable to run them.

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))
	t.Cleanup(db.Close)
	return db
}

func TestIntegration_MarkSentThenHasSent(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	ref := "test-" + uuid.NewString()

	sent, err := db.HasSent(ctx, ref)
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, db.MarkSent(ctx, ref, "notification-1"))
	require.NoError(t, db.MarkSent(ctx, ref, "notification-2"), "duplicate marks are ignored")

	sent, err = db.HasSent(ctx, ref)
	require.NoError(t, err)
	assert.True(t, sent)

	_, _ = db.pool.Exec(ctx, "DELETE FROM sent_notifications WHERE reference = $1", ref)
}
