// Package testentry provides the fixtures shared by package tests: an
// in-memory database carrying the full schema and a test-scoped logger.
package testentry

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"barricade.gg/backend/internal/repo"
)

// DB opens a fresh in-memory database with the schema created. Every test
// gets its own database.
func DB(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive and serializes
	// transactions
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, repo.CreateSchema(context.Background(), db))

	Logger(t)
	return db
}

// Logger routes the global logger to the test log for the duration of t.
func Logger(t testing.TB) {
	prev := log.Logger
	log.Logger = log.Logger.Output(zerolog.NewTestWriter(t))
	t.Cleanup(func() {
		log.Logger = prev
	})
}
