// Package sqlitetest provides an ephemeral, in-memory store for tests.
// Nothing is written to disk and the store is closed when the test ends.
package sqlitetest

import (
	"context"
	"testing"

	"github.com/msomdec/inventory/internal/repository/sqlite"
)

// New opens a migrated in-memory store that is closed on test cleanup.
func New(tb testing.TB) *sqlite.DB {
	tb.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		tb.Fatalf("open in-memory database: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		tb.Fatalf("migrate in-memory database: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}
