package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/msomdec/inventory/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_FreshDatabase(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	reset, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reset {
		t.Fatal("fresh database should not report a reset")
	}

	if _, err := db.ExecContext(ctx,
		"INSERT INTO items (name, price, quantity) VALUES (?, ?, ?)", "Apples", 10.0, 20); err != nil {
		t.Fatalf("insert into items: %v", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != migrations.Version {
		t.Fatalf("expected user_version %d, got %d", migrations.Version, version)
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO items (name, price, quantity) VALUES (?, ?, ?)", "Apples", 10.0, 20); err != nil {
		t.Fatalf("insert: %v", err)
	}

	reset, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}
	if reset {
		t.Fatal("second run should not reset")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected data to survive, got %d rows", count)
	}
}

func TestRun_VersionMismatchResets(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO items (name, price, quantity) VALUES (?, ?, ?)", "Apples", 10.0, 20); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}

	reset, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reset {
		t.Fatal("expected a reset on version mismatch")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected data to be discarded, got %d rows", count)
	}
}

func TestRun_IdentityMismatchResets(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := db.ExecContext(ctx, "UPDATE schema_identity SET identity_hash = 'stale'"); err != nil {
		t.Fatalf("tamper identity: %v", err)
	}

	reset, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reset {
		t.Fatal("expected a reset on identity mismatch")
	}
}

func TestRun_ForeignTablesDropped(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE legacy (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create legacy: %v", err)
	}

	reset, err := migrations.Run(ctx, db)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reset {
		t.Fatal("expected a reset when unknown tables exist")
	}

	var n int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'legacy'").Scan(&n); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if n != 0 {
		t.Fatal("expected legacy table to be dropped")
	}
}
