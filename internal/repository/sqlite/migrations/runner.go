// Package migrations owns the SQLite schema. There is one schema version;
// a store written by any other version is discarded and rebuilt rather
// than migrated. That reset deletes every row in the store.
package migrations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Version is the schema version stored in PRAGMA user_version.
const Version = 1

//go:embed schema.sql
var schema string

// Identity returns a hash of the schema text. It changes whenever the
// schema file changes, even if Version was not bumped.
func Identity() string {
	sum := sha256.Sum256([]byte(schema))
	return hex.EncodeToString(sum[:])
}

// Run makes sure the database holds the current schema. A fresh database is
// initialized. A database whose version or identity does not match is
// reset: all user tables are dropped and the schema is recreated. Run
// reports whether existing tables were dropped.
func Run(ctx context.Context, db *sql.DB) (bool, error) {
	version, err := userVersion(ctx, db)
	if err != nil {
		return false, fmt.Errorf("read user_version: %w", err)
	}

	tables, err := userTables(ctx, db)
	if err != nil {
		return false, fmt.Errorf("list tables: %w", err)
	}

	if version == Version {
		identity, err := storedIdentity(ctx, db)
		if err != nil {
			return false, fmt.Errorf("read schema identity: %w", err)
		}
		if identity == Identity() {
			slog.Debug("schema up to date", "version", version)
			return false, nil
		}
	}

	reset := len(tables) > 0
	if reset {
		slog.Warn("schema mismatch, discarding all stored data",
			"found_version", version, "want_version", Version, "tables", len(tables))
	}

	if err := rebuild(ctx, db, tables); err != nil {
		return false, err
	}
	slog.Info("schema created", "version", Version)
	return reset, nil
}

func rebuild(ctx context.Context, db *sql.DB, tables []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_identity (id, identity_hash) VALUES (1, ?)", Identity()); err != nil {
		return fmt.Errorf("record schema identity: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", Version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return tx.Commit()
}

func userVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	return version, err
}

func userTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func storedIdentity(ctx context.Context, db *sql.DB) (string, error) {
	var identity string
	err := db.QueryRowContext(ctx, "SELECT identity_hash FROM schema_identity WHERE id = 1").Scan(&identity)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return "", nil
	}
	return identity, err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
