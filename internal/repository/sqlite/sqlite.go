package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/msomdec/inventory/internal/domain"
	"github.com/msomdec/inventory/internal/live"
	"github.com/msomdec/inventory/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const itemsTable = "items"

// DB is an open handle to one SQLite store. It owns the change registry
// that drives live queries.
type DB struct {
	SqlDB   *sql.DB
	changes *live.Registry
	items   *ItemRepository

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures New.
type Option func(*options)

type options struct {
	busyTimeout time.Duration
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys. The schema is not touched until
// Migrate is called.
func New(dbPath string, opts ...Option) (*DB, error) {
	o := options{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection serializes writers and keeps per-connection
	// pragmas (and in-memory data) alive for the life of the handle.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	ctx := context.Background()

	// In-memory databases report "memory" here instead of failing.
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := sqlDB.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", o.busyTimeout.Milliseconds())); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{SqlDB: sqlDB, changes: live.NewRegistry()}
	db.items = NewItemRepository(db)
	return db, nil
}

// Migrate brings the schema to the current version. A store written with a
// different schema is wiped and rebuilt; see migrations.Run.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.ensureOpen(); err != nil {
		return err
	}
	reset, err := migrations.Run(ctx, db.SqlDB)
	if err != nil {
		return db.storageError("migrate", err)
	}
	if reset {
		db.changes.Notify(itemsTable)
	}
	return nil
}

// Items returns the item repository bound to this handle.
func (db *DB) Items() domain.ItemRepository {
	return db.items
}

// Subscriptions reports how many live queries are attached to this handle.
func (db *DB) Subscriptions() int {
	return db.changes.Len()
}

// Close ends all live queries and closes the connection. Calling it more
// than once is safe; later calls return the first result.
func (db *DB) Close() error {
	db.closeOnce.Do(func() {
		db.closed.Store(true)
		db.changes.Close()
		db.closeErr = db.SqlDB.Close()
	})
	return db.closeErr
}

func (db *DB) ensureOpen() error {
	if db.closed.Load() {
		return domain.ErrClosed
	}
	return nil
}

// storageError wraps err for op. An error raised while or after the handle
// is closed becomes domain.ErrClosed.
func (db *DB) storageError(op string, err error) error {
	if db.closed.Load() || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w", op, domain.ErrClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueConstraintError(err error) bool {
	return err != nil &&
		(strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "PRIMARY KEY constraint failed"))
}
