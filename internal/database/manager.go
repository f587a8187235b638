// Package database hands out the process's single handle to the item
// store. The handle is opened lazily on first use; concurrent first calls
// share one open.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/msomdec/inventory/internal/config"
	"github.com/msomdec/inventory/internal/repository/sqlite"
)

// Opener opens and migrates a store for cfg.
type Opener func(ctx context.Context, cfg config.Database) (*sqlite.DB, error)

// Option configures a Manager.
type Option func(*Manager)

// WithOpener replaces the function used to open the store.
func WithOpener(open Opener) Option {
	return func(m *Manager) { m.open = open }
}

// Manager owns at most one open handle to the store at a time.
type Manager struct {
	cfg  config.Database
	open Opener

	mu      sync.Mutex
	retired bool // guarded by mu
	db      atomic.Pointer[sqlite.DB]
	opens   atomic.Int64
}

// errRetired is returned by Get on a Manager that CloseDefault retired.
var errRetired = errors.New("database manager retired")

// NewManager creates a Manager. Nothing is opened until Get is called.
func NewManager(cfg config.Database, opts ...Option) *Manager {
	m := &Manager{cfg: cfg, open: Open}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the shared handle, opening it on first use. Once a handle is
// cached, Get does not lock. A failed open caches nothing, so the next call
// tries again.
func (m *Manager) Get(ctx context.Context) (*sqlite.DB, error) {
	if db := m.db.Load(); db != nil {
		return db, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have opened it while we waited for the lock.
	if db := m.db.Load(); db != nil {
		return db, nil
	}
	if m.retired {
		return nil, errRetired
	}

	db, err := m.open(ctx, m.cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	m.opens.Add(1)
	m.db.Store(db)
	slog.Info("database opened", "path", m.cfg.Path)
	return db, nil
}

// Opens reports how many times the store has been physically opened.
func (m *Manager) Opens() int64 {
	return m.opens.Load()
}

// Close closes the cached handle, if any. It is safe to call repeatedly;
// a later Get opens a fresh handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

// retire closes the handle and makes every later Get fail with errRetired.
func (m *Manager) retire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retired = true
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	db := m.db.Swap(nil)
	if db == nil {
		return nil
	}
	slog.Info("database closed", "path", m.cfg.Path)
	return db.Close()
}

// Open creates the parent directory of cfg.Path, opens the store and
// applies the schema. A store with a different schema version is reset
// and loses all its data.
func Open(ctx context.Context, cfg config.Database) (*sqlite.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	var opts []sqlite.Option
	if cfg.BusyTimeout > 0 {
		opts = append(opts, sqlite.WithBusyTimeout(cfg.BusyTimeout))
	}

	db, err := sqlite.New(cfg.Path, opts...)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

var defaultManager atomic.Pointer[Manager]

// GetDatabase returns the handle of the process-wide default Manager. The
// first call's cfg configures it; cfg is ignored afterwards until
// CloseDefault is called.
func GetDatabase(ctx context.Context, cfg config.Database) (*sqlite.DB, error) {
	for {
		m := defaultManager.Load()
		if m == nil {
			defaultManager.CompareAndSwap(nil, NewManager(cfg))
			continue
		}
		db, err := m.Get(ctx)
		if errors.Is(err, errRetired) {
			// CloseDefault ran after the Load; use its successor.
			continue
		}
		return db, err
	}
}

// CloseDefault closes and forgets the process-wide default Manager. A
// caller still holding the old Manager cannot reopen the store through it.
func CloseDefault() error {
	m := defaultManager.Swap(nil)
	if m == nil {
		return nil
	}
	return m.retire()
}
