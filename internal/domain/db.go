package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation owns its own schema files and reset policy, so the
// backend stays swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Items() ItemRepository
	Close() error
}
