package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/inventory/internal/domain"
	"github.com/msomdec/inventory/internal/live"
)

// ItemRepository implements domain.ItemRepository using SQLite.
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new SQLite-backed ItemRepository.
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Insert adds item. A zero ID is assigned by SQLite and written back to
// item; a non-zero ID that already exists yields domain.ErrConflict.
func (r *ItemRepository) Insert(ctx context.Context, item *domain.Item) error {
	if err := r.db.ensureOpen(); err != nil {
		return err
	}

	var id any
	if item.ID != 0 {
		id = item.ID
	}
	result, err := r.db.SqlDB.ExecContext(ctx,
		`INSERT INTO items (id, name, price, quantity) VALUES (?, ?, ?, ?)`,
		id, item.Name, item.Price, item.Quantity,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("insert item %d: %w", item.ID, domain.ErrConflict)
		}
		return r.db.storageError("insert item", err)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	item.ID = newID

	r.db.changes.Notify(itemsTable)
	return nil
}

// Update replaces every field of the item with item.ID. It does nothing if
// no such item exists.
func (r *ItemRepository) Update(ctx context.Context, item domain.Item) error {
	_, err := r.update(ctx, item)
	return err
}

// Replace is Update reporting an unknown id as domain.ErrNotFound. The
// check and the write are one statement, so a racing delete cannot be
// mistaken for success.
func (r *ItemRepository) Replace(ctx context.Context, item domain.Item) error {
	n, err := r.update(ctx, item)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) update(ctx context.Context, item domain.Item) (int64, error) {
	if err := r.db.ensureOpen(); err != nil {
		return 0, err
	}

	result, err := r.db.SqlDB.ExecContext(ctx,
		`UPDATE items SET name = ?, price = ?, quantity = ? WHERE id = ?`,
		item.Name, item.Price, item.Quantity, item.ID,
	)
	if err != nil {
		return 0, r.db.storageError("update item", err)
	}
	return r.notifyIfChanged(result)
}

// Delete removes the item with item.ID. It does nothing if no such item
// exists.
func (r *ItemRepository) Delete(ctx context.Context, item domain.Item) error {
	_, err := r.deleteByID(ctx, item.ID)
	return err
}

// Remove deletes the item with the given id, or returns domain.ErrNotFound.
func (r *ItemRepository) Remove(ctx context.Context, id int64) error {
	n, err := r.deleteByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) deleteByID(ctx context.Context, id int64) (int64, error) {
	if err := r.db.ensureOpen(); err != nil {
		return 0, err
	}

	result, err := r.db.SqlDB.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return 0, r.db.storageError("delete item", err)
	}
	return r.notifyIfChanged(result)
}

func (r *ItemRepository) notifyIfChanged(result sql.Result) (int64, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if rows > 0 {
		r.db.changes.Notify(itemsTable)
	}
	return rows, nil
}

// AdjustQuantity adds delta to the quantity of item id in one transaction
// and returns the updated item. It fails with domain.ErrNotFound for an
// unknown id and domain.ErrInvalidInput if the result would be negative.
func (r *ItemRepository) AdjustQuantity(ctx context.Context, id int64, delta int) (*domain.Item, error) {
	if err := r.db.ensureOpen(); err != nil {
		return nil, err
	}

	tx, err := r.db.SqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.db.storageError("begin transaction", err)
	}
	defer tx.Rollback()

	item := &domain.Item{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, price, quantity FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Price, &item.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, r.db.storageError("get item", err)
	}

	if item.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: only %d of %q in stock", domain.ErrInvalidInput, item.Quantity, item.Name)
	}
	item.Quantity += delta

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity = ? WHERE id = ?`, item.Quantity, id); err != nil {
		return nil, r.db.storageError("update quantity", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, r.db.storageError("commit", err)
	}

	if delta != 0 {
		r.db.changes.Notify(itemsTable)
	}
	return item, nil
}

// Get returns the item with the given id, or domain.ErrNotFound.
func (r *ItemRepository) Get(ctx context.Context, id int64) (*domain.Item, error) {
	if err := r.db.ensureOpen(); err != nil {
		return nil, err
	}

	item := &domain.Item{}
	err := r.db.SqlDB.QueryRowContext(ctx,
		`SELECT id, name, price, quantity FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Price, &item.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, r.db.storageError("get item by id", err)
	}
	return item, nil
}

// List returns all items ordered by name, then id.
func (r *ItemRepository) List(ctx context.Context) ([]domain.Item, error) {
	if err := r.db.ensureOpen(); err != nil {
		return nil, err
	}

	rows, err := r.db.SqlDB.QueryContext(ctx,
		`SELECT id, name, price, quantity FROM items ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, r.db.storageError("list items", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Summary totals the items, units and stock value.
func (r *ItemRepository) Summary(ctx context.Context) (domain.Summary, error) {
	var s domain.Summary
	if err := r.db.ensureOpen(); err != nil {
		return s, err
	}

	err := r.db.SqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0), COALESCE(SUM(price * quantity), 0) FROM items`,
	).Scan(&s.Items, &s.Units, &s.TotalValue)
	if err != nil {
		return s, r.db.storageError("summarize items", err)
	}
	return s, nil
}

// GetItem returns a live view of one item. A nil snapshot means the item
// does not exist.
func (r *ItemRepository) GetItem(ctx context.Context, id int64) *live.Query[*domain.Item] {
	return live.Watch[*domain.Item](ctx, r.db.changes, func(ctx context.Context) (*domain.Item, error) {
		item, err := r.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return item, err
	}, itemsTable)
}

// GetAllItems returns a live view of every item ordered by name.
func (r *ItemRepository) GetAllItems(ctx context.Context) *live.Query[[]domain.Item] {
	return live.Watch[[]domain.Item](ctx, r.db.changes, r.List, itemsTable)
}

func scanItems(rows *sql.Rows) ([]domain.Item, error) {
	items := []domain.Item{}
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
