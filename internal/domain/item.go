package domain

import (
	"context"

	"github.com/msomdec/inventory/internal/live"
)

// Item is a single inventory record.
type Item struct {
	ID       int64
	Name     string
	Price    float64
	Quantity int
}

// Value returns the stock value of the item at its unit price.
func (i Item) Value() float64 {
	return i.Price * float64(i.Quantity)
}

// ItemRepository defines persistence operations for items.
//
// Update and Delete match by ID and are silent no-ops when no such item
// exists. GetItem and GetAllItems return live queries that emit a fresh
// snapshot after every committed write to the items table.
type ItemRepository interface {
	Insert(ctx context.Context, item *Item) error
	Update(ctx context.Context, item Item) error
	Delete(ctx context.Context, item Item) error
	// Replace and Remove are Update and Delete that report an unknown id
	// as ErrNotFound.
	Replace(ctx context.Context, item Item) error
	Remove(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	AdjustQuantity(ctx context.Context, id int64, delta int) (*Item, error)
	Summary(ctx context.Context) (Summary, error)
	GetItem(ctx context.Context, id int64) *live.Query[*Item]
	GetAllItems(ctx context.Context) *live.Query[[]Item]
}

// Summary aggregates the current inventory.
type Summary struct {
	Items      int
	Units      int
	TotalValue float64
}
