package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/inventory/internal/domain"
	"github.com/msomdec/inventory/internal/live"
)

const maxNameLength = 100

// InventoryService validates input before it reaches the item store.
type InventoryService struct {
	items domain.ItemRepository
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(items domain.ItemRepository) *InventoryService {
	return &InventoryService{items: items}
}

// AddItem creates a new item and returns it with its assigned ID.
func (s *InventoryService) AddItem(ctx context.Context, name string, price float64, quantity int) (*domain.Item, error) {
	item := &domain.Item{Name: strings.TrimSpace(name), Price: price, Quantity: quantity}
	if err := validateItem(*item); err != nil {
		return nil, err
	}

	if err := s.items.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return item, nil
}

// UpdateItem replaces the item with the given id. Unlike the store, it
// reports an unknown id as domain.ErrNotFound.
func (s *InventoryService) UpdateItem(ctx context.Context, id int64, name string, price float64, quantity int) (*domain.Item, error) {
	item := domain.Item{ID: id, Name: strings.TrimSpace(name), Price: price, Quantity: quantity}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.items.Replace(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

// DeleteItem removes the item with the given id.
func (s *InventoryService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.items.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// GetItem returns the item with the given id.
func (s *InventoryService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.items.Get(ctx, id)
}

// ListItems returns every item ordered by name.
func (s *InventoryService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.items.List(ctx)
}

// Sell takes one unit of the item out of stock.
func (s *InventoryService) Sell(ctx context.Context, id int64) (*domain.Item, error) {
	return s.items.AdjustQuantity(ctx, id, -1)
}

// Restock adds count units of the item to stock.
func (s *InventoryService) Restock(ctx context.Context, id int64, count int) (*domain.Item, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: restock count must be positive", domain.ErrInvalidInput)
	}
	return s.items.AdjustQuantity(ctx, id, count)
}

// Summary totals the inventory.
func (s *InventoryService) Summary(ctx context.Context) (domain.Summary, error) {
	return s.items.Summary(ctx)
}

// WatchAll returns a live view of every item.
func (s *InventoryService) WatchAll(ctx context.Context) *live.Query[[]domain.Item] {
	return s.items.GetAllItems(ctx)
}

// Watch returns a live view of one item.
func (s *InventoryService) Watch(ctx context.Context, id int64) *live.Query[*domain.Item] {
	return s.items.GetItem(ctx, id)
}

func validateItem(item domain.Item) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(item.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be %d characters or fewer", domain.ErrInvalidInput, maxNameLength)
	}
	if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", domain.ErrInvalidInput)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
