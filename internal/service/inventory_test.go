package service_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/msomdec/inventory/internal/domain"
	"github.com/msomdec/inventory/internal/repository/sqlite/sqlitetest"
	"github.com/msomdec/inventory/internal/service"
)

func newTestInventoryService(t *testing.T) *service.InventoryService {
	t.Helper()
	return service.NewInventoryService(sqlitetest.New(t).Items())
}

func TestInventoryService_AddItem(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "  Apples ", 10, 20)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be set")
	}
	if item.Name != "Apples" {
		t.Fatalf("expected trimmed name, got %q", item.Name)
	}
}

func TestInventoryService_AddItem_Invalid(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		itemName string
		price    float64
		quantity int
	}{
		{"empty name", "   ", 1, 1},
		{"long name", strings.Repeat("x", 101), 1, 1},
		{"negative price", "Apples", -1, 1},
		{"NaN price", "Apples", math.NaN(), 1},
		{"infinite price", "Apples", math.Inf(1), 1},
		{"negative quantity", "Apples", 1, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, tc.itemName, tc.price, tc.quantity)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	items, err := svc.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("invalid input reached the store: %+v", items)
	}
}

func TestInventoryService_UpdateItem(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "Apples", 10, 20)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	updated, err := svc.UpdateItem(ctx, item.ID, "Bananas", 5, 50)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	want := domain.Item{ID: item.ID, Name: "Bananas", Price: 5, Quantity: 50}
	if *updated != want {
		t.Fatalf("expected %+v, got %+v", want, *updated)
	}

	found, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if *found != want {
		t.Fatalf("expected stored %+v, got %+v", want, *found)
	}
}

func TestInventoryService_UpdateItem_NotFound(t *testing.T) {
	svc := newTestInventoryService(t)

	_, err := svc.UpdateItem(context.Background(), 404, "Ghost", 1, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// racingDelete removes the item just before every Replace, like another
// writer getting in first.
type racingDelete struct {
	domain.ItemRepository
}

func (r racingDelete) Replace(ctx context.Context, item domain.Item) error {
	if err := r.ItemRepository.Delete(ctx, item); err != nil {
		return err
	}
	return r.ItemRepository.Replace(ctx, item)
}

func TestInventoryService_UpdateItem_DeletedByOtherWriter(t *testing.T) {
	repo := sqlitetest.New(t).Items()
	svc := service.NewInventoryService(racingDelete{repo})
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "Apples", 10, 20)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if _, err := svc.UpdateItem(ctx, item.ID, "Bananas", 5, 50); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	items, err := svc.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected the update to write nothing, got %+v", items)
	}
}

func TestInventoryService_DeleteItem(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "Apples", 10, 20)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := svc.DeleteItem(ctx, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInventoryService_SellAndRestock(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "Apples", 10, 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	sold, err := svc.Sell(ctx, item.ID)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if sold.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", sold.Quantity)
	}

	if _, err := svc.Sell(ctx, item.ID); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when out of stock, got %v", err)
	}

	restocked, err := svc.Restock(ctx, item.ID, 5)
	if err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if restocked.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", restocked.Quantity)
	}

	if _, err := svc.Restock(ctx, item.ID, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero restock, got %v", err)
	}
}

func TestInventoryService_Summary(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "Apples", 2.5, 4); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.AddItem(ctx, "Oranges", 1, 3); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	s, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := domain.Summary{Items: 2, Units: 7, TotalValue: 13}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
}

func TestInventoryService_WatchAll(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	q := svc.WatchAll(ctx)
	defer q.Close()

	first := <-q.C()
	if len(first) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", first)
	}

	if _, err := svc.AddItem(ctx, "Apples", 10, 20); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	next, ok := <-q.C()
	if !ok {
		t.Fatalf("query ended: %v", q.Err())
	}
	if len(next) != 1 || next[0].Name != "Apples" {
		t.Fatalf("expected [Apples], got %+v", next)
	}
}
