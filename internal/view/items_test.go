package view_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/inventory/internal/domain"
	"github.com/msomdec/inventory/internal/view"
)

func TestItemTable(t *testing.T) {
	var sb strings.Builder
	items := []domain.Item{
		{ID: 1, Name: "Apples", Price: 10, Quantity: 20},
		{ID: 2, Name: "<script>", Price: 1.5, Quantity: 3},
	}
	if err := view.ItemTable(items).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := sb.String()

	if !strings.HasPrefix(html, `<table id="items">`) {
		t.Fatalf("expected table with id, got %s", html)
	}
	if !strings.Contains(html, `<tr id="item-1"><td>Apples</td><td>$10.00</td><td>20</td></tr>`) {
		t.Fatalf("missing Apples row: %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("item name was not escaped: %s", html)
	}
	if strings.Index(html, "item-1") > strings.Index(html, "item-2") {
		t.Fatal("rows rendered out of order")
	}
}

func TestItemTable_Empty(t *testing.T) {
	var sb strings.Builder
	if err := view.ItemTable(nil).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), "No items in inventory") {
		t.Fatalf("expected empty placeholder, got %s", sb.String())
	}
}

func TestItemDetail(t *testing.T) {
	var sb strings.Builder
	item := &domain.Item{ID: 7, Name: "Oranges", Price: 15, Quantity: 2}
	if err := view.ItemDetail(item).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := sb.String()
	if !strings.Contains(html, `data-item-id="7"`) || !strings.Contains(html, "$30.00") {
		t.Fatalf("unexpected detail markup: %s", html)
	}

	sb.Reset()
	if err := view.ItemDetail(nil).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render nil: %v", err)
	}
	if !strings.Contains(sb.String(), "Item not found") {
		t.Fatalf("expected not-found placeholder, got %s", sb.String())
	}
}

func TestItemTable_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sb strings.Builder
	err := view.ItemTable([]domain.Item{{ID: 1, Name: "Apples"}}).Render(ctx, &sb)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sb.Len() != 0 {
		t.Fatalf("expected nothing written, got %s", sb.String())
	}
}
