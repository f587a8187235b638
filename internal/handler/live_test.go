package handler_test

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/inventory/internal/repository/sqlite/sqlitetest"
	"github.com/msomdec/inventory/internal/service"
)

// readUntil scans the SSE stream until a line contains want.
func readUntil(t *testing.T, sc *bufio.Scanner, want string) {
	t.Helper()
	for sc.Scan() {
		if strings.Contains(sc.Text(), want) {
			return
		}
	}
	t.Fatalf("stream ended before %q: %v", want, sc.Err())
}

func openStream(t *testing.T, url string) *bufio.Scanner {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected event stream, got %q", ct)
	}
	return bufio.NewScanner(resp.Body)
}

func TestLive_Items(t *testing.T) {
	inventory := service.NewInventoryService(sqlitetest.New(t).Items())
	srv := newTestServerWith(t, inventory, nil)

	sc := openStream(t, srv.URL+"/api/items/live")
	readUntil(t, sc, "No items in inventory")
	readUntil(t, sc, `"itemCount":0`)

	if _, err := inventory.AddItem(context.Background(), "Apples", 10, 20); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	readUntil(t, sc, "Apples")
	readUntil(t, sc, `"itemCount":1`)
}

func TestLive_Item(t *testing.T) {
	inventory := service.NewInventoryService(sqlitetest.New(t).Items())
	srv := newTestServerWith(t, inventory, nil)
	ctx := context.Background()

	item, err := inventory.AddItem(ctx, "Apples", 10, 20)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	sc := openStream(t, srv.URL+"/api/items/1/live")
	readUntil(t, sc, "Apples")

	if _, err := inventory.UpdateItem(ctx, item.ID, "Bananas", 5, 50); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	readUntil(t, sc, "Bananas")

	if err := inventory.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	readUntil(t, sc, `"inStock":false`)
}

func TestLive_BadID(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/items/abc/live")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
