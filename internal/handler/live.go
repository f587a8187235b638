package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/inventory/internal/service"
	"github.com/msomdec/inventory/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// LiveHandler streams live item views over SSE. Each snapshot of the
// underlying live query becomes one element patch plus a signal patch.
type LiveHandler struct {
	inventory *service.InventoryService
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(inventory *service.InventoryService) *LiveHandler {
	return &LiveHandler{inventory: inventory}
}

type listSignals struct {
	ItemCount int `json:"itemCount"`
}

type itemSignals struct {
	InStock bool `json:"inStock"`
}

// HandleItems streams the item table until the client disconnects.
func (h *LiveHandler) HandleItems(w http.ResponseWriter, r *http.Request) {
	q := h.inventory.WatchAll(r.Context())
	defer q.Close()

	sse := datastar.NewSSE(w, r)
	for items := range q.C() {
		if err := sse.PatchElementTempl(
			view.ItemTable(items),
			datastar.WithSelectorID(view.ItemTableID),
		); err != nil {
			slog.Debug("live items client gone", "error", err)
			return
		}
		if err := sse.MarshalAndPatchSignals(listSignals{ItemCount: len(items)}); err != nil {
			slog.Debug("live items client gone", "error", err)
			return
		}
	}
	logStreamEnd("live items", q.Err())
}

// HandleItem streams one item until the client disconnects. A deleted
// item is shown as not found and the stream stays open.
func (h *LiveHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	q := h.inventory.Watch(r.Context(), id)
	defer q.Close()

	sse := datastar.NewSSE(w, r)
	for item := range q.C() {
		if err := sse.PatchElementTempl(
			view.ItemDetail(item),
			datastar.WithSelectorID(view.ItemDetailID),
		); err != nil {
			slog.Debug("live item client gone", "id", id, "error", err)
			return
		}
		inStock := item != nil && item.Quantity > 0
		if err := sse.MarshalAndPatchSignals(itemSignals{InStock: inStock}); err != nil {
			slog.Debug("live item client gone", "id", id, "error", err)
			return
		}
	}
	logStreamEnd("live item", q.Err())
}

func logStreamEnd(stream string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	slog.Error("live stream ended", "stream", stream, "error", err)
}
