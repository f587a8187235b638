package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/inventory/internal/domain"
	"github.com/msomdec/inventory/internal/service"
)

// ItemHandler serves JSON item endpoints.
type ItemHandler struct {
	inventory *service.InventoryService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(inventory *service.InventoryService) *ItemHandler {
	return &ItemHandler{inventory: inventory}
}

// HandleList returns every item ordered by name.
func (h *ItemHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// HandleSummary returns inventory totals.
func (h *ItemHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.inventory.Summary(r.Context())
	if err != nil {
		writeServiceError(w, "summarize items", err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryDTO{Items: s.Items, Units: s.Units, TotalValue: s.TotalValue})
}

// HandleGet returns one item.
func (h *ItemHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.inventory.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(*item))
}

// HandleCreate adds an item.
func (h *ItemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := h.inventory.AddItem(r.Context(), req.Name, req.Price, req.Quantity)
	if err != nil {
		writeServiceError(w, "create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(*item))
}

// HandleUpdate replaces an item.
func (h *ItemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ItemRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := h.inventory.UpdateItem(r.Context(), id, req.Name, req.Price, req.Quantity)
	if err != nil {
		writeServiceError(w, "update item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(*item))
}

// HandleDelete removes an item.
func (h *ItemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.inventory.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSell takes one unit out of stock.
func (h *ItemHandler) HandleSell(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.inventory.Sell(r.Context(), id)
	if err != nil {
		writeServiceError(w, "sell item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(*item))
}

// HandleRestock adds units to stock.
func (h *ItemHandler) HandleRestock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RestockRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := h.inventory.Restock(r.Context(), id, req.Count)
	if err != nil {
		writeServiceError(w, "restock item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(*item))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "item already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrClosed):
		slog.Error(op, "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
