package handler

import (
	"net/http"

	"github.com/msomdec/inventory/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Write routes
// require a bearer token when auth is enabled.
func RegisterRoutes(mux *http.ServeMux, inventory *service.InventoryService, auth *service.AuthService, limiter *service.TokenBucket) {
	health := NewHealthHandler(inventory)
	items := NewItemHandler(inventory)
	live := NewLiveHandler(inventory)
	tokens := NewTokenHandler(auth, limiter)
	protect := func(h http.HandlerFunc) http.Handler { return RequireToken(auth, h) }

	mux.HandleFunc("GET /healthz", health.HandleHealthz)
	mux.HandleFunc("POST /api/token", tokens.HandleIssue)

	mux.HandleFunc("GET /api/items", items.HandleList)
	mux.HandleFunc("GET /api/items/summary", items.HandleSummary)
	mux.HandleFunc("GET /api/items/live", live.HandleItems)
	mux.HandleFunc("GET /api/items/{id}", items.HandleGet)
	mux.HandleFunc("GET /api/items/{id}/live", live.HandleItem)

	mux.Handle("POST /api/items", protect(items.HandleCreate))
	mux.Handle("PUT /api/items/{id}", protect(items.HandleUpdate))
	mux.Handle("DELETE /api/items/{id}", protect(items.HandleDelete))
	mux.Handle("POST /api/items/{id}/sell", protect(items.HandleSell))
	mux.Handle("POST /api/items/{id}/restock", protect(items.HandleRestock))
}
