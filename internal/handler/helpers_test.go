package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/msomdec/inventory/internal/handler"
	"github.com/msomdec/inventory/internal/repository/sqlite/sqlitetest"
	"github.com/msomdec/inventory/internal/service"
)

const (
	testPassword  = "correct-horse-battery"
	testJWTSecret = "test-secret-key-at-least-32-bytes-long"
)

// newTestAuthService returns an AuthService with auth enabled.
func newTestAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	hash, err := service.HashPassword(testPassword, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return service.NewAuthService(hash, testJWTSecret, time.Hour)
}

// newTestServer serves every route over an in-memory store. A nil auth
// disables authentication.
func newTestServer(t *testing.T, auth *service.AuthService) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, service.NewInventoryService(sqlitetest.New(t).Items()), auth)
}

func newTestServerWith(t *testing.T, inventory *service.InventoryService, auth *service.AuthService) *httptest.Server {
	t.Helper()
	if auth == nil {
		auth = service.NewAuthService("", "", 0)
	}
	limiter := service.NewTokenBucket(1, 3)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, inventory, auth, limiter)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends body as JSON and decodes a JSON response into out when out
// is non-nil.
func doJSON(t *testing.T, method, url, token string, body, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}
