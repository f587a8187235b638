package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/msomdec/inventory/internal/domain"
	"github.com/msomdec/inventory/internal/service"
)

// TokenHandler issues bearer tokens.
type TokenHandler struct {
	auth    *service.AuthService
	limiter *service.TokenBucket
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(auth *service.AuthService, limiter *service.TokenBucket) *TokenHandler {
	return &TokenHandler{auth: auth, limiter: limiter}
}

// HandleIssue exchanges the operator password for a token. Attempts are
// rate-limited per client address.
func (h *TokenHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	if !h.auth.Enabled() {
		writeError(w, http.StatusNotFound, "authentication is not enabled")
		return
	}
	if !h.limiter.Allow(clientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	var req TokenRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := h.auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			slog.Warn("token request rejected", "remote", clientIP(r))
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeServiceError(w, "issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
