package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/common"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/server/auth"
)

// Authenticator is the server-side auth flow the handlers call.
type Authenticator interface {
	Login(ctx context.Context, req api.LoginRequest) envelope.Result[api.AuthResponse]
	Register(ctx context.Context, req api.RegisterRequest) envelope.Result[api.AuthResponse]
	Lookup(ctx context.Context, username string) envelope.Result[api.UserDetail]
}

// TokenParser verifies access tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type handlers struct {
	auth   Authenticator
	tokens TokenParser
	logger logging.Logger
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, envelope.Validation, "Malformed request body", nil)
		return
	}
	writeResult(w, r, h.logger, h.auth.Register(r.Context(), req))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, envelope.Validation, "Malformed request body", nil)
		return
	}
	writeResult(w, r, h.logger, h.auth.Login(r.Context(), req))
}

// me resolves the bearer token to the current user.
func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, r, h.logger, envelope.TokenMissing, "Authentication token was not issued.", nil)
		return
	}

	claims, err := h.tokens.Parse(token)
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, r, h.logger, envelope.TokenExpired, "Authentication token expired. Please log in again.", nil)
		return
	case err != nil:
		writeError(w, r, h.logger, envelope.Unauthorized, "Invalid token", nil)
		return
	}

	res := h.auth.Lookup(r.Context(), claims.Name)
	if res.Success && res.Data.ID != claims.User().ID {
		writeError(w, r, h.logger, envelope.Unauthorized, "Invalid token", nil)
		return
	}
	writeResult(w, r, h.logger, res)
}

func bearerToken(r *http.Request) (string, bool) {
	v := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(v, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
