package store

import (
	"context"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
)

// NewUser is the insert payload.
type NewUser struct {
	Username     string
	PasswordHash string
	Role         string
}

// AuthStore translates provider triples into envelope results.
type AuthStore struct {
	provider Provider
	logger   logging.Logger
}

func NewAuthStore(p Provider, l logging.Logger) *AuthStore {
	return &AuthStore{provider: p, logger: l.With("module", "auth_store")}
}

func (s *AuthStore) failure(ctx context.Context, op string, status int, msg string) (envelope.Code, string) {
	s.logger.Error(ctx, "store operation failed", "op", op, "status", status, "error", msg)
	return envelope.DatabaseError, msg
}

// FindByUsername fails with UserNotFound when there is no such user.
func (s *AuthStore) FindByUsername(ctx context.Context, username string) envelope.Result[api.UserDetail] {
	row, status, msg := s.provider.FindUserByUsername(ctx, username)
	if status != StatusOK {
		return envelope.Fail[api.UserDetail](s.failure(ctx, "find_user", status, msg))
	}
	if row == nil {
		return envelope.Fail[api.UserDetail](envelope.UserNotFound, "Username does not exist")
	}
	return envelope.OK(api.UserDetail{ID: row.ID, Username: row.UserName, Role: row.Role})
}

// GetPasswordHash returns the stored hash. Callers must not let it escape.
func (s *AuthStore) GetPasswordHash(ctx context.Context, username string) envelope.Result[string] {
	hash, status, msg := s.provider.GetPasswordHash(ctx, username)
	if status != StatusOK {
		return envelope.Fail[string](s.failure(ctx, "get_password_hash", status, msg))
	}
	if hash == nil || *hash == "" {
		return envelope.Fail[string](envelope.NotFound, "Password hash not found")
	}
	return envelope.OK(*hash)
}

// Insert creates the user. A duplicate username yields UserAlreadyExists.
func (s *AuthStore) Insert(ctx context.Context, u NewUser) envelope.Result[api.UserDetail] {
	row, status, msg := s.provider.InsertUser(ctx, u.Username, u.PasswordHash, u.Role)
	switch {
	case status == StatusDuplicate:
		return envelope.Fail[api.UserDetail](envelope.UserAlreadyExists, "User already exists")
	case status != StatusOK:
		return envelope.Fail[api.UserDetail](s.failure(ctx, "insert_user", status, msg))
	case row == nil:
		return envelope.Fail[api.UserDetail](envelope.ServerError, "Insert returned no user")
	}
	return envelope.OK(api.UserDetail{ID: row.ID, Username: row.UserName, Role: row.Role})
}
