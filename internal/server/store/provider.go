// Package store is the server's user persistence. A Provider speaks to the
// database and reports outcomes as (row, status, message) triples; AuthStore
// is the only consumer of that shape and translates it into envelope results.
package store

import (
	"context"

	"github.com/authkeeper/authkeeper/internal/server/models"
)

// Provider status codes. Anything but StatusOK is a failure.
const (
	StatusOK        = 0
	StatusFailed    = 1
	StatusDuplicate = 2
)

// Provider is the narrow query/command surface over the users table.
// A nil row with StatusOK means "no such row".
type Provider interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, int, string)
	GetPasswordHash(ctx context.Context, username string) (*string, int, string)
	InsertUser(ctx context.Context, username, passwordHash, role string) (*models.User, int, string)
}
