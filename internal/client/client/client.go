package client

import (
	"context"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/envelope"
)

// Client is the transport-agnostic contract the CLI talks to.
type Client interface {
	Register(ctx context.Context, username, password string) envelope.Result[api.AuthResponse]
	Login(ctx context.Context, username, password string) envelope.Result[api.AuthResponse]
	Me(ctx context.Context) envelope.Result[api.UserDetail]
	Close() error
}

// TokenSource returns the access token to attach to protected calls. An
// empty string means no token is held.
type TokenSource func() string

func noToken() string { return "" }
