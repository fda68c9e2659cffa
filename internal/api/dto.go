// Package api holds the JSON payloads exchanged between the authkeeper
// server and its clients over HTTP and gRPC.
package api

import (
	"time"

	"github.com/authkeeper/authkeeper/internal/envelope"
)

// UserDetail is the public projection of a user.
type UserDetail struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest carries an optional role hint. The server ignores it and
// always assigns the default role.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse is returned by successful register and login calls.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *UserDetail `json:"user"`
}

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Error  string                `json:"error"`
	Code   envelope.Code         `json:"code"`
	Fields []envelope.FieldError `json:"fields,omitempty"`
}
