// Package services contains the application services behind the authkeeper
// CLI. AuthService drives sign-in, registration and sign-out against a
// client.Client and keeps the local session in step with the outcome.
package services

import (
	"context"
	"strings"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/client/client"
	"github.com/authkeeper/authkeeper/internal/client/session"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/validation"
)

const (
	msgLoginFailed    = "Invalid credentials."
	msgRegisterFailed = "Registration failed."
	msgTokenMissing   = "Authentication token was not issued."
	msgTokenExpired   = "Authentication token expired. Please log in again."
	msgTokenUnusable  = "Authentication token could not be read."
	msgNotSignedIn    = "You are not signed in."
)

// Session is the part of session.Machine the service drives.
type Session interface {
	State() session.State
	MarkAuthenticated(ctx context.Context, tok string) session.State
	MarkLoggedOut(ctx context.Context)
}

type AuthService struct {
	client    client.Client
	validator *validation.Validator
	tokens    session.TokenStore
	session   Session
	logger    logging.Logger
}

func NewAuthService(c client.Client, v *validation.Validator, tokens session.TokenStore, s Session, l logging.Logger) *AuthService {
	return &AuthService{
		client:    c,
		validator: v,
		tokens:    tokens,
		session:   s,
		logger:    l.With("module", "auth-service"),
	}
}

// Login signs in and, on success, adopts the issued token as the session.
func (a *AuthService) Login(ctx context.Context, username, password string) envelope.Result[api.UserDetail] {
	username = strings.TrimSpace(username)
	if errs := a.validator.Validate(username, password, true); len(errs) > 0 {
		return envelope.Invalid[api.UserDetail](errs)
	}

	r := ensureSuccess(a.client.Login(ctx, username, password), envelope.LoginFailed, msgLoginFailed)
	if !r.Success {
		a.logger.Warn(ctx, "login failed", "username", username, "code", r.Code.String())
		return envelope.Recast[api.UserDetail](r)
	}

	return a.adopt(ctx, r.Data)
}

// Register creates the account and signs straight in with the returned
// token.
func (a *AuthService) Register(ctx context.Context, username, password string) envelope.Result[api.UserDetail] {
	username = strings.TrimSpace(username)
	if errs := a.validator.Validate(username, password, false); len(errs) > 0 {
		return envelope.Invalid[api.UserDetail](errs)
	}

	r := ensureSuccess(a.client.Register(ctx, username, password), envelope.ServerError, msgRegisterFailed)
	if !r.Success {
		a.logger.Warn(ctx, "registration failed", "username", username, "code", r.Code.String())
		return envelope.Recast[api.UserDetail](r)
	}

	return a.adopt(ctx, r.Data)
}

func (a *AuthService) adopt(ctx context.Context, resp api.AuthResponse) envelope.Result[api.UserDetail] {
	if strings.TrimSpace(resp.Token) == "" || resp.User == nil {
		return envelope.Fail[api.UserDetail](envelope.TokenMissing, msgTokenMissing)
	}

	a.tokens.SetToken(resp.Token)
	if a.tokens.IsExpired() {
		a.tokens.Clear()
		return envelope.Fail[api.UserDetail](envelope.TokenExpired, msgTokenExpired)
	}

	if st := a.session.MarkAuthenticated(ctx, resp.Token); !st.Authenticated {
		a.session.MarkLoggedOut(ctx)
		return envelope.Fail[api.UserDetail](envelope.LogicFailed, msgTokenUnusable)
	}

	a.logger.Info(ctx, "signed in", "username", resp.User.Username, "user_id", resp.User.ID)
	return envelope.OK(*resp.User)
}

func (a *AuthService) Logout(ctx context.Context) {
	a.session.MarkLoggedOut(ctx)
	a.logger.Info(ctx, "signed out")
}

// Whoami asks the server who the current token belongs to. A token the
// server no longer accepts ends the local session.
func (a *AuthService) Whoami(ctx context.Context) envelope.Result[api.UserDetail] {
	if !a.session.State().Authenticated {
		return envelope.Fail[api.UserDetail](envelope.TokenMissing, msgNotSignedIn)
	}

	r := a.client.Me(ctx)
	if !r.Success {
		switch r.Code {
		case envelope.Unauthorized, envelope.TokenExpired, envelope.TokenMissing:
			a.session.MarkLoggedOut(ctx)
		}
	}
	return r
}

// State reports the local session without a round trip.
func (a *AuthService) State() session.State {
	return a.session.State()
}

func (a *AuthService) Close() error {
	return a.client.Close()
}

// ensureSuccess fills in a default code and message on failures that came
// back without them.
func ensureSuccess[T any](r envelope.Result[T], code envelope.Code, msg string) envelope.Result[T] {
	if r.Success {
		return r
	}
	if r.Code == envelope.None {
		r.Code = code
	}
	if strings.TrimSpace(r.Message) == "" {
		r.Message = msg
	}
	return r
}
