package users

import (
	"context"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/server/auth"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(u api.UserDetail) (auth.Issued, error)
}

// Authenticator is what transports call: the orchestrator's outcome plus a
// signed token on success.
type Authenticator struct {
	svc    *Service
	issuer TokenIssuer
	logger logging.Logger
}

func NewAuthenticator(svc *Service, issuer TokenIssuer, l logging.Logger) *Authenticator {
	return &Authenticator{svc: svc, issuer: issuer, logger: l.With("module", "authenticator")}
}

func (a *Authenticator) Login(ctx context.Context, req api.LoginRequest) envelope.Result[api.AuthResponse] {
	return a.withToken(ctx, a.svc.Login(ctx, req.Username, req.Password))
}

// Register ignores req.Role; new users always get the default role.
func (a *Authenticator) Register(ctx context.Context, req api.RegisterRequest) envelope.Result[api.AuthResponse] {
	return a.withToken(ctx, a.svc.Register(ctx, req.Username, req.Password))
}

func (a *Authenticator) Lookup(ctx context.Context, username string) envelope.Result[api.UserDetail] {
	return a.svc.Lookup(ctx, username)
}

func (a *Authenticator) withToken(ctx context.Context, r envelope.Result[api.UserDetail]) envelope.Result[api.AuthResponse] {
	if !r.Success {
		return envelope.Recast[api.AuthResponse](r)
	}

	issued, err := a.issuer.Issue(r.Data)
	if err != nil {
		a.logger.Error(ctx, "issue token", "user_id", r.Data.ID, "error", err)
		return envelope.Fail[api.AuthResponse](envelope.ServerError, "Failed to issue token")
	}

	u := issued.User
	return envelope.OK(api.AuthResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt, User: &u})
}
