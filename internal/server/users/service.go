// Package users orchestrates registration, login and user lookup on top of
// the validator, the password hasher and the auth store.
package users

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/common"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/server/events"
	"github.com/authkeeper/authkeeper/internal/server/metrics"
	"github.com/authkeeper/authkeeper/internal/server/passwords"
	"github.com/authkeeper/authkeeper/internal/server/store"
	"github.com/authkeeper/authkeeper/internal/validation"
)

const (
	opLogin    = "login"
	opRegister = "register"

	DefaultLookupTTL = 30 * time.Second
)

// Store is the slice of store.AuthStore the service depends on.
type Store interface {
	FindByUsername(ctx context.Context, username string) envelope.Result[api.UserDetail]
	GetPasswordHash(ctx context.Context, username string) envelope.Result[string]
	Insert(ctx context.Context, u store.NewUser) envelope.Result[api.UserDetail]
}

type Service struct {
	store     Store
	hasher    passwords.Hasher
	validator *validation.Validator
	sink      events.ActivitySink
	metrics   *metrics.Metrics
	lookups   *cache.Cache
	logger    logging.Logger
}

type Option func(*Service)

func WithActivitySink(s events.ActivitySink) Option {
	return func(svc *Service) { svc.sink = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

// WithLookupTTL sets how long positive Lookup results are kept.
func WithLookupTTL(ttl time.Duration) Option {
	return func(svc *Service) { svc.lookups = cache.New(ttl, 2*ttl) }
}

func NewService(st Store, h passwords.Hasher, v *validation.Validator, l logging.Logger, opts ...Option) *Service {
	s := &Service{
		store:     st,
		hasher:    h,
		validator: v,
		sink:      events.NopSink{},
		lookups:   cache.New(DefaultLookupTTL, 2*DefaultLookupTTL),
		logger:    l.With("module", "users"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Login checks the credentials. An unknown username is reported as
// UserNotFound before the password is looked at; a wrong password is
// PasswordInvalid. The username is trimmed the same way Register trims it.
func (s *Service) Login(ctx context.Context, username, password string) envelope.Result[api.UserDetail] {
	username = strings.TrimSpace(username)
	r := s.login(ctx, username, password)
	s.record(ctx, opLogin, username, r)
	return r
}

func (s *Service) login(ctx context.Context, username, password string) envelope.Result[api.UserDetail] {
	if fields := s.validator.Validate(username, password, true); len(fields) > 0 {
		return envelope.Invalid[api.UserDetail](fields)
	}

	user := s.store.FindByUsername(ctx, username)
	if !user.Success {
		return user
	}

	hash := s.store.GetPasswordHash(ctx, username)
	if !hash.Success {
		s.logger.Warn(ctx, "password hash unavailable", "username", username, "code", hash.Code)
		return envelope.Fail[api.UserDetail](envelope.Unauthorized, "Invalid credentials")
	}

	if !s.hasher.Verify(username, hash.Data, password) {
		return envelope.Fail[api.UserDetail](envelope.PasswordInvalid, "Invalid password")
	}

	return user
}

// Register creates a user with the default role. The username is trimmed
// first; the password and its hash never leave this method.
func (s *Service) Register(ctx context.Context, username, password string) envelope.Result[api.UserDetail] {
	username = strings.TrimSpace(username)
	r := s.register(ctx, username, password)
	s.record(ctx, opRegister, username, r)
	return r
}

func (s *Service) register(ctx context.Context, username, password string) envelope.Result[api.UserDetail] {
	if fields := s.validator.Validate(username, password, false); len(fields) > 0 {
		return envelope.Invalid[api.UserDetail](fields)
	}

	existing := s.store.FindByUsername(ctx, username)
	switch {
	case existing.Success:
		return envelope.Fail[api.UserDetail](envelope.UserAlreadyExists, "User already exists")
	case existing.Code != envelope.UserNotFound:
		return existing
	}

	hash, err := s.hasher.Hash(username, password)
	if err != nil {
		s.logger.Error(ctx, "hash password", "error", err)
		return envelope.Fail[api.UserDetail](envelope.ServerError, "Failed to process password")
	}

	return s.store.Insert(ctx, store.NewUser{Username: username, PasswordHash: hash, Role: common.DefaultRole})
}

// Lookup returns the user by name. Found users are cached briefly.
func (s *Service) Lookup(ctx context.Context, username string) envelope.Result[api.UserDetail] {
	if v, ok := s.lookups.Get(username); ok {
		return envelope.OK(v.(api.UserDetail))
	}

	r := s.store.FindByUsername(ctx, username)
	if r.Success {
		s.lookups.SetDefault(username, r.Data)
	}
	return r
}

func (s *Service) record(ctx context.Context, op, username string, r envelope.Result[api.UserDetail]) {
	s.metrics.AuthAttempt(op, r.Code)

	if r.Success {
		s.logger.Info(ctx, op+" succeeded", "username", username, "user_id", r.Data.ID)
	} else {
		s.logger.Info(ctx, op+" failed", "username", username, "code", r.Code)
	}

	kind := events.KindLogin
	if op == opRegister {
		kind = events.KindRegister
	}
	if err := s.sink.Publish(ctx, events.NewEvent(kind, username, r.Data.ID, r.Code)); err != nil {
		s.logger.Warn(ctx, "publish auth event", "op", op, "error", err)
	}
}
