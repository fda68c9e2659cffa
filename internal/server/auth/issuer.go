// Package auth issues and verifies the HS256 access tokens handed out by
// the server after a successful register or login.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/common"
)

// MinKeyLength is the shortest accepted HMAC key, in bytes.
const MinKeyLength = 32

var (
	ErrMissingKey      = errors.New("jwt signing key is not configured")
	ErrKeyTooShort     = fmt.Errorf("jwt signing key must be at least %d bytes", MinKeyLength)
	ErrInvalidLifetime = errors.New("token lifetime must be a positive number of minutes")
)

type Config struct {
	Key             string
	Issuer          string
	Audience        string
	LifetimeMinutes int
}

// Validate reports the first problem that would make token issuance unsafe.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Key) == "":
		return ErrMissingKey
	case len(c.Key) < MinKeyLength:
		return ErrKeyTooShort
	case c.LifetimeMinutes <= 0:
		return ErrInvalidLifetime
	}
	return nil
}

// Issued is a freshly signed token with the user it was issued for.
type Issued struct {
	Token     string
	ExpiresAt time.Time
	User      api.UserDetail
}

type Issuer struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Issuer{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: time.Duration(cfg.LifetimeMinutes) * time.Minute,
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) Lifetime() time.Duration { return i.lifetime }

// Issue signs a token for u. A blank role is replaced by the default role in
// both the token and the returned user.
func (i *Issuer) Issue(u api.UserDetail) (Issued, error) {
	if strings.TrimSpace(u.Role) == "" {
		u.Role = common.DefaultRole
	}

	now := i.now()
	exp := now.Add(i.lifetime)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
		},
		Name: u.Username,
		Role: u.Role,
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return Issued{}, fmt.Errorf("sign token: %w", err)
	}

	return Issued{Token: tok, ExpiresAt: exp.Truncate(time.Second), User: u}, nil
}

// Parse verifies signature, issuer, audience and expiry. Expired tokens
// yield common.ErrTokenExpired, every other failure common.ErrInvalidToken.
func (i *Issuer) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !t.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
