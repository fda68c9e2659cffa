// Package persistence keeps the access token across CLI runs.
//
// None of the operations report errors: storage problems are logged and the
// session simply behaves as if nothing was persisted.
package persistence

import (
	"context"

	"github.com/authkeeper/authkeeper/internal/client/repositories/metadata"
	"github.com/authkeeper/authkeeper/internal/common"
	"github.com/authkeeper/authkeeper/internal/cryptox"
	"github.com/authkeeper/authkeeper/internal/logging"
)

type TokenPersistence interface {
	Save(ctx context.Context, token string)
	Load(ctx context.Context) (string, bool)
	Clear(ctx context.Context)
}

const (
	tokenKey      = "access_token"
	deviceKeyName = "session_key"
	deviceKeyLen  = 32
)

// MetadataPersistence seals the token with a per-device AES-256 key kept
// next to it in the metadata store.
type MetadataPersistence struct {
	repo   metadata.Repository
	logger logging.Logger
}

func NewMetadataPersistence(repo metadata.Repository, l logging.Logger) *MetadataPersistence {
	return &MetadataPersistence{repo: repo, logger: l.With("module", "token_persistence")}
}

// deviceKey returns the stored key, creating it on first use when create
// is set.
func (p *MetadataPersistence) deviceKey(ctx context.Context, create bool) ([]byte, error) {
	key, err := p.repo.Get(ctx, deviceKeyName)
	if err != nil {
		return nil, err
	}
	if len(key) == deviceKeyLen || !create {
		return key, nil
	}

	key = common.GenerateRandByteArray(deviceKeyLen)
	if err := p.repo.Set(ctx, deviceKeyName, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (p *MetadataPersistence) Save(ctx context.Context, token string) {
	key, err := p.deviceKey(ctx, true)
	if err != nil {
		p.logger.Warn(ctx, "load device key", "error", err)
		return
	}

	sealed, err := cryptox.Seal(key, []byte(token))
	if err != nil {
		p.logger.Warn(ctx, "seal token", "error", err)
		return
	}

	if err := p.repo.Set(ctx, tokenKey, sealed); err != nil {
		p.logger.Warn(ctx, "save token", "error", err)
	}
}

// Load returns the persisted token. A missing key, a corrupt value or a
// failed open all read as absent.
func (p *MetadataPersistence) Load(ctx context.Context) (string, bool) {
	sealed, err := p.repo.Get(ctx, tokenKey)
	if err != nil {
		p.logger.Warn(ctx, "load token", "error", err)
		return "", false
	}
	if len(sealed) == 0 {
		return "", false
	}

	key, err := p.deviceKey(ctx, false)
	if err != nil {
		p.logger.Warn(ctx, "load device key", "error", err)
		return "", false
	}
	if len(key) != deviceKeyLen {
		p.logger.Warn(ctx, "device key missing or corrupt")
		return "", false
	}

	plain, err := cryptox.Open(key, sealed)
	if err != nil {
		p.logger.Warn(ctx, "open sealed token", "error", err)
		return "", false
	}
	if len(plain) == 0 {
		return "", false
	}
	return string(plain), true
}

// Clear removes the token. The device key stays for the next login.
func (p *MetadataPersistence) Clear(ctx context.Context) {
	if err := p.repo.Delete(ctx, tokenKey); err != nil {
		p.logger.Warn(ctx, "clear token", "error", err)
	}
}
