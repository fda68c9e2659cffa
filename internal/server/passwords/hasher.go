// Package passwords hashes and verifies user passwords.
package passwords

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/authkeeper/authkeeper/internal/common"
	"github.com/authkeeper/authkeeper/internal/cryptox"
)

// Hasher is a one-way, identity-bound password hash.
type Hasher interface {
	Hash(identity, plaintext string) (string, error)
	Verify(identity, encoded, plaintext string) bool
}

const saltLen = 16

var ErrMalformedHash = errors.New("malformed password hash")

// Argon2Hasher produces PHC-formatted argon2id hashes. The identity is mixed
// into the KDF salt, so the same password hashes differently per user and a
// hash only verifies for the identity it was created with.
type Argon2Hasher struct {
	params cryptox.KDFParams
}

func NewArgon2Hasher(p cryptox.KDFParams) *Argon2Hasher {
	return &Argon2Hasher{params: p}
}

func boundSalt(salt []byte, identity string) []byte {
	b := make([]byte, 0, len(salt)+1+len(identity))
	b = append(b, salt...)
	b = append(b, 0)
	return append(b, identity...)
}

func (h *Argon2Hasher) Hash(identity, plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("empty password")
	}
	salt := common.GenerateRandByteArray(saltLen)
	key := cryptox.DeriveKey([]byte(plaintext), boundSalt(salt, identity), h.params)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(identity, encoded, plaintext string) bool {
	p, salt, want, err := decode(encoded)
	if err != nil {
		return false
	}
	got := cryptox.DeriveKey([]byte(plaintext), boundSalt(salt, identity), p)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func decode(encoded string) (cryptox.KDFParams, []byte, []byte, error) {
	var p cryptox.KDFParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	p.KeyLen = uint32(len(key))

	return p, salt, key, nil
}
