// Package cryptox wraps the primitives authkeeper relies on: argon2id key
// derivation for password hashing and AES-GCM sealing for data at rest on
// the client.
package cryptox

import "golang.org/x/crypto/argon2"

// KDFParams are argon2id cost parameters.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultKDFParams are the parameters used for new password hashes.
var DefaultKDFParams = KDFParams{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32}

// DeriveKey runs argon2id over password and salt.
func DeriveKey(password, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}
