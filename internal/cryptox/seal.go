package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/authkeeper/authkeeper/internal/common"
)

// ErrCiphertextTooShort is returned by Open when the input cannot even hold
// a nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under key (16, 24 or 32 bytes). The
// random nonce is prepended to the returned ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(key, sealed []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns {
		return nil, ErrCiphertextTooShort
	}
	return aesgcm.Open(nil, sealed[:ns], sealed[ns:], nil)
}
