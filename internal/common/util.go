package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes from crypto/rand. It panics if the
// system random source fails, which the runtime treats as unrecoverable anyway.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes buf in place. Used for passwords read from the terminal.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
