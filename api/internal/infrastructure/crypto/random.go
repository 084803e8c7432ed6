package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Random is the engine's entropy source. Implementations must be safe for
// concurrent use; crypto/rand.Reader is.
type Random interface {
	io.Reader
}

// SystemRandom returns the operating system CSPRNG.
func SystemRandom() Random {
	return rand.Reader
}

// randomBytes fills a fresh n-byte buffer. A short read is an error, never
// a partially random or zeroed value.
func randomBytes(r Random, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("crypto: entropy read failure: %w", err)
	}
	return b, nil
}
