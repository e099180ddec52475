package security

import (
	"crypto/rand"
	"fmt"
	"io"
)

// RandomBytes returns size cryptographically secure random bytes.
func RandomBytes(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size: %d", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		return nil, fmt.Errorf("secure random generation failed: %w", err)
	}
	return data, nil
}

// RandomSecret returns a random secret of at least 16 bytes, suitable for
// use as a server secret or key material.
func RandomSecret(size int) ([]byte, error) {
	if size < 16 {
		return nil, fmt.Errorf("insecure secret size: %d bytes (minimum 16 bytes)", size)
	}
	return RandomBytes(size)
}
