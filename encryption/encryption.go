package encryption

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the size of the symmetric encryption key (32 bytes for NaCl secretbox).
	KeySize = 32
	// NonceSize is the size of the per-blob nonce (24 bytes for NaCl secretbox).
	NonceSize = 24
)

// Key is opaque 32-byte symmetric key material. Keys exist only for the
// lifetime of a single operation: derive, use, discard. Never log or
// persist a Key.
type Key [KeySize]byte

// Zero overwrites the key material. Callers that hold a key beyond the
// immediate encrypt/decrypt call should defer this.
func (k *Key) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// Encrypt encrypts a single string value and returns a self-contained blob:
// base64(nonce || secretbox(plaintext)). Each call draws a fresh random
// nonce; two encryptions of the same plaintext never produce the same blob.
//
// An empty plaintext returns an empty blob without invoking the cipher.
// The empty string is the sentinel for "field absent", not an encrypted
// empty value.
func Encrypt(plaintext string, key Key) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("%w: nonce generation: %v", ErrEncryptionFailed, err)
	}

	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, (*[KeySize]byte)(&key))
	return base64.StdEncoding.EncodeToString(box), nil
}

// Decrypt reverses Encrypt. The blob is self-describing: the first
// NonceSize bytes of the decoded data are the nonce, the remainder is the
// authenticated ciphertext. Decryption either succeeds and yields the exact
// original plaintext or fails as a unit with an error matching
// ErrDecryptionFailed (wrong key, corrupted data, tampering, or a blob that
// is not valid base64).
//
// An empty blob returns an empty string, mirroring Encrypt's sentinel.
func Decrypt(blob string, key Key) (string, error) {
	if blob == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: invalid blob encoding: %v", ErrDecryptionFailed, err)
	}
	if len(raw) < NonceSize+secretbox.Overhead {
		return "", fmt.Errorf("%w: blob too short (%d bytes)", ErrDecryptionFailed, len(raw))
	}

	var nonce [NonceSize]byte
	copy(nonce[:], raw[:NonceSize])

	plaintext, ok := secretbox.Open(nil, raw[NonceSize:], &nonce, (*[KeySize]byte)(&key))
	if !ok {
		return "", fmt.Errorf("%w: authentication failed", ErrDecryptionFailed)
	}
	return string(plaintext), nil
}
