package encryption

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/security"
)

const (
	// DefaultIterations is the PBKDF2 iteration count used by both
	// derivation paths. Deliberately slow; lowering it weakens every key
	// derived by this package, so Config.Validate rejects smaller values.
	DefaultIterations = 100000

	// SaltLength is the size in bytes of a freshly generated per-user salt.
	SaltLength = 16

	// serverKeySeparator joins server secret, user id and salt before
	// derivation.
	serverKeySeparator = ":"
)

// GenerateSalt returns a new random per-user salt, hex-encoded. A salt is
// created exactly once when a user account is provisioned and is immutable
// afterwards: rotating it would orphan every blob encrypted under keys
// derived from it.
func GenerateSalt() (string, error) {
	salt, err := security.RandomBytes(SaltLength)
	if err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

// DerivePasswordKey derives a 32-byte key from a user password and a
// hex-encoded salt using PBKDF2-HMAC-SHA256 with DefaultIterations rounds.
// Used where the client holds the secret; the server-side path below uses
// the same KDF and iteration count so both carry the same security posture.
func DerivePasswordKey(password, salt string) (Key, error) {
	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return Key{}, fmt.Errorf("%w: salt is not valid hex: %v", ErrMalformedSalt, err)
	}
	return deriveKey([]byte(password), saltBytes, DefaultIterations), nil
}

// DeriveServerKey deterministically derives the per-user key from the
// process server secret, the user id and the user's persisted salt. The
// same inputs always yield the same key; repeatable decryption across
// requests and process restarts depends on it.
//
// This path intentionally does not involve the user's password: the server
// can encrypt and decrypt on any request once it knows the user id. That is
// an operational trade-off, not an accident; see the package documentation.
func DeriveServerKey(userID, salt, serverSecret string) Key {
	return deriveServerKey(userID, salt, serverSecret, DefaultIterations)
}

func deriveServerKey(userID, salt, serverSecret string, iterations int) Key {
	input := serverSecret + serverKeySeparator + userID + serverKeySeparator + salt
	return deriveKey([]byte(input), serverSaltBytes(salt), iterations)
}

// serverSaltBytes decodes the persisted salt for server-side derivation.
// A salt that hex-decodes to at least SaltLength bytes is used as-is.
// Anything else is a legacy or loosely encoded value: the raw salt string
// is zero-padded to 32 bytes instead. This leniency is a compatibility
// shim for existing rows, not a model for new salts, which GenerateSalt
// always produces as proper hex.
func serverSaltBytes(salt string) []byte {
	if raw, err := hex.DecodeString(salt); err == nil && len(raw) >= SaltLength {
		return raw
	}
	padded := make([]byte, 2*SaltLength)
	copy(padded, salt)
	return padded
}

func deriveKey(secret, salt []byte, iterations int) Key {
	var key Key
	copy(key[:], pbkdf2.Key(secret, salt, iterations, KeySize, sha256.New))
	return key
}
