package encryption

import (
	"errors"
	"fmt"
)

var (
	// Crypto errors
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")

	// Key resolution errors
	ErrSaltNotFound  = errors.New("encryption salt not found")
	ErrMalformedSalt = errors.New("malformed salt")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrSecretUnavailable    = errors.New("secret source unavailable")
)

// NewSaltNotFoundError reports a missing salt for a provisioned user.
// A user row without a salt is a data-integrity problem upstream; callers
// must fail the operation rather than derive a key from a dummy value.
func NewSaltNotFoundError(userID string) error {
	return fmt.Errorf("%w: no salt on record for user %q", ErrSaltNotFound, userID)
}

// NewFieldDecryptionError wraps a per-field decryption failure with the
// logical field name, preserving ErrDecryptionFailed for errors.Is checks.
func NewFieldDecryptionError(field string, cause error) error {
	return fmt.Errorf("field %q: %w", field, cause)
}

// IsDecryptionError returns true if the error represents a failed
// authentication tag, a malformed blob, or a decode failure.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptionFailed)
}

// IsSaltNotFound returns true if the error represents a missing per-user salt.
func IsSaltNotFound(err error) bool {
	return errors.Is(err, ErrSaltNotFound)
}

// IsConfigurationError returns true if the error represents a configuration
// or secret-resolution problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrSecretUnavailable)
}
