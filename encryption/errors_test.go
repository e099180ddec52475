package encryption

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrorsSurviveWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"encryption failed", ErrEncryptionFailed},
		{"decryption failed", ErrDecryptionFailed},
		{"salt not found", ErrSaltNotFound},
		{"malformed salt", ErrMalformedSalt},
		{"invalid configuration", ErrInvalidConfiguration},
		{"secret unavailable", ErrSecretUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.err))
		})
	}
}

func TestNewSaltNotFoundError(t *testing.T) {
	err := NewSaltNotFoundError("user-123")
	require.Error(t, err)
	assert.True(t, IsSaltNotFound(err))
	assert.Contains(t, err.Error(), "user-123")
}

func TestNewFieldDecryptionError(t *testing.T) {
	cause := fmt.Errorf("%w: authentication failed", ErrDecryptionFailed)
	err := NewFieldDecryptionError("notes_encrypted", cause)
	require.Error(t, err)
	assert.True(t, IsDecryptionError(err))
	assert.Contains(t, err.Error(), "notes_encrypted")
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		isDecryption bool
		isSalt       bool
		isConfig     bool
	}{
		{
			name:         "decryption failure",
			err:          fmt.Errorf("test: %w", ErrDecryptionFailed),
			isDecryption: true,
		},
		{
			name:   "missing salt",
			err:    NewSaltNotFoundError("user-1"),
			isSalt: true,
		},
		{
			name:     "bad configuration",
			err:      fmt.Errorf("test: %w", ErrInvalidConfiguration),
			isConfig: true,
		},
		{
			name:     "secret resolution failure",
			err:      fmt.Errorf("test: %w", ErrSecretUnavailable),
			isConfig: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("disk full"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isDecryption, IsDecryptionError(tt.err))
			assert.Equal(t, tt.isSalt, IsSaltNotFound(tt.err))
			assert.Equal(t, tt.isConfig, IsConfigurationError(tt.err))
		})
	}
}
