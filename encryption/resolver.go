package encryption

import (
	"context"
	"fmt"
)

// KeyResolver produces the server-side derived key for a user. It is the
// single mandatory step before any record-level encrypt or decrypt: every
// data-access read or write resolves the key exactly once per operation.
//
// Derivation is a pure function of (user id, salt, server secret), so the
// resolver holds no mutable state and is safe for concurrent use without
// coordination. Concurrent requests for the same user derive the same key
// independently. Resolved keys must not be cached beyond the operation that
// requested them.
type KeyResolver struct {
	salts      SaltStore
	secret     string
	iterations int
}

// NewKeyResolver validates the configuration and binds the resolver to the
// salt store collaborator.
func NewKeyResolver(salts SaltStore, cfg Config) (*KeyResolver, error) {
	if salts == nil {
		return nil, fmt.Errorf("%w: salt store is required", ErrInvalidConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &KeyResolver{
		salts:      salts,
		secret:     cfg.ServerSecret,
		iterations: cfg.Iterations,
	}, nil
}

// ResolveUserKey looks up the user's persisted salt and derives the 32-byte
// key. A missing salt is fatal to the calling operation: the error matches
// ErrSaltNotFound and the caller must reject the request rather than
// proceed with a dummy key.
func (r *KeyResolver) ResolveUserKey(ctx context.Context, userID string) (Key, error) {
	salt, err := r.salts.GetSalt(ctx, userID)
	if err != nil {
		return Key{}, fmt.Errorf("resolving key for user %q: %w", userID, err)
	}
	return deriveServerKey(userID, salt, r.secret, r.iterations), nil
}
