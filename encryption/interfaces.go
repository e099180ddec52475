package encryption

import (
	"context"
	"fmt"
)

// SaltStore is the contract this package consumes from the user store.
//
// GetSalt returns the hex-encoded salt persisted for a user at account
// creation. The salt is read-only from this subsystem's perspective: it is
// written exactly once by user provisioning and never mutated here.
//
// Implementations must return an error matching ErrSaltNotFound when no
// salt is on record (use NewSaltNotFoundError). Lookups typically hit a
// database, so the context governs cancellation.
//
// Implementations:
//   - SQLite user store: internal/store.Store
type SaltStore interface {
	GetSalt(ctx context.Context, userID string) (string, error)
}

// SecretSource is the contract for resolving the process server secret.
//
// This interface is implemented by secret backends (environment variables,
// HashiCorp Vault KV v2, AWS Secrets Manager). A source that is reachable
// but has no secret configured returns ("", nil) so a chain can fall
// through to the next source; infrastructure failures return an error
// matching ErrSecretUnavailable.
//
// Implementations:
//   - Environment chain: providers/envsecret.Source
//   - HashiCorp Vault KV v2: providers/hashicorpvault.KVSource
//   - AWS Secrets Manager: providers/awssecrets.Source
type SecretSource interface {
	ServerSecret(ctx context.Context) (string, error)
}

// ResolveServerSecret resolves one server-wide secret from layered sources,
// returning the first non-empty value. Resolution happens once at startup;
// the result is injected into key derivation via Config rather than read
// per call.
func ResolveServerSecret(ctx context.Context, sources ...SecretSource) (string, error) {
	for _, source := range sources {
		secret, err := source.ServerSecret(ctx)
		if err != nil {
			return "", err
		}
		if secret != "" {
			return secret, nil
		}
	}
	return "", fmt.Errorf("%w: no source provided a server secret", ErrSecretUnavailable)
}
