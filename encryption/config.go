package encryption

import (
	"fmt"
)

// Environment variable names
const (
	// EnvServerSecret is the primary environment variable for the server
	// secret used in server-side key derivation.
	EnvServerSecret = "DIET_ENCRYPTION_SECRET"

	// EnvServerSecretFallback is consulted when EnvServerSecret is unset.
	// It lets small deployments reuse the application secret instead of
	// managing a dedicated encryption secret.
	EnvServerSecretFallback = "DIET_APP_SECRET"

	// EnvKDFIterations overrides the PBKDF2 iteration count.
	// Values below DefaultIterations fail validation.
	EnvKDFIterations = "DIET_KDF_ITERATIONS"
)

// DevServerSecret is the documented development fallback used when neither
// environment variable is set. Production deployments MUST override it;
// Config.Validate rejects it unless AllowDevSecret is set, which only
// LoadConfigFromEnvironment does on the explicit fallback path.
const DevServerSecret = "dev-encryption-secret-do-not-use-in-production"

// Config holds the configuration for key derivation and resolution.
//
// This struct contains only data, no behavior. It can be populated from any
// source (environment, Vault, AWS Secrets Manager, code) and passed
// explicitly to NewKeyResolver; the key-derivation code never reads
// configuration ad hoc at call time.
type Config struct {
	// ServerSecret is the process-wide secret combined with user id and
	// per-user salt to derive keys. Must differ between deployment
	// environments. Never persisted alongside user data.
	ServerSecret string

	// Iterations is the PBKDF2 iteration count. Zero means
	// DefaultIterations; values below DefaultIterations are rejected.
	Iterations int

	// AllowDevSecret permits DevServerSecret as the server secret.
	// Only the documented environment fallback chain sets this.
	AllowDevSecret bool
}

// Validate checks the configuration and applies defaults to optional
// fields. It rejects a missing secret, the development fallback secret
// (unless explicitly allowed), and a weakened iteration count.
func (c *Config) Validate() error {
	if c.ServerSecret == "" {
		return fmt.Errorf("%w: ServerSecret is required", ErrInvalidConfiguration)
	}
	if c.ServerSecret == DevServerSecret && !c.AllowDevSecret {
		return fmt.Errorf("%w: the development fallback secret must be overridden outside development", ErrInvalidConfiguration)
	}

	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.Iterations < DefaultIterations {
		return fmt.Errorf("%w: KDF iterations must be at least %d, got %d",
			ErrInvalidConfiguration, DefaultIterations, c.Iterations)
	}

	return nil
}
