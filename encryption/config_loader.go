package encryption

import (
	"fmt"
	"os"
	"strconv"
)

// LoadConfigFromEnvironment loads configuration from environment variables,
// following the documented fallback chain for the server secret:
//
//  1. DIET_ENCRYPTION_SECRET (primary)
//  2. DIET_APP_SECRET (fallback)
//  3. DevServerSecret (development convenience only)
//
// Only the last step marks the config as using the development secret;
// explicitly constructed configs that carry DevServerSecret fail Validate,
// so the hardcoded default cannot leak into production wiring unnoticed.
//
// The optional DIET_KDF_ITERATIONS variable overrides the PBKDF2 iteration
// count; the default (and minimum) is DefaultIterations.
func LoadConfigFromEnvironment() (Config, error) {
	secret := os.Getenv(EnvServerSecret)
	if secret == "" {
		secret = os.Getenv(EnvServerSecretFallback)
	}

	allowDev := false
	if secret == "" {
		secret = DevServerSecret
		allowDev = true
	}

	iterations := 0
	if raw := os.Getenv(EnvKDFIterations); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s must be an integer: %v",
				ErrInvalidConfiguration, EnvKDFIterations, err)
		}
		iterations = n
	}

	cfg := Config{
		ServerSecret:   secret,
		Iterations:     iterations,
		AllowDevSecret: allowDev,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
