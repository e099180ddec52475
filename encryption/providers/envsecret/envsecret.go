// Package envsecret resolves the server secret from process environment
// variables, implementing the documented fallback chain:
// DIET_ENCRYPTION_SECRET, then DIET_APP_SECRET, then the development
// fallback. Production deployments must set one of the two variables.
package envsecret

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
)

// Source implements encryption.SecretSource over the process environment.
type Source struct {
	// DotenvPath, when set, is loaded into the environment before the
	// variables are read. Missing dotenv files are an error; leave the
	// field empty to read the plain environment.
	DotenvPath string
}

// ServerSecret returns the first value in the fallback chain. The
// development fallback is returned last so the chain never resolves empty;
// encryption.Config.Validate decides whether that fallback is acceptable.
func (s *Source) ServerSecret(ctx context.Context) (string, error) {
	if s.DotenvPath != "" {
		if err := godotenv.Load(s.DotenvPath); err != nil {
			return "", fmt.Errorf("%w: loading %s: %v",
				encryption.ErrSecretUnavailable, s.DotenvPath, err)
		}
	}

	if v := os.Getenv(encryption.EnvServerSecret); v != "" {
		return v, nil
	}
	if v := os.Getenv(encryption.EnvServerSecretFallback); v != "" {
		return v, nil
	}
	return encryption.DevServerSecret, nil
}
