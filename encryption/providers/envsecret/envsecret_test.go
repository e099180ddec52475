package envsecret

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
)

func TestServerSecretFallbackChain(t *testing.T) {
	ctx := context.Background()

	t.Run("primary variable wins", func(t *testing.T) {
		t.Setenv(encryption.EnvServerSecret, "primary")
		t.Setenv(encryption.EnvServerSecretFallback, "fallback")

		secret, err := (&Source{}).ServerSecret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "primary", secret)
	})

	t.Run("app secret fallback", func(t *testing.T) {
		t.Setenv(encryption.EnvServerSecret, "")
		t.Setenv(encryption.EnvServerSecretFallback, "fallback")

		secret, err := (&Source{}).ServerSecret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "fallback", secret)
	})

	t.Run("development fallback", func(t *testing.T) {
		t.Setenv(encryption.EnvServerSecret, "")
		t.Setenv(encryption.EnvServerSecretFallback, "")

		secret, err := (&Source{}).ServerSecret(ctx)
		require.NoError(t, err)
		assert.Equal(t, encryption.DevServerSecret, secret)
	})
}

func TestServerSecretDotenv(t *testing.T) {
	ctx := context.Background()

	t.Run("loads variables from file", func(t *testing.T) {
		// godotenv never overrides variables already present, even when
		// empty, so clear them outright.
		t.Setenv(encryption.EnvServerSecret, "")
		t.Setenv(encryption.EnvServerSecretFallback, "")
		os.Unsetenv(encryption.EnvServerSecret)
		os.Unsetenv(encryption.EnvServerSecretFallback)

		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path,
			[]byte(encryption.EnvServerSecret+"=from-dotenv\n"), 0o600))

		secret, err := (&Source{DotenvPath: path}).ServerSecret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", secret)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := (&Source{DotenvPath: "/nonexistent/.env"}).ServerSecret(ctx)
		require.Error(t, err)
		assert.True(t, encryption.IsConfigurationError(err))
	})
}
