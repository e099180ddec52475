// Package hashicorpvault resolves the server secret from HashiCorp Vault's
// KV v2 secrets engine, for deployments that keep the encryption secret
// out of the process environment entirely.
package hashicorpvault

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/vault/api"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
)

// DefaultSecretPath is the KV v2 path holding the server secret.
// The "/data/" segment is required by the KV v2 API.
const DefaultSecretPath = "secret/data/dietitians/encryption/server-secret"

// secretDataKey is the key inside the KV v2 data map that holds the value.
const secretDataKey = "value"

// KVSource implements encryption.SecretSource using Vault KV v2.
type KVSource struct {
	client *api.Client
	path   string
}

// NewKVSource creates a KVSource using environment-based Vault
// configuration.
//
// Environment variables:
//   - VAULT_ADDR: Vault server address (required)
//   - VAULT_NAMESPACE: namespace for HCP Vault (optional)
//   - VAULT_TOKEN: direct token authentication (required)
//
// The KV v2 engine must be enabled at the "secret" mount. Pass an empty
// path to use DefaultSecretPath.
func NewKVSource(path string) (*KVSource, error) {
	config := api.DefaultConfig()

	if addr := os.Getenv("VAULT_ADDR"); addr != "" {
		config.Address = addr
	}
	if config.Address == "" {
		return nil, fmt.Errorf("%w: VAULT_ADDR environment variable is required",
			encryption.ErrInvalidConfiguration)
	}

	config.HttpClient.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Vault client: %v",
			encryption.ErrSecretUnavailable, err)
	}

	if namespace := os.Getenv("VAULT_NAMESPACE"); namespace != "" {
		client.SetNamespace(namespace)
	}

	token := os.Getenv("VAULT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("%w: VAULT_TOKEN environment variable is required",
			encryption.ErrInvalidConfiguration)
	}
	client.SetToken(token)

	if path == "" {
		path = DefaultSecretPath
	}

	return &KVSource{client: client, path: path}, nil
}

// ServerSecret reads the secret from Vault. A reachable Vault without the
// secret configured returns ("", nil) so a source chain can fall through.
func (s *KVSource) ServerSecret(ctx context.Context) (string, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s from Vault KV: %v",
			encryption.ErrSecretUnavailable, s.path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", nil
	}

	// KV v2 wraps the actual data in a "data" key.
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("%w: invalid KV v2 secret format at %s",
			encryption.ErrSecretUnavailable, s.path)
	}

	value, ok := data[secretDataKey].(string)
	if !ok {
		return "", nil
	}
	return value, nil
}
