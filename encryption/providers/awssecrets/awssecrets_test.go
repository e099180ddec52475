package awssecrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
)

type mockSecretsClient struct {
	output *secretsmanager.GetSecretValueOutput
	err    error

	gotSecretID string
}

func (m *mockSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.gotSecretID = aws.ToString(params.SecretId)
	return m.output, m.err
}

func TestServerSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("returns secret value", func(t *testing.T) {
		mock := &mockSecretsClient{
			output: &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String("production-secret"),
			},
		}
		source := &Source{client: mock, secretID: "custom/secret"}

		secret, err := source.ServerSecret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "production-secret", secret)
		assert.Equal(t, "custom/secret", mock.gotSecretID)
	})

	t.Run("missing secret falls through", func(t *testing.T) {
		mock := &mockSecretsClient{err: &types.ResourceNotFoundException{}}
		source := &Source{client: mock, secretID: DefaultSecretID}

		secret, err := source.ServerSecret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", secret)
	})

	t.Run("infrastructure failure", func(t *testing.T) {
		mock := &mockSecretsClient{err: errors.New("throttled")}
		source := &Source{client: mock, secretID: DefaultSecretID}

		_, err := source.ServerSecret(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, encryption.ErrSecretUnavailable)
	})
}

func TestNewUsesProvidedAWSConfig(t *testing.T) {
	source, err := New(context.Background(), Config{AWSConfig: &aws.Config{Region: "eu-west-1"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultSecretID, source.secretID)
	assert.NotNil(t, source.client)
}
