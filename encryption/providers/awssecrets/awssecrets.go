// Package awssecrets resolves the server secret from AWS Secrets Manager.
package awssecrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
)

// DefaultSecretID is the Secrets Manager secret name holding the server
// secret.
const DefaultSecretID = "dietitians/encryption/server-secret"

// secretsManagerClient covers the Secrets Manager operations this source
// uses (allows mocking in tests).
type secretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Source implements encryption.SecretSource using AWS Secrets Manager.
type Source struct {
	client   secretsManagerClient
	secretID string
}

// Config holds options for creating a Source.
type Config struct {
	// Region is the AWS region. Empty uses the default resolution chain.
	Region string

	// SecretID is the secret name or ARN. Empty uses DefaultSecretID.
	SecretID string

	// AWSConfig, when set, is used instead of loading the default
	// configuration (useful for custom credentials or endpoints).
	AWSConfig *aws.Config
}

// New creates a Secrets Manager source.
func New(ctx context.Context, cfg Config) (*Source, error) {
	var awsCfg aws.Config
	var err error

	if cfg.AWSConfig != nil {
		awsCfg = *cfg.AWSConfig
	} else {
		opts := []func(*awsconfig.LoadOptions) error{}
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load AWS configuration: %v",
				encryption.ErrSecretUnavailable, err)
		}
	}

	secretID := cfg.SecretID
	if secretID == "" {
		secretID = DefaultSecretID
	}

	return &Source{
		client:   secretsmanager.NewFromConfig(awsCfg),
		secretID: secretID,
	}, nil
}

// ServerSecret fetches the secret value. A missing secret returns
// ("", nil) so a source chain can fall through; any other failure maps to
// encryption.ErrSecretUnavailable.
func (s *Source) ServerSecret(ctx context.Context) (string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretID),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("%w: failed to read %s from Secrets Manager: %v",
			encryption.ErrSecretUnavailable, s.secretID, err)
	}
	return aws.ToString(out.SecretString), nil
}
