package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// AWSSecretsManagerConfig contains configuration for the AWS Secrets Manager store
type AWSSecretsManagerConfig struct {
	Region   string
	Profile  string // optional shared-config profile for local development
	Endpoint string // optional, e.g. LocalStack
	Prefix   string // prepended to every path, e.g. "hotel-payout/"
	CacheTTL time.Duration
}

// secretValueGetter is the one Secrets Manager call this store makes
type secretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretStore reads gateway credentials from AWS Secrets Manager
type AWSSecretStore struct {
	client secretValueGetter
	prefix string
	logger *zap.Logger
	cache  *secretCache
}

// NewAWSSecretStore loads the default credential chain and creates the client
func NewAWSSecretStore(ctx context.Context, cfg AWSSecretsManagerConfig, logger *zap.Logger) (*AWSSecretStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOptions []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager store initialized",
		zap.String("region", cfg.Region),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	return newAWSSecretStore(secretsmanager.NewFromConfig(awsConfig, clientOptions...), cfg, logger), nil
}

func newAWSSecretStore(client secretValueGetter, cfg AWSSecretsManagerConfig, logger *zap.Logger) *AWSSecretStore {
	return &AWSSecretStore{
		client: client,
		prefix: cfg.Prefix,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}
}

// GetSecret retrieves a secret by name or ARN
func (s *AWSSecretStore) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := s.cache.get(path); cached != nil {
		return cached, nil
	}

	start := time.Now()
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.prefix + path),
	})
	if err != nil {
		s.logger.Error("Failed to retrieve secret",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	s.logger.Debug("Secret retrieved",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
	)

	secret := &ports.Secret{
		Value:    aws.ToString(result.SecretString),
		Version:  aws.ToString(result.VersionId),
		Metadata: make(map[string]string),
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.Format(time.RFC3339)
	}
	if result.ARN != nil {
		secret.Metadata["arn"] = *result.ARN
	}

	s.cache.set(path, secret)
	return secret, nil
}
