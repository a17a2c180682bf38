package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/config"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

const defaultCacheTTL = 5 * time.Minute

// NewFromConfig builds the secret store selected by SECRET_MANAGER
func NewFromConfig(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretStore, error) {
	switch cfg.Backend {
	case "aws":
		return NewAWSSecretStore(ctx, AWSSecretsManagerConfig{
			Region:   cfg.AWSRegion,
			Profile:  os.Getenv("AWS_PROFILE"),
			Endpoint: os.Getenv("AWS_SECRETS_ENDPOINT"),
			Prefix:   os.Getenv("AWS_SECRETS_PREFIX"),
			CacheTTL: defaultCacheTTL,
		}, logger)

	case "vault":
		vaultCfg := DefaultVaultConfig(cfg.VaultAddr, os.Getenv("VAULT_TOKEN"))
		vaultCfg.MountPath = cfg.VaultPath
		if roleID := os.Getenv("VAULT_ROLE_ID"); roleID != "" {
			vaultCfg.AuthMethod = "approle"
			vaultCfg.RoleID = roleID
			vaultCfg.SecretID = os.Getenv("VAULT_SECRET_ID")
		}
		return NewVaultSecretStore(ctx, vaultCfg, logger)

	case "", "local":
		logger.Warn("Using local file secret store - NOT for production use",
			zap.String("base_path", cfg.LocalPath),
		)
		return NewLocalSecretStore(cfg.LocalPath, logger), nil

	default:
		return nil, fmt.Errorf("unknown secret backend %q", cfg.Backend)
	}
}
