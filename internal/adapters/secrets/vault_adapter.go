package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// VaultConfig contains configuration for the HashiCorp Vault store
type VaultConfig struct {
	Address    string
	AuthMethod string // token, approle
	Token      string
	RoleID     string
	SecretID   string
	Namespace  string
	MountPath  string // KV mount, default "secret"
	KVVersion  string // v1 or v2, default v2
	CacheTTL   time.Duration
}

// DefaultVaultConfig returns token auth against a KV v2 mount named "secret"
func DefaultVaultConfig(address, token string) VaultConfig {
	return VaultConfig{
		Address:    address,
		AuthMethod: "token",
		Token:      token,
		MountPath:  "secret",
		KVVersion:  "v2",
		CacheTTL:   5 * time.Minute,
	}
}

// VaultSecretStore reads gateway credentials from Vault KV
type VaultSecretStore struct {
	client *vault.Client
	config VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultSecretStore creates an authenticated Vault client
func NewVaultSecretStore(ctx context.Context, cfg VaultConfig, logger *zap.Logger) (*VaultSecretStore, error) {
	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.Address

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}
	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	logger.Info("Vault secret store initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
	)

	return &VaultSecretStore{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

func authenticateVault(ctx context.Context, client *vault.Client, cfg VaultConfig) error {
	switch cfg.AuthMethod {
	case "", "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret reads the "value" key of the KV entry at path
func (s *VaultSecretStore) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := s.cache.get(path); cached != nil {
		return cached, nil
	}

	fullPath := fmt.Sprintf("%s/%s", s.config.MountPath, path)
	if s.config.KVVersion != "v1" {
		fullPath = fmt.Sprintf("%s/data/%s", s.config.MountPath, path)
	}

	raw, err := s.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		s.logger.Error("Failed to retrieve secret from Vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	secret, err := parseVaultSecret(raw.Data, s.config.KVVersion != "v1")
	if err != nil {
		return nil, fmt.Errorf("secret %s: %w", path, err)
	}

	s.cache.set(path, secret)
	return secret, nil
}

// parseVaultSecret extracts the value and metadata from a KV read
func parseVaultSecret(data map[string]interface{}, kvV2 bool) (*ports.Secret, error) {
	secret := &ports.Secret{Version: "1", Metadata: make(map[string]string)}
	values := data

	if kvV2 {
		inner, ok := data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid secret format from Vault")
		}
		values = inner
		if meta, ok := data["metadata"].(map[string]interface{}); ok {
			if v, ok := meta["version"].(json.Number); ok {
				secret.Version = v.String()
			}
			if ct, ok := meta["created_time"].(string); ok {
				secret.CreatedAt = ct
			}
		}
	}

	for k, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if k == "value" {
			secret.Value = str
			continue
		}
		secret.Metadata[k] = str
	}

	if secret.Value == "" {
		return nil, fmt.Errorf("secret has no \"value\" key")
	}
	return secret, nil
}
