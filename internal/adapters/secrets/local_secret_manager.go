package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// LocalSecretStore reads secrets from files under a base directory.
// Development only.
type LocalSecretStore struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalSecretStore creates a file-backed secret store
func NewLocalSecretStore(basePath string, logger *zap.Logger) *LocalSecretStore {
	return &LocalSecretStore{basePath: basePath, logger: logger}
}

// GetSecret reads basePath/path. JSON files with a "value" key and plain
// text files are both accepted.
func (s *LocalSecretStore) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	clean := filepath.Clean("/" + secretPath)
	filePath := filepath.Join(s.basePath, clean)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	var doc struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Value != "" {
		return &ports.Secret{
			Value:     doc.Value,
			Version:   "v1",
			Metadata:  doc.Tags,
			CreatedAt: doc.CreatedAt,
		}, nil
	}

	return &ports.Secret{
		Value:   strings.TrimSpace(string(data)),
		Version: "v1",
	}, nil
}
