package storage

import (
	"context"
	"fmt"

	"github.com/baileyeubanks/coedit/config"
)

// New builds the storage backend selected by the configuration.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "local", "":
		return NewLocalStorage(cfg.Storage.OutputDir)
	case "gcs":
		return NewGCSStorage(ctx, cfg.Storage.Bucket, cfg.Storage.ObjectPrefix, cfg.Storage.CredentialsFile, cfg.Storage.PublicBaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Storage.Type)
	}
}
