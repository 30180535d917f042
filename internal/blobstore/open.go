package blobstore

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/vzahanych/weather-dashboard/internal/config"
)

// Open returns the backend selected by cfg.Backend and a function releasing it.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, func() error, error) {
	switch cfg.Backend {
	case "gcs":
		b, err := NewGCSBackend(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case "local":
		return NewLocalBackend(afero.NewOsFs(), cfg.LocalDir), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
