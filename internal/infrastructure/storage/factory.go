package storage

import (
	"context"
	"fmt"

	"github.com/onda-do/registro-api/internal/application/workflow"
	"github.com/onda-do/registro-api/pkg/config"
)

// New construye el DocumentStore según el driver configurado.
func New(ctx context.Context, cfg config.StorageConfig) (workflow.DocumentStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalPath)
	case "s3":
		return NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.Endpoint)
	default:
		return nil, fmt.Errorf("storage: driver desconocido: %q", cfg.Driver)
	}
}
