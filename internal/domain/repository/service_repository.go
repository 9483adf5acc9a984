package repository

import (
	"context"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// ServiceRepository define el puerto de persistencia para el catálogo de trámites.
type ServiceRepository interface {
	Create(ctx context.Context, s *entity.Service) error
	GetByID(ctx context.Context, id string) (*entity.Service, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.Service, error)
	Update(ctx context.Context, s *entity.Service) error
}
