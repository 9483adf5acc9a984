// Package catalog administra el catálogo de trámites (servicios) de la oficina.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/onda-do/registro-api/internal/application/ports"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

// ServiceUseCase casos de uso del catálogo de trámites.
type ServiceUseCase struct {
	serviceRepo repository.ServiceRepository
	clock       ports.Clock
}

// NewServiceUseCase construye el caso de uso.
func NewServiceUseCase(serviceRepo repository.ServiceRepository, clock ports.Clock) *ServiceUseCase {
	return &ServiceUseCase{serviceRepo: serviceRepo, clock: clock}
}

// CreateServiceInput alta de un trámite.
type CreateServiceInput struct {
	Name        string `json:"name"`
	TypeCode    string `json:"type_code"`
	Description string `json:"description"`
}

// Create da de alta un trámite activo.
func (uc *ServiceUseCase) Create(ctx context.Context, in CreateServiceInput) (*entity.Service, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.TypeCode != entity.TypeCodeObra && in.TypeCode != entity.TypeCodeIRC {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()
	svc := &entity.Service{
		ID:          uuid.New().String(),
		Name:        in.Name,
		TypeCode:    in.TypeCode,
		Description: in.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// GetByID consulta un trámite.
func (uc *ServiceUseCase) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	svc, err := uc.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	return svc, nil
}

// List lista los trámites; onlyActive filtra los dados de baja.
func (uc *ServiceUseCase) List(ctx context.Context, onlyActive bool) ([]*entity.Service, error) {
	return uc.serviceRepo.List(ctx, onlyActive)
}

// SetActive activa o desactiva un trámite. Desactivar no toca solicitudes en
// curso: solo impide radicar nuevas.
func (uc *ServiceUseCase) SetActive(ctx context.Context, id string, active bool) (*entity.Service, error) {
	svc, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	svc.Active = active
	svc.UpdatedAt = uc.clock.Now()
	if err := uc.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}
