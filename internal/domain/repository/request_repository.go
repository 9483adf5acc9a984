package repository

import (
	"context"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// RequestRepository define el puerto de persistencia para solicitudes.
type RequestRepository interface {
	Create(ctx context.Context, r *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)

	// GetForUpdate devuelve la solicitud con la fila bloqueada. Toda transición
	// de estado arranca con esta lectura: el bloqueo serializa transiciones
	// concurrentes sobre la misma solicitud.
	GetForUpdate(ctx context.Context, id string) (*entity.Request, error)

	Update(ctx context.Context, r *entity.Request) error
	List(ctx context.Context, state string, limit, offset int) ([]*entity.Request, error)
}

// PaymentRepository define el puerto de persistencia para pagos de caja.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	ListByRequest(ctx context.Context, requestID string) ([]*entity.Payment, error)
}
