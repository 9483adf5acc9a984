package repository

import (
	"context"
	"time"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// CostRecordRepository define el puerto de persistencia para tarifas históricas.
type CostRecordRepository interface {
	Create(ctx context.Context, c *entity.CostRecord) error

	// FindCovering devuelve las tarifas del servicio cuyo intervalo
	// [valid_from, valid_until) contiene t. El catálogo espera cero o una; si
	// llegan dos hay un solape (violación de integridad) y el caso de uso debe
	// fallar con ErrAmbiguousPricing, no elegir una. La consulta limita a 2
	// filas: basta para detectar la ambigüedad.
	FindCovering(ctx context.Context, serviceID string, t time.Time) ([]*entity.CostRecord, error)

	// GetOpenForUpdate devuelve la tarifa abierta (valid_until IS NULL) del
	// servicio con la fila bloqueada, o nil, nil si no existe. Solo dentro de
	// una transacción.
	GetOpenForUpdate(ctx context.Context, serviceID string) (*entity.CostRecord, error)

	// CloseOpen cierra una tarifa: fija valid_until.
	CloseOpen(ctx context.Context, id string, until time.Time) error

	// ListByService lista el histórico de tarifas del servicio, más reciente primero.
	ListByService(ctx context.Context, serviceID string) ([]*entity.CostRecord, error)
}
