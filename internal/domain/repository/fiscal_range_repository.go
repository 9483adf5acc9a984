package repository

import (
	"context"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// FiscalRangeRepository define el puerto de persistencia para rangos NCF.
type FiscalRangeRepository interface {
	Create(ctx context.Context, r *entity.FiscalRange) error
	GetByID(ctx context.Context, id string) (*entity.FiscalRange, error)

	// GetActiveForUpdate devuelve el rango activo para (tipo, serie) con la fila
	// bloqueada (SELECT ... FOR UPDATE). Es la consulta crítica del asignador:
	// sin el bloqueo, dos cajas concurrentes podrían leer el mismo
	// current_number y emitir NCF duplicados. Devuelve nil, nil si no hay rango
	// activo. Solo tiene sentido dentro de una transacción.
	GetActiveForUpdate(ctx context.Context, documentType, series string) (*entity.FiscalRange, error)

	// Update persiste el avance de current_number o la desactivación del rango.
	Update(ctx context.Context, r *entity.FiscalRange) error

	// List lista todos los rangos (activos e inactivos) para inspección administrativa.
	List(ctx context.Context) ([]*entity.FiscalRange, error)
}

// FiscalReceiptRepository define el puerto de persistencia para NCF emitidos.
// Los comprobantes son inmutables salvo por la anulación (bandera, nunca
// reciclaje del número).
type FiscalReceiptRepository interface {
	Create(ctx context.Context, r *entity.FiscalReceipt) error
	GetByID(ctx context.Context, id string) (*entity.FiscalReceipt, error)
	Annul(ctx context.Context, id, reason string) error
}
