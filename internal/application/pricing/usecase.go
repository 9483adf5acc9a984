// Package pricing implementa el catálogo de tarifas con vigencia temporal:
// resolución de la tarifa en efecto en un instante y cambios de precio que
// cierran la tarifa abierta y abren la nueva sin crear solapes.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/onda-do/registro-api/internal/application/ports"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRunner ejecuta una función dentro de una transacción con el repo de tarifas.
type TxRunner interface {
	RunPricing(ctx context.Context, fn func(costRepo repository.CostRecordRepository) error) error
}

// UseCase casos de uso del catálogo de tarifas.
type UseCase struct {
	costRepo repository.CostRecordRepository
	txRunner TxRunner
	clock    ports.Clock
}

// NewUseCase construye el caso de uso.
func NewUseCase(costRepo repository.CostRecordRepository, txRunner TxRunner, clock ports.Clock) *UseCase {
	return &UseCase{costRepo: costRepo, txRunner: txRunner, clock: clock}
}

// PriceAtIn resuelve la tarifa vigente en t usando el repo dado (pool o tx del
// caller). Cero coincidencias -> ErrNotFound; más de una -> ErrAmbiguousPricing:
// el solape es una violación de integridad que se reporta tal cual, nunca se
// elige una tarifa en silencio.
func PriceAtIn(ctx context.Context, costRepo repository.CostRecordRepository, serviceID string, t time.Time) (decimal.Decimal, error) {
	records, err := costRepo.FindCovering(ctx, serviceID, t)
	if err != nil {
		return decimal.Zero, err
	}
	switch len(records) {
	case 0:
		return decimal.Zero, fmt.Errorf("tarifa de %s en %s: %w", serviceID, t.Format(time.RFC3339), domain.ErrNotFound)
	case 1:
		return records[0].Price, nil
	default:
		return decimal.Zero, fmt.Errorf("servicio %s en %s: %w", serviceID, t.Format(time.RFC3339), domain.ErrAmbiguousPricing)
	}
}

// PriceAt resuelve la tarifa vigente del servicio en el instante t.
func (uc *UseCase) PriceAt(ctx context.Context, serviceID string, t time.Time) (decimal.Decimal, error) {
	return PriceAtIn(ctx, uc.costRepo, serviceID, t)
}

// CurrentPrice resuelve la tarifa vigente ahora.
func (uc *UseCase) CurrentPrice(ctx context.Context, serviceID string) (decimal.Decimal, error) {
	return PriceAtIn(ctx, uc.costRepo, serviceID, uc.clock.Now())
}

// SetPrice cambia la tarifa de un servicio: cierra la tarifa abierta en
// effectiveFrom y abre una nueva con vigencia abierta, en una sola transacción.
// Rechaza effectiveFrom anterior al inicio de la tarifa abierta (un cambio
// retroactivo crearía solapes).
func (uc *UseCase) SetPrice(ctx context.Context, serviceID string, price decimal.Decimal, effectiveFrom time.Time) (*entity.CostRecord, error) {
	if serviceID == "" || !price.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var created *entity.CostRecord
	err := uc.txRunner.RunPricing(ctx, func(costRepo repository.CostRecordRepository) error {
		created = nil
		open, err := costRepo.GetOpenForUpdate(ctx, serviceID)
		if err != nil {
			return err
		}
		if open != nil {
			if effectiveFrom.Before(open.ValidFrom) {
				return fmt.Errorf("cambio de tarifa retroactivo (vigente desde %s): %w",
					open.ValidFrom.Format(time.RFC3339), domain.ErrInvalidInput)
			}
			if err := costRepo.CloseOpen(ctx, open.ID, effectiveFrom); err != nil {
				return err
			}
		}
		rec := &entity.CostRecord{
			ID:        uuid.New().String(),
			ServiceID: serviceID,
			Price:     price,
			ValidFrom: effectiveFrom,
			CreatedAt: uc.clock.Now(),
		}
		if err := costRepo.Create(ctx, rec); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// History devuelve el histórico de tarifas del servicio.
func (uc *UseCase) History(ctx context.Context, serviceID string) ([]*entity.CostRecord, error) {
	return uc.costRepo.ListByService(ctx, serviceID)
}
