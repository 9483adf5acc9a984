// Package fiscal implementa la asignación de NCF: el siguiente número del
// rango activo, emitido de forma atómica sobre la fila bloqueada del rango.
// Los números nunca se duplican, nunca se saltan y nunca se reciclan; un
// comprobante anulado conserva su número.
package fiscal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/onda-do/registro-api/internal/application/ports"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

// UseCase casos de uso del pool de secuencias fiscales.
type UseCase struct {
	txRunner TxRunner
	clock    ports.Clock
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, clock ports.Clock) *UseCase {
	return &UseCase{txRunner: txRunner, clock: clock}
}

// allocateLocked incrementa current_number sobre la fila ya bloqueada y crea el
// comprobante. El caller ya validó vigencia y disponibilidad.
func allocateLocked(
	ctx context.Context,
	rangeRepo repository.FiscalRangeRepository,
	receiptRepo repository.FiscalReceiptRepository,
	r *entity.FiscalRange,
	actorID, ownerTransactionID string,
	now time.Time,
) (*entity.FiscalReceipt, error) {
	r.CurrentNumber++
	r.UpdatedAt = now
	if err := rangeRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	receipt := &entity.FiscalReceipt{
		ID:                 uuid.New().String(),
		DocumentType:       r.DocumentType,
		Series:             r.Series,
		Number:             r.CurrentNumber,
		OwnerTransactionID: ownerTransactionID,
		IssuedAt:           now,
		IssuedBy:           actorID,
	}
	if err := receiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// AllocateInTx emite el siguiente NCF usando los repos del caller (misma
// transacción). Si el rango está agotado, vencido o no existe, retorna el error
// de dominio y el caller hace rollback de toda su transacción: un pago sin NCF
// posible no se confirma a medias.
//
// La secuencia es leer-bloquear-incrementar: GetActiveForUpdate serializa a los
// asignadores concurrentes sobre la fila del rango, de modo que dos cajas nunca
// observan el mismo current_number.
func (uc *UseCase) AllocateInTx(
	ctx context.Context,
	rangeRepo repository.FiscalRangeRepository,
	receiptRepo repository.FiscalReceiptRepository,
	documentType, series, actorID, ownerTransactionID string,
	now time.Time,
) (*entity.FiscalReceipt, error) {
	r, err := rangeRepo.GetActiveForUpdate(ctx, documentType, series)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNoActiveRange
	}
	if r.ExpiredAt(now) {
		// Vencido no emite aunque queden números (regla DGII).
		return nil, domain.ErrRangeExpired
	}
	if r.CurrentNumber >= r.EndNumber {
		return nil, domain.ErrRangeExhausted
	}
	return allocateLocked(ctx, rangeRepo, receiptRepo, r, actorID, ownerTransactionID, now)
}

// Allocate emite el siguiente NCF en su propia transacción. A diferencia de
// AllocateInTx, el agotamiento sí confirma la desactivación del rango: la
// transacción termina en commit y el error se reporta después.
func (uc *UseCase) Allocate(ctx context.Context, documentType, series, actorID, ownerTransactionID string) (*entity.FiscalReceipt, error) {
	if documentType == "" || series == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()

	var receipt *entity.FiscalReceipt
	var allocErr error
	err := uc.txRunner.RunFiscal(ctx, func(
		rangeRepo repository.FiscalRangeRepository,
		receiptRepo repository.FiscalReceiptRepository,
	) error {
		receipt, allocErr = nil, nil
		r, err := rangeRepo.GetActiveForUpdate(ctx, documentType, series)
		if err != nil {
			return err
		}
		if r == nil {
			allocErr = domain.ErrNoActiveRange
			return nil
		}
		if r.ExpiredAt(now) {
			allocErr = domain.ErrRangeExpired
			return nil
		}
		if r.CurrentNumber >= r.EndNumber {
			// Agotado: se desactiva el rango y el commit persiste la bandera.
			r.Active = false
			r.UpdatedAt = now
			if err := rangeRepo.Update(ctx, r); err != nil {
				return err
			}
			allocErr = domain.ErrRangeExhausted
			return nil
		}
		receipt, err = allocateLocked(ctx, rangeRepo, receiptRepo, r, actorID, ownerTransactionID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if allocErr != nil {
		return nil, allocErr
	}
	return receipt, nil
}

// Annul anula un comprobante emitido: marca la bandera con el motivo. El número
// no vuelve al pool.
func (uc *UseCase) Annul(ctx context.Context, receiptID, reason string) error {
	if receiptID == "" || reason == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunFiscal(ctx, func(
		_ repository.FiscalRangeRepository,
		receiptRepo repository.FiscalReceiptRepository,
	) error {
		r, err := receiptRepo.GetByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		return receiptRepo.Annul(ctx, receiptID, reason)
	})
}

// CreateRange da de alta un rango autorizado (acción administrativa). El alta
// desactiva cualquier rango activo previo del mismo (tipo, serie): a lo sumo
// uno elegible a la vez.
func (uc *UseCase) CreateRange(ctx context.Context, in CreateRangeInput) (*entity.FiscalRange, error) {
	if in.DocumentType == "" || in.Series == "" || in.EndNumber <= in.StartNumber {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()
	if in.ExpiresAt.IsZero() || !now.Before(in.ExpiresAt) {
		return nil, domain.ErrInvalidInput
	}
	created := &entity.FiscalRange{
		ID:            uuid.New().String(),
		DocumentType:  in.DocumentType,
		Series:        in.Series,
		StartNumber:   in.StartNumber,
		EndNumber:     in.EndNumber,
		CurrentNumber: in.StartNumber,
		ExpiresAt:     in.ExpiresAt,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := uc.txRunner.RunFiscal(ctx, func(
		rangeRepo repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
	) error {
		prev, err := rangeRepo.GetActiveForUpdate(ctx, in.DocumentType, in.Series)
		if err != nil {
			return err
		}
		if prev != nil {
			prev.Active = false
			prev.UpdatedAt = now
			if err := rangeRepo.Update(ctx, prev); err != nil {
				return err
			}
		}
		return rangeRepo.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListRanges lista todos los rangos para inspección administrativa.
func (uc *UseCase) ListRanges(ctx context.Context) ([]*entity.FiscalRange, error) {
	var list []*entity.FiscalRange
	err := uc.txRunner.RunFiscal(ctx, func(
		rangeRepo repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
	) error {
		var err error
		list, err = rangeRepo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetReceipt consulta un comprobante emitido.
func (uc *UseCase) GetReceipt(ctx context.Context, receiptID string) (*entity.FiscalReceipt, error) {
	var receipt *entity.FiscalReceipt
	err := uc.txRunner.RunFiscal(ctx, func(
		_ repository.FiscalRangeRepository,
		receiptRepo repository.FiscalReceiptRepository,
	) error {
		receipt = nil
		var err error
		receipt, err = receiptRepo.GetByID(ctx, receiptID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, domain.ErrNotFound
	}
	return receipt, nil
}

// CreateRangeInput alta administrativa de un rango NCF.
type CreateRangeInput struct {
	DocumentType string
	Series       string
	StartNumber  int64
	EndNumber    int64
	ExpiresAt    time.Time
}
