package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onda-do/registro-api/internal/application/fiscal"
	"github.com/onda-do/registro-api/internal/application/pricing"
	"github.com/onda-do/registro-api/internal/application/workflow"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

var _ fiscal.TxRunner = (*TxRunner)(nil)
var _ pricing.TxRunner = (*TxRunner)(nil)
var _ workflow.TxRunner = (*TxRunner)(nil)

const txMaxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Si la
// transacción falla por un error transitorio del almacén (serialización,
// deadlock, conexión), la reintenta completa; los callbacks deben reiniciar
// sus salidas capturadas al comenzar.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) runWithRetry(ctx context.Context, fn func(tx Querier) error) error {
	var lastErr error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		lastErr = r.runOnce(ctx, fn)
		if lastErr == nil || !errors.Is(lastErr, domain.ErrStorageUnavailable) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return lastErr
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapStorageErr(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return mapStorageErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapStorageErr(err))
	}
	return nil
}

// RunPricing inicia una transacción con el repo del catálogo de tarifas.
func (r *TxRunner) RunPricing(ctx context.Context, fn func(
	costRepo repository.CostRecordRepository,
) error) error {
	return r.runWithRetry(ctx, func(tx Querier) error {
		return fn(NewCostRecordRepository(tx))
	})
}

// RunFiscal inicia una transacción con los repos de rangos y comprobantes.
func (r *TxRunner) RunFiscal(ctx context.Context, fn func(
	rangeRepo repository.FiscalRangeRepository,
	receiptRepo repository.FiscalReceiptRepository,
) error) error {
	return r.runWithRetry(ctx, func(tx Querier) error {
		return fn(NewFiscalRangeRepository(tx), NewFiscalReceiptRepository(tx))
	})
}

// RunWorkflow inicia una transacción con todos los repos que una transición
// puede tocar: solicitud, pagos, auditoría, consecutivos de registro, rangos
// fiscales y tarifas.
func (r *TxRunner) RunWorkflow(ctx context.Context, fn func(
	reqRepo repository.RequestRepository,
	payRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	seqRepo repository.RegistrySequenceRepository,
	rangeRepo repository.FiscalRangeRepository,
	receiptRepo repository.FiscalReceiptRepository,
	costRepo repository.CostRecordRepository,
) error) error {
	return r.runWithRetry(ctx, func(tx Querier) error {
		return fn(
			NewRequestRepository(tx),
			NewPaymentRepository(tx),
			NewAuditRepository(tx),
			NewRegistrySequenceRepository(tx),
			NewFiscalRangeRepository(tx),
			NewFiscalReceiptRepository(tx),
			NewCostRecordRepository(tx),
		)
	})
}
