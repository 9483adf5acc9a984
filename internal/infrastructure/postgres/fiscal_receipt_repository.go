package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

var _ repository.FiscalReceiptRepository = (*FiscalReceiptRepo)(nil)

// FiscalReceiptRepo implementa FiscalReceiptRepository sobre PostgreSQL.
// La tabla tiene constraint único sobre (document_type, series, number): si el
// asignador intentara repetir un número, la transacción entera falla.
type FiscalReceiptRepo struct {
	q Querier
}

// NewFiscalReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalReceiptRepository(q Querier) *FiscalReceiptRepo {
	return &FiscalReceiptRepo{q: q}
}

func (r *FiscalReceiptRepo) Create(ctx context.Context, fr *entity.FiscalReceipt) error {
	const q = `
		INSERT INTO fiscal_receipts
			(id, document_type, series, number, owner_transaction_id, issued_at, issued_by, annulled, annul_reason)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, q,
		fr.ID, fr.DocumentType, fr.Series, fr.Number,
		fr.OwnerTransactionID, fr.IssuedAt, fr.IssuedBy,
		fr.Annulled, fr.AnnulReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert fiscal_receipt: NCF duplicado: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert fiscal_receipt: %w", err)
	}
	return nil
}

func (r *FiscalReceiptRepo) GetByID(ctx context.Context, id string) (*entity.FiscalReceipt, error) {
	const q = `
		SELECT id, document_type, series, number, owner_transaction_id,
		       issued_at, issued_by, annulled, annul_reason
		FROM fiscal_receipts WHERE id = $1`
	var fr entity.FiscalReceipt
	err := r.q.QueryRow(ctx, q, id).Scan(
		&fr.ID, &fr.DocumentType, &fr.Series, &fr.Number,
		&fr.OwnerTransactionID, &fr.IssuedAt, &fr.IssuedBy,
		&fr.Annulled, &fr.AnnulReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal_receipt by id: %w", err)
	}
	return &fr, nil
}

// Annul marca el comprobante como anulado conservando motivo. El número no se
// recicla: la fila queda para siempre en la secuencia emitida.
func (r *FiscalReceiptRepo) Annul(ctx context.Context, id, reason string) error {
	const q = `
		UPDATE fiscal_receipts
		SET annulled = true, annul_reason = $2
		WHERE id = $1 AND annulled = false`
	tag, err := r.q.Exec(ctx, q, id, reason)
	if err != nil {
		return fmt.Errorf("annul fiscal_receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
