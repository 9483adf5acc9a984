package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

var _ repository.FiscalRangeRepository = (*FiscalRangeRepo)(nil)

// FiscalRangeRepo implementa FiscalRangeRepository sobre PostgreSQL (usable con pool o tx).
type FiscalRangeRepo struct {
	q Querier
}

// NewFiscalRangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalRangeRepository(q Querier) *FiscalRangeRepo {
	return &FiscalRangeRepo{q: q}
}

func (r *FiscalRangeRepo) Create(ctx context.Context, fr *entity.FiscalRange) error {
	const q = `
		INSERT INTO fiscal_ranges
			(id, document_type, series, start_number, end_number, current_number, expires_at, active, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(ctx, q,
		fr.ID, fr.DocumentType, fr.Series,
		fr.StartNumber, fr.EndNumber, fr.CurrentNumber,
		fr.ExpiresAt, fr.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert fiscal_range: rango duplicado: %w", err)
		}
		return fmt.Errorf("insert fiscal_range: %w", err)
	}
	return nil
}

func (r *FiscalRangeRepo) GetByID(ctx context.Context, id string) (*entity.FiscalRange, error) {
	const q = `
		SELECT id, document_type, series, start_number, end_number, current_number,
		       expires_at, active, created_at, updated_at
		FROM fiscal_ranges WHERE id = $1`
	fr, err := scanFiscalRange(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal_range by id: %w", err)
	}
	return fr, nil
}

// GetActiveForUpdate es la consulta crítica del asignador de NCF.
// Bloquea la fila del rango activo para serializar asignaciones concurrentes.
// Devuelve nil, nil si no hay rango activo para (tipo, serie).
func (r *FiscalRangeRepo) GetActiveForUpdate(ctx context.Context, documentType, series string) (*entity.FiscalRange, error) {
	const q = `
		SELECT id, document_type, series, start_number, end_number, current_number,
		       expires_at, active, created_at, updated_at
		FROM fiscal_ranges
		WHERE document_type = $1
		  AND series        = $2
		  AND active        = true
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE`
	fr, err := scanFiscalRange(r.q.QueryRow(ctx, q, documentType, series))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active fiscal_range for update: %w", err)
	}
	return fr, nil
}

func (r *FiscalRangeRepo) Update(ctx context.Context, fr *entity.FiscalRange) error {
	const q = `
		UPDATE fiscal_ranges
		SET current_number = $2, expires_at = $3, active = $4, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q, fr.ID, fr.CurrentNumber, fr.ExpiresAt, fr.Active)
	if err != nil {
		return fmt.Errorf("update fiscal_range: %w", err)
	}
	return nil
}

func (r *FiscalRangeRepo) List(ctx context.Context) ([]*entity.FiscalRange, error) {
	const q = `
		SELECT id, document_type, series, start_number, end_number, current_number,
		       expires_at, active, created_at, updated_at
		FROM fiscal_ranges
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list fiscal_ranges: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalRange
	for rows.Next() {
		fr, err := scanFiscalRange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal_range: %w", err)
		}
		list = append(list, fr)
	}
	return list, rows.Err()
}

func scanFiscalRange(row pgxScanner) (*entity.FiscalRange, error) {
	var fr entity.FiscalRange
	err := row.Scan(
		&fr.ID, &fr.DocumentType, &fr.Series,
		&fr.StartNumber, &fr.EndNumber, &fr.CurrentNumber,
		&fr.ExpiresAt, &fr.Active, &fr.CreatedAt, &fr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fr, nil
}
