package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

var _ repository.CostRecordRepository = (*CostRecordRepo)(nil)

// CostRecordRepo implementa CostRecordRepository sobre PostgreSQL.
type CostRecordRepo struct {
	q Querier
}

// NewCostRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCostRecordRepository(q Querier) *CostRecordRepo {
	return &CostRecordRepo{q: q}
}

func (r *CostRecordRepo) Create(ctx context.Context, c *entity.CostRecord) error {
	const q = `
		INSERT INTO cost_records (id, service_id, price, valid_from, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`
	_, err := r.q.Exec(ctx, q, c.ID, c.ServiceID, c.Price, c.ValidFrom, c.ValidUntil)
	if err != nil {
		return fmt.Errorf("insert cost_record: %w", err)
	}
	return nil
}

// FindCovering devuelve las tarifas que cubren el instante t, intervalo
// [valid_from, valid_until). LIMIT 2: con dos filas ya hay solape y el caso de
// uso falla con ErrAmbiguousPricing, no necesitamos más.
func (r *CostRecordRepo) FindCovering(ctx context.Context, serviceID string, t time.Time) ([]*entity.CostRecord, error) {
	const q = `
		SELECT id, service_id, price, valid_from, valid_until, created_at
		FROM cost_records
		WHERE service_id = $1
		  AND valid_from <= $2
		  AND (valid_until IS NULL OR valid_until > $2)
		LIMIT 2`
	rows, err := r.q.Query(ctx, q, serviceID, t)
	if err != nil {
		return nil, fmt.Errorf("find covering cost_records: %w", err)
	}
	defer rows.Close()
	var list []*entity.CostRecord
	for rows.Next() {
		c, err := scanCostRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cost_record: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetOpenForUpdate bloquea la tarifa abierta (valid_until IS NULL) del servicio.
// Devuelve nil, nil si no existe. Solo dentro de una transacción.
func (r *CostRecordRepo) GetOpenForUpdate(ctx context.Context, serviceID string) (*entity.CostRecord, error) {
	const q = `
		SELECT id, service_id, price, valid_from, valid_until, created_at
		FROM cost_records
		WHERE service_id = $1 AND valid_until IS NULL
		FOR UPDATE`
	c, err := scanCostRecord(r.q.QueryRow(ctx, q, serviceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open cost_record for update: %w", err)
	}
	return c, nil
}

func (r *CostRecordRepo) CloseOpen(ctx context.Context, id string, until time.Time) error {
	const q = `
		UPDATE cost_records SET valid_until = $2
		WHERE id = $1 AND valid_until IS NULL`
	_, err := r.q.Exec(ctx, q, id, until)
	if err != nil {
		return fmt.Errorf("close cost_record: %w", err)
	}
	return nil
}

func (r *CostRecordRepo) ListByService(ctx context.Context, serviceID string) ([]*entity.CostRecord, error) {
	const q = `
		SELECT id, service_id, price, valid_from, valid_until, created_at
		FROM cost_records
		WHERE service_id = $1
		ORDER BY valid_from DESC`
	rows, err := r.q.Query(ctx, q, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list cost_records: %w", err)
	}
	defer rows.Close()
	var list []*entity.CostRecord
	for rows.Next() {
		c, err := scanCostRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cost_record: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCostRecord(row pgxScanner) (*entity.CostRecord, error) {
	var c entity.CostRecord
	err := row.Scan(&c.ID, &c.ServiceID, &c.Price, &c.ValidFrom, &c.ValidUntil, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
