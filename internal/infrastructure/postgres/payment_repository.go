package postgres

import (
	"context"
	"fmt"

	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementa PaymentRepository sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	const q = `
		INSERT INTO payments (id, request_id, amount, method, receipt_id, cashier_id, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, q,
		p.ID, p.RequestID, p.Amount, p.Method, p.ReceiptID, p.CashierID, p.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.Payment, error) {
	const q = `
		SELECT id, request_id, amount, method, receipt_id, cashier_id, paid_at
		FROM payments
		WHERE request_id = $1
		ORDER BY paid_at ASC`
	rows, err := r.q.Query(ctx, q, requestID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.RequestID, &p.Amount, &p.Method, &p.ReceiptID, &p.CashierID, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
