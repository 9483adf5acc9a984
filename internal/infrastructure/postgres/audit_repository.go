package postgres

import (
	"context"
	"fmt"

	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementa AuditRepository sobre PostgreSQL. La tabla es
// append-only: no hay UPDATE ni DELETE en este adaptador.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Append(ctx context.Context, t *entity.StateTransition) error {
	const q = `
		INSERT INTO state_transitions (id, request_id, from_state, to_state, actor, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, q,
		t.ID, t.RequestID, t.FromState, t.ToState, t.Actor, t.Reason, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert state_transition: %w", err)
	}
	return nil
}

func (r *AuditRepo) History(ctx context.Context, requestID string) ([]*entity.StateTransition, error) {
	const q = `
		SELECT id, request_id, from_state, to_state, actor, reason, created_at
		FROM state_transitions
		WHERE request_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, q, requestID)
	if err != nil {
		return nil, fmt.Errorf("list state_transitions: %w", err)
	}
	defer rows.Close()
	var list []*entity.StateTransition
	for rows.Next() {
		var t entity.StateTransition
		if err := rows.Scan(&t.ID, &t.RequestID, &t.FromState, &t.ToState, &t.Actor, &t.Reason, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan state_transition: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
