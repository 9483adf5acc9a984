package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

const requestColumns = `
	id, service_id, applicant, work_title, title_normalized, state, amount_due,
	receipt_id, registry_number, book_number, page_number, returned_from,
	certificate_path, signed_path, delivered_at, delivered_to, created_at, updated_at`

// RequestRepo implementa RequestRepository sobre PostgreSQL (usable con pool o tx).
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

func (r *RequestRepo) Create(ctx context.Context, req *entity.Request) error {
	const q = `
		INSERT INTO requests
			(id, service_id, applicant, work_title, title_normalized, state, amount_due, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, q,
		req.ID, req.ServiceID, req.Applicant, req.WorkTitle, req.TitleNormalized,
		req.State, req.AmountDue, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	req, err := scanRequest(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request by id: %w", err)
	}
	return req, nil
}

// GetForUpdate bloquea la fila de la solicitud. Toda transición arranca aquí:
// el bloqueo serializa transiciones concurrentes sobre la misma solicitud.
func (r *RequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request for update: %w", err)
	}
	return req, nil
}

func (r *RequestRepo) Update(ctx context.Context, req *entity.Request) error {
	const q = `
		UPDATE requests
		SET service_id = $2, state = $3, amount_due = $4, receipt_id = $5,
		    registry_number = $6, book_number = $7, page_number = $8,
		    returned_from = $9, certificate_path = $10, signed_path = $11,
		    delivered_at = $12, delivered_to = $13, updated_at = $14
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q,
		req.ID, req.ServiceID, req.State, req.AmountDue, req.ReceiptID,
		req.RegistryNumber, req.BookNumber, req.PageNumber,
		req.ReturnedFrom, req.CertificatePath, req.SignedPath,
		req.DeliveredAt, req.DeliveredTo, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

func (r *RequestRepo) List(ctx context.Context, state string, limit, offset int) ([]*entity.Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := `SELECT ` + requestColumns + ` FROM requests`
	args := []any{}
	if state != "" {
		q += ` WHERE state = $1`
		args = append(args, state)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

func scanRequest(row pgxScanner) (*entity.Request, error) {
	var req entity.Request
	var returnedFrom *string
	err := row.Scan(
		&req.ID, &req.ServiceID, &req.Applicant, &req.WorkTitle, &req.TitleNormalized,
		&req.State, &req.AmountDue,
		&req.ReceiptID, &req.RegistryNumber, &req.BookNumber, &req.PageNumber,
		&returnedFrom, &req.CertificatePath, &req.SignedPath,
		&req.DeliveredAt, &req.DeliveredTo, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if returnedFrom != nil {
		st := entity.RequestState(*returnedFrom)
		req.ReturnedFrom = &st
	}
	return &req, nil
}
