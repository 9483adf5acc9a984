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

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

// ServiceRepo implementa ServiceRepository sobre PostgreSQL (usable con pool o tx).
type ServiceRepo struct {
	q Querier
}

// NewServiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

func (r *ServiceRepo) Create(ctx context.Context, s *entity.Service) error {
	const q = `
		INSERT INTO services (id, name, type_code, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.q.Exec(ctx, q, s.ID, s.Name, s.TypeCode, s.Description, s.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert service: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	const q = `
		SELECT id, name, type_code, description, active, created_at, updated_at
		FROM services WHERE id = $1`
	var s entity.Service
	err := r.q.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.Name, &s.TypeCode, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}
	return &s, nil
}

func (r *ServiceRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Service, error) {
	q := `
		SELECT id, name, type_code, description, active, created_at, updated_at
		FROM services`
	if onlyActive {
		q += ` WHERE active = true`
	}
	q += ` ORDER BY name ASC`
	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()
	var list []*entity.Service
	for rows.Next() {
		var s entity.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.TypeCode, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *ServiceRepo) Update(ctx context.Context, s *entity.Service) error {
	const q = `
		UPDATE services
		SET name = $2, type_code = $3, description = $4, active = $5, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q, s.ID, s.Name, s.TypeCode, s.Description, s.Active)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}
