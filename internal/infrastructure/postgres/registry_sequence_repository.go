package postgres

import (
	"context"
	"fmt"

	"github.com/onda-do/registro-api/internal/domain/repository"
)

var _ repository.RegistrySequenceRepository = (*RegistrySequenceRepo)(nil)

// RegistrySequenceRepo implementa la asignación de consecutivos de
// asentamiento por (tipo, año) sobre PostgreSQL.
type RegistrySequenceRepo struct {
	q Querier
}

// NewRegistrySequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRegistrySequenceRepository(q Querier) *RegistrySequenceRepo {
	return &RegistrySequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo en una sola sentencia
// (upsert-incremento): dos asentamientos concurrentes del mismo tipo y año
// nunca reciben el mismo número, sin ventana leer-luego-escribir.
func (r *RegistrySequenceRepo) Next(ctx context.Context, typeCode string, year int) (int64, error) {
	const q = `
		INSERT INTO registry_sequences (type_code, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (type_code, year)
		DO UPDATE SET last_number = registry_sequences.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, q, typeCode, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next registry sequence %s-%d: %w", typeCode, year, err)
	}
	return n, nil
}
