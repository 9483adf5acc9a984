package repository

import (
	"context"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// AuditRepository define el puerto del historial de transiciones. Append-only:
// las entradas nunca se actualizan ni se borran. Solo el workflow escribe aquí.
type AuditRepository interface {
	Append(ctx context.Context, t *entity.StateTransition) error

	// History devuelve las transiciones de una solicitud en orden cronológico,
	// para revisión de cumplimiento.
	History(ctx context.Context, requestID string) ([]*entity.StateTransition, error)
}

// RegistrySequenceRepository asigna números de registro (asentamiento) por
// (tipo, año). La asignación es atómica a nivel de base de datos: un
// upsert-incremento en una sola sentencia, sin ventana leer-luego-escribir.
type RegistrySequenceRepository interface {
	// Next devuelve el siguiente consecutivo para el tipo y año dados.
	Next(ctx context.Context, typeCode string, year int) (int64, error)
}
