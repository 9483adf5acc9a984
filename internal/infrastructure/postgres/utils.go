package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/onda-do/registro-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// mapStorageErr clasifica errores transitorios de PostgreSQL como
// ErrStorageUnavailable para que el TxRunner reintente la transacción
// completa: fallos de serialización (40001), deadlocks (40P01) y errores de
// conexión (clase 08). Todo lo demás pasa tal cual.
func mapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001" || pgErr.Code == "40P01":
			return fmt.Errorf("%s: %w", pgErr.Code, domain.ErrStorageUnavailable)
		case strings.HasPrefix(pgErr.Code, "08"):
			return fmt.Errorf("%s: %w", pgErr.Code, domain.ErrStorageUnavailable)
		}
	}
	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%v: %w", err, domain.ErrStorageUnavailable)
	}
	return err
}
