package domain

import (
	"errors"
	"fmt"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// ErrInvalidTransition: la transición solicitada no está en la tabla del
	// workflow. Nunca se corrige en silencio; se propaga con origen y destino.
	ErrInvalidTransition = errors.New("transición de estado no permitida")

	// ErrAmbiguousPricing: hay más de una tarifa vigente para el mismo servicio
	// en el mismo instante. Violación de integridad de datos, fatal: la resuelve
	// un operador, nunca el código.
	ErrAmbiguousPricing = errors.New("tarifas solapadas para el servicio")

	ErrRangeExhausted  = errors.New("rango fiscal agotado")
	ErrRangeExpired    = errors.New("rango fiscal vencido")
	ErrNoActiveRange   = errors.New("no hay rango fiscal activo")
	ErrPaymentMismatch = errors.New("el monto no coincide con la tarifa vigente")

	// ErrStorageUnavailable: fallo transitorio de la capa de datos. Único error
	// elegible para reintento automático, y siempre de la transacción completa.
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
)

// TransitionError detalla una transición rechazada: estado actual y destino
// intentado. errors.Is(err, ErrInvalidTransition) lo identifica.
type TransitionError struct {
	From entity.RequestState
	To   entity.RequestState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición de estado no permitida: %s → %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
