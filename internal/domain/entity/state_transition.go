package entity

import "time"

// StateTransition es una entrada del historial de auditoría: un cambio de
// estado de una solicitud, con el actor que lo ejecutó. Append-only e
// inmutable; cada transición exitosa produce exactamente una entrada, escrita
// en la misma transacción que la mutación del estado.
type StateTransition struct {
	ID        string
	RequestID string
	FromState RequestState
	ToState   RequestState
	Actor     string
	Reason    *string
	CreatedAt time.Time
}
