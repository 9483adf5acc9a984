// Package workflow define la máquina de estados de las solicitudes: la tabla
// cerrada de transiciones y las reglas de reingreso tras una devolución. El
// original resolvía estados por nombre contra una tabla de catálogo; aquí la
// enumeración y la tabla se verifican en compilación.
package workflow

import (
	"github.com/onda-do/registro-api/internal/domain/entity"
)

// transitions es la tabla autoritativa: destino permitido por estado origen.
// Toda transición fuera de la tabla se rechaza con ErrInvalidTransition.
var transitions = map[entity.RequestState][]entity.RequestState{
	entity.StatePending:          {entity.StateValidated, entity.StateRejected},
	entity.StateValidated:        {entity.StatePaid, entity.StateRejected, entity.StateReturned},
	entity.StatePaid:             {entity.StateRegistered},
	entity.StateRegistered:       {entity.StatePendingSignature, entity.StateReturned},
	entity.StatePendingSignature: {entity.StateReadyForDelivery, entity.StateReturned},
	entity.StateReadyForDelivery: {entity.StateDelivered},
	entity.StateReturned:         {entity.StateValidated, entity.StateRegistered},
	// DELIVERED y REJECTED son terminales.
}

// CanTransition indica si from -> to está en la tabla.
func CanTransition(from, to entity.RequestState) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no tiene transiciones de salida.
func IsTerminal(s entity.RequestState) bool {
	return len(transitions[s]) == 0
}

// Returnable indica si desde el estado se puede devolver la solicitud al
// solicitante para corrección.
func Returnable(s entity.RequestState) bool {
	return CanTransition(s, entity.StateReturned)
}

// ReentryState resuelve el estado de reingreso tras corregir una devolución:
// la solicitud vuelve al punto desde el que fue devuelta, re-revisándose esa
// etapa (una devolución desde PENDING_SIGNATURE reingresa en REGISTERED, no en
// PENDING). Si la corrección cambió el servicio, el caller fuerza VALIDATED.
func ReentryState(returnedFrom entity.RequestState) (entity.RequestState, bool) {
	switch returnedFrom {
	case entity.StateValidated:
		return entity.StateValidated, true
	case entity.StateRegistered:
		return entity.StateRegistered, true
	case entity.StatePendingSignature:
		return entity.StateRegistered, true
	}
	return "", false
}
