package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestState es el estado de una solicitud dentro del flujo de registro.
// Enumeración cerrada: la tabla de transiciones vive en internal/domain/workflow
// y cualquier transición no listada ahí se rechaza con ErrInvalidTransition.
type RequestState string

const (
	StatePending          RequestState = "PENDING"
	StateValidated        RequestState = "VALIDATED"
	StatePaid             RequestState = "PAID"
	StateRegistered       RequestState = "REGISTERED"
	StatePendingSignature RequestState = "PENDING_SIGNATURE"
	StateReadyForDelivery RequestState = "READY_FOR_DELIVERY"
	StateDelivered        RequestState = "DELIVERED"
	StateRejected         RequestState = "REJECTED"
	StateReturned         RequestState = "RETURNED"
)

// Valid indica si s es uno de los estados conocidos.
func (s RequestState) Valid() bool {
	switch s {
	case StatePending, StateValidated, StatePaid, StateRegistered,
		StatePendingSignature, StateReadyForDelivery, StateDelivered,
		StateRejected, StateReturned:
		return true
	}
	return false
}

// Request es una solicitud de registro/certificación. La única vía de mutación
// de State son las transiciones del workflow; los campos asociados a cada etapa
// (ReceiptID, RegistryNumber, libro/folio, rutas de documentos) se escriben en
// la misma transacción que el cambio de estado.
type Request struct {
	ID              string
	ServiceID       string
	Applicant       string // nombre del solicitante (persona o empresa)
	WorkTitle       string // título de la obra o razón social IRC
	TitleNormalized string // WorkTitle sin tildes, para búsqueda en el registro
	State           RequestState
	AmountDue       decimal.Decimal
	ReceiptID       *string // NCF emitido al pagar, si el pagador lo solicitó
	RegistryNumber  *string // TYPE-YYYY-NNNN, asignado en el asentamiento
	BookNumber      *string // referencia manual de libro
	PageNumber      *string // referencia manual de folio
	ReturnedFrom    *RequestState
	CertificatePath *string // PDF del certificado sin firmar
	SignedPath      *string // documento firmado adjuntado
	DeliveredAt     *time.Time
	DeliveredTo     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
