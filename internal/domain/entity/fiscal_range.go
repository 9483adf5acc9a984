package entity

import "time"

// Tipos de comprobante fiscal (NCF) emitidos por la oficina.
const (
	DocTypeCreditoFiscal = "01" // válido para crédito fiscal
	DocTypeConsumo       = "02" // consumidor final
)

// FiscalRange es un rango de numeración de NCF autorizado por la DGII para un
// (tipo de comprobante, serie). Solo un rango activo por par es elegible para
// asignación; ExpiresAt es exclusivo: vencido el rango no se emiten números
// aunque queden disponibles.
//
// Invariante: StartNumber <= CurrentNumber <= EndNumber. CurrentNumber solo lo
// muta el asignador, dentro de una transacción con la fila bloqueada.
type FiscalRange struct {
	ID            string
	DocumentType  string // "01", "02"
	Series        string // letra de serie autorizada (ej: "B")
	StartNumber   int64
	EndNumber     int64
	CurrentNumber int64
	ExpiresAt     time.Time
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Remaining devuelve cuántos números quedan por emitir en el rango.
func (r *FiscalRange) Remaining() int64 {
	return r.EndNumber - r.CurrentNumber
}

// ExpiredAt indica si el rango está vencido en el instante t (ExpiresAt exclusivo).
func (r *FiscalRange) ExpiredAt(t time.Time) bool {
	return !t.Before(r.ExpiresAt)
}
