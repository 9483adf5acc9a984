package entity

import "time"

// Códigos de tipo para la numeración de registro (TYPE-YYYY-NNNN).
const (
	TypeCodeObra = "OBRA" // registro de obra artística
	TypeCodeIRC  = "IRC"  // registro de categoría empresarial IRC
)

// Service es un trámite que la oficina cobra y certifica (registro de obra
// musical, certificación IRC de importador, etc). TypeCode determina el prefijo
// del número de registro asignado en el asentamiento.
type Service struct {
	ID          string
	Name        string
	TypeCode    string // "OBRA" | "IRC"
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
