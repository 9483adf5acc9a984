package entity

import (
	"fmt"
	"time"
)

// FiscalReceipt es un NCF emitido. Inmutable una vez creado: el número nunca se
// reutiliza ni se recicla. Anular un comprobante marca Annulled, no libera el
// número (regla de cumplimiento fiscal).
type FiscalReceipt struct {
	ID                 string
	DocumentType       string
	Series             string
	Number             int64
	OwnerTransactionID string // ID del pago que originó el comprobante
	IssuedAt           time.Time
	IssuedBy           string // actor (usuario) que disparó la emisión
	Annulled           bool
	AnnulReason        string
}

// NCF devuelve el número de comprobante completo: serie + tipo + secuencia de 8 dígitos.
// Ej: serie "B", tipo "01", número 123 -> "B0100000123".
func (r *FiscalReceipt) NCF() string {
	return fmt.Sprintf("%s%s%08d", r.Series, r.DocumentType, r.Number)
}
