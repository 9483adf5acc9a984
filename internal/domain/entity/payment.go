package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en caja.
const (
	PaymentMethodEfectivo      = "EFECTIVO"
	PaymentMethodTarjeta       = "TARJETA"
	PaymentMethodTransferencia = "TRANSFERENCIA"
)

// Payment es el pago de una solicitud registrado en caja. Se persiste en la
// misma transacción que el cambio VALIDATED -> PAID: o se confirman ambos o
// ninguno.
type Payment struct {
	ID        string
	RequestID string
	Amount    decimal.Decimal
	Method    string
	ReceiptID *string // NCF asociado, si el pagador lo solicitó
	CashierID string
	PaidAt    time.Time
}
