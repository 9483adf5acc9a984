package dto

import (
	"time"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// CreateRangeInput alta administrativa de un rango NCF autorizado.
type CreateRangeInput struct {
	DocumentType string    `json:"document_type"`
	Series       string    `json:"series"`
	StartNumber  int64     `json:"start_number"`
	EndNumber    int64     `json:"end_number"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AllocateInput emisión manual de un NCF (ventanilla sin pago asociado).
type AllocateInput struct {
	DocumentType  string `json:"document_type"`
	Series        string `json:"series"`
	TransactionID string `json:"transaction_id"`
}

// AnnulInput anulación de un comprobante emitido.
type AnnulInput struct {
	Reason string `json:"reason"`
}

// ReceiptResponse NCF emitido.
type ReceiptResponse struct {
	ID           string    `json:"id"`
	NCF          string    `json:"ncf"`
	DocumentType string    `json:"document_type"`
	Series       string    `json:"series"`
	Number       int64     `json:"number"`
	IssuedAt     time.Time `json:"issued_at"`
	IssuedBy     string    `json:"issued_by"`
	Annulled     bool      `json:"annulled"`
}

// RangeResponse rango NCF para inspección administrativa. NearExhaustion se
// enciende cuando los números restantes caen bajo el margen de alerta
// configurado: aviso para solicitar un rango nuevo a la DGII antes de agotar.
type RangeResponse struct {
	ID             string    `json:"id"`
	DocumentType   string    `json:"document_type"`
	Series         string    `json:"series"`
	StartNumber    int64     `json:"start_number"`
	EndNumber      int64     `json:"end_number"`
	CurrentNumber  int64     `json:"current_number"`
	Remaining      int64     `json:"remaining"`
	NearExhaustion bool      `json:"near_exhaustion"`
	ExpiresAt      time.Time `json:"expires_at"`
	Active         bool      `json:"active"`
}

// ToReceiptResponse mapea un comprobante a su representación HTTP.
func ToReceiptResponse(r *entity.FiscalReceipt) *ReceiptResponse {
	if r == nil {
		return nil
	}
	return &ReceiptResponse{
		ID:           r.ID,
		NCF:          r.NCF(),
		DocumentType: r.DocumentType,
		Series:       r.Series,
		Number:       r.Number,
		IssuedAt:     r.IssuedAt,
		IssuedBy:     r.IssuedBy,
		Annulled:     r.Annulled,
	}
}

// ToRangeResponses mapea los rangos; alertMargin es el umbral de agotamiento próximo.
func ToRangeResponses(list []*entity.FiscalRange, alertMargin int) []RangeResponse {
	out := make([]RangeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, RangeResponse{
			ID:             r.ID,
			DocumentType:   r.DocumentType,
			Series:         r.Series,
			StartNumber:    r.StartNumber,
			EndNumber:      r.EndNumber,
			CurrentNumber:  r.CurrentNumber,
			Remaining:      r.Remaining(),
			NearExhaustion: r.Active && r.Remaining() < int64(alertMargin),
			ExpiresAt:      r.ExpiresAt,
			Active:         r.Active,
		})
	}
	return out
}
