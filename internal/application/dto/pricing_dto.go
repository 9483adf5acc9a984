package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// SetPriceInput cambio de tarifa de un servicio (admin).
type SetPriceInput struct {
	Price         decimal.Decimal `json:"price"`
	EffectiveFrom time.Time       `json:"effective_from"`
}

// PriceResponse tarifa resuelta para un instante.
type PriceResponse struct {
	ServiceID string          `json:"service_id"`
	Price     decimal.Decimal `json:"price"`
	At        time.Time       `json:"at"`
}

// CostRecordResponse una tarifa del histórico.
type CostRecordResponse struct {
	ID         string          `json:"id"`
	ServiceID  string          `json:"service_id"`
	Price      decimal.Decimal `json:"price"`
	ValidFrom  time.Time       `json:"valid_from"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
}

// ToCostRecordResponses mapea el histórico de tarifas.
func ToCostRecordResponses(list []*entity.CostRecord) []CostRecordResponse {
	out := make([]CostRecordResponse, 0, len(list))
	for _, c := range list {
		out = append(out, CostRecordResponse{
			ID:         c.ID,
			ServiceID:  c.ServiceID,
			Price:      c.Price,
			ValidFrom:  c.ValidFrom,
			ValidUntil: c.ValidUntil,
		})
	}
	return out
}
