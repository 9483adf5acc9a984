package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostRecord es una tarifa histórica de un servicio: vigente en el intervalo
// [ValidFrom, ValidUntil). ValidUntil nil significa vigencia abierta; a lo sumo
// un registro abierto por servicio. Los registros no se solapan en el tiempo:
// un solape es una violación de integridad que el catálogo reporta como
// ErrAmbiguousPricing, nunca resuelve en silencio.
type CostRecord struct {
	ID         string
	ServiceID  string
	Price      decimal.Decimal
	ValidFrom  time.Time
	ValidUntil *time.Time
	CreatedAt  time.Time
}

// CoversAt indica si la tarifa está vigente en el instante t.
func (c *CostRecord) CoversAt(t time.Time) bool {
	if t.Before(c.ValidFrom) {
		return false
	}
	return c.ValidUntil == nil || t.Before(*c.ValidUntil)
}
