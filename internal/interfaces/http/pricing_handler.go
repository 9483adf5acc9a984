package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/onda-do/registro-api/internal/application/dto"
	"github.com/onda-do/registro-api/internal/application/pricing"
)

// PricingHandler maneja el catálogo de tarifas por servicio.
type PricingHandler struct {
	uc *pricing.UseCase
}

// NewPricingHandler construye el handler.
func NewPricingHandler(uc *pricing.UseCase) *PricingHandler {
	return &PricingHandler{uc: uc}
}

// GetPrice GET /api/services/:id/price?at=2026-01-15T00:00:00Z
// Sin "at" devuelve la tarifa vigente ahora.
func (h *PricingHandler) GetPrice(c *fiber.Ctx) error {
	serviceID := c.Params("id")
	at := time.Now()
	if q := c.Query("at"); q != "" {
		t, err := time.Parse(time.RFC3339, q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "at debe ser RFC3339"})
		}
		at = t
	}
	price, err := h.uc.PriceAt(c.UserContext(), serviceID, at)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.PriceResponse{ServiceID: serviceID, Price: price, At: at})
}

// SetPrice PUT /api/services/:id/price (admin)
func (h *PricingHandler) SetPrice(c *fiber.Ctx) error {
	var in dto.SetPriceInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Price.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "price no puede ser negativo"})
	}
	effectiveFrom := in.EffectiveFrom
	if effectiveFrom.IsZero() {
		effectiveFrom = time.Now()
	}
	rec, err := h.uc.SetPrice(c.UserContext(), c.Params("id"), in.Price, effectiveFrom)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CostRecordResponse{
		ID:         rec.ID,
		ServiceID:  rec.ServiceID,
		Price:      rec.Price,
		ValidFrom:  rec.ValidFrom,
		ValidUntil: rec.ValidUntil,
	})
}

// History GET /api/services/:id/price/history
func (h *PricingHandler) History(c *fiber.Ctx) error {
	list, err := h.uc.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToCostRecordResponses(list))
}
