package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-do/registro-api/internal/application/dto"
	"github.com/onda-do/registro-api/internal/application/fiscal"
	"github.com/onda-do/registro-api/internal/domain/entity"
)

// FiscalHandler maneja rangos NCF y comprobantes (administrativo).
type FiscalHandler struct {
	uc          *fiscal.UseCase
	alertMargin int
}

// NewFiscalHandler construye el handler; alertMargin es el umbral de números
// restantes bajo el cual un rango se reporta próximo a agotarse.
func NewFiscalHandler(uc *fiscal.UseCase, alertMargin int) *FiscalHandler {
	return &FiscalHandler{uc: uc, alertMargin: alertMargin}
}

// CreateRange POST /api/fiscal/ranges (admin)
func (h *FiscalHandler) CreateRange(c *fiber.Ctx) error {
	var in dto.CreateRangeInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	r, err := h.uc.CreateRange(c.UserContext(), fiscal.CreateRangeInput{
		DocumentType: in.DocumentType,
		Series:       in.Series,
		StartNumber:  in.StartNumber,
		EndNumber:    in.EndNumber,
		ExpiresAt:    in.ExpiresAt,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToRangeResponses([]*entity.FiscalRange{r}, h.alertMargin)[0])
}

// ListRanges GET /api/fiscal/ranges (admin)
func (h *FiscalHandler) ListRanges(c *fiber.Ctx) error {
	list, err := h.uc.ListRanges(c.UserContext())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRangeResponses(list, h.alertMargin))
}

// Allocate POST /api/fiscal/receipts (cajero; emisión manual de ventanilla)
func (h *FiscalHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	receipt, err := h.uc.Allocate(c.UserContext(), in.DocumentType, in.Series, GetUserID(c), in.TransactionID)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToReceiptResponse(receipt))
}

// GetReceipt GET /api/fiscal/receipts/:id
func (h *FiscalHandler) GetReceipt(c *fiber.Ctx) error {
	receipt, err := h.uc.GetReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToReceiptResponse(receipt))
}

// Annul POST /api/fiscal/receipts/:id/annul (admin)
func (h *FiscalHandler) Annul(c *fiber.Ctx) error {
	var in dto.AnnulInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Annul(c.UserContext(), c.Params("id"), in.Reason); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
