package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-do/registro-api/internal/application/catalog"
	"github.com/onda-do/registro-api/internal/application/dto"
)

// ServiceHandler maneja el catálogo de trámites.
type ServiceHandler struct {
	uc *catalog.ServiceUseCase
}

// NewServiceHandler construye el handler.
func NewServiceHandler(uc *catalog.ServiceUseCase) *ServiceHandler {
	return &ServiceHandler{uc: uc}
}

// Create POST /api/services (admin)
func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var in catalog.CreateServiceInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	svc, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(svc)
}

// List GET /api/services?active=true
func (h *ServiceHandler) List(c *fiber.Ctx) error {
	onlyActive := c.Query("active") == "true"
	list, err := h.uc.List(c.UserContext(), onlyActive)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/services/:id
func (h *ServiceHandler) GetByID(c *fiber.Ctx) error {
	svc, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(svc)
}

// SetActive PATCH /api/services/:id/active (admin)
func (h *ServiceHandler) SetActive(c *fiber.Ctx) error {
	var in struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	svc, err := h.uc.SetActive(c.UserContext(), c.Params("id"), in.Active)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(svc)
}
