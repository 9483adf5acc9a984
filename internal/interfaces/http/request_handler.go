package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/onda-do/registro-api/internal/application/dto"
	"github.com/onda-do/registro-api/internal/application/workflow"
)

// RequestHandler maneja las solicitudes de registro y sus transiciones.
type RequestHandler struct {
	uc *workflow.UseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(uc *workflow.UseCase) *RequestHandler {
	return &RequestHandler{uc: uc}
}

// Create POST /api/requests
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToRequestResponse(req, ""))
}

// GetByID GET /api/requests/:id
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	req, err := h.uc.GetRequest(c.UserContext(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}

// List GET /api/requests?state=PENDING&limit=20&offset=0
func (h *RequestHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.uc.ListRequests(c.UserContext(), c.Query("state"), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]*dto.RequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ToRequestResponse(r, ""))
	}
	return c.JSON(out)
}

// History GET /api/requests/:id/history
func (h *RequestHandler) History(c *fiber.Ctx) error {
	list, err := h.uc.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToTransitionResponses(list))
}

// Validate POST /api/requests/:id/validate (revisor)
func (h *RequestHandler) Validate(c *fiber.Ctx) error {
	req, err := h.uc.Validate(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}

// Reject POST /api/requests/:id/reject (revisor)
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectInput
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.uc.Reject(c.UserContext(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}

// Pay POST /api/requests/:id/pay (cajero)
func (h *RequestHandler) Pay(c *fiber.Ctx) error {
	var in dto.PayInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, receipt, err := h.uc.Pay(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	ncf := ""
	if receipt != nil {
		ncf = receipt.NCF()
	}
	return c.JSON(dto.ToRequestResponse(req, ncf))
}

// Register POST /api/requests/:id/register (registrador)
func (h *RequestHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.uc.Register(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}

// IssueCertificate POST /api/requests/:id/certificate (registrador)
func (h *RequestHandler) IssueCertificate(c *fiber.Ctx) error {
	req, err := h.uc.IssueCertificate(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}

// AttachSigned POST /api/requests/:id/signed (registrador)
// El cuerpo es el sobre XML firmado tal cual (Content-Type: application/xml).
func (h *RequestHandler) AttachSigned(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "documento firmado requerido"})
	}
	req, err := h.uc.AttachSigned(c.UserContext(), c.Params("id"), GetUserID(c), body)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}

// Deliver POST /api/requests/:id/deliver (registrador)
func (h *RequestHandler) Deliver(c *fiber.Ctx) error {
	var in dto.DeliverInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.uc.Deliver(c.UserContext(), c.Params("id"), GetUserID(c), in.Recipient)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}

// Return POST /api/requests/:id/return (revisor)
func (h *RequestHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.uc.Return(c.UserContext(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}

// Resubmit POST /api/requests/:id/resubmit (revisor)
func (h *RequestHandler) Resubmit(c *fiber.Ctx) error {
	var in dto.ResubmitInput
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.uc.Resubmit(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req, ""))
}
