package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/onda-do/registro-api/internal/application/dto"
	"github.com/onda-do/registro-api/internal/domain"
)

// domainError mapea errores de dominio a respuestas HTTP. Los handlers lo usan
// como última rama tras sus validaciones propias.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrPaymentMismatch):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "PAYMENT_MISMATCH", Message: err.Error()})
	case errors.Is(err, domain.ErrRangeExhausted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RANGE_EXHAUSTED", Message: "rango fiscal agotado"})
	case errors.Is(err, domain.ErrRangeExpired):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RANGE_EXPIRED", Message: "rango fiscal vencido"})
	case errors.Is(err, domain.ErrNoActiveRange):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_ACTIVE_RANGE", Message: "no hay rango fiscal activo"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrAmbiguousPricing):
		// Solape de tarifas: integridad del catálogo rota, no un error del cliente.
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "AMBIGUOUS_PRICING", Message: "tarifas en conflicto para el servicio"})
	case errors.Is(err, domain.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacén no disponible, reintente"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "operación no permitida"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
