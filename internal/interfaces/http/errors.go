package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/dto"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
)

// respondError traduce los errores de dominio a códigos HTTP. Los wrappers con
// detalle (transición, stock, bloqueo) conservan su mensaje; cualquier error no
// reconocido es un 500 genérico.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrBatchLocked):
		return c.Status(fiber.StatusLocked).JSON(dto.ErrorResponse{Code: "BATCH_LOCKED", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyTerminal):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// operatorID lee la identidad del operador del header X-Operator. La
// autenticación ocurre aguas arriba; aquí solo se propaga la identidad hacia
// el libro mayor y la auditoría.
func operatorID(c *fiber.Ctx) string {
	return c.Get("X-Operator")
}
