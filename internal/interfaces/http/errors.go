package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-tracking/internal/application/dto"
	"github.com/jhoicas/inventario-tracking/internal/domain"
)

// writeError traduce los errores de dominio a status HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", "error interno"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, msg = fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrInvalidLocation):
		status, code, msg = fiber.StatusUnprocessableEntity, "INVALID_LOCATION", err.Error()
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, code, msg = fiber.StatusUnprocessableEntity, "INVALID_QUANTITY", err.Error()
	case errors.Is(err, domain.ErrNoOpMove):
		status, code, msg = fiber.StatusConflict, "NOOP_MOVE", domain.ErrNoOpMove.Error()
	case errors.Is(err, domain.ErrConcurrentModification):
		c.Set(fiber.HeaderRetryAfter, "1")
		status, code, msg = fiber.StatusConflict, "CONCURRENT_MODIFICATION", domain.ErrConcurrentModification.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrDuplicate):
		status, code, msg = fiber.StatusConflict, "DUPLICATE", err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, code, msg = fiber.StatusForbidden, "FORBIDDEN", domain.ErrForbidden.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status, code, msg = fiber.StatusGatewayTimeout, "TIMEOUT", "la operación no terminó a tiempo"
	case errors.Is(err, domain.ErrStorageFailure):
		// El detalle del driver no se expone al cliente.
		status, code, msg = fiber.StatusServiceUnavailable, "STORAGE_FAILURE", domain.ErrStorageFailure.Error()
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
