package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

// requestError error de entrada detectado antes de llegar al caso de uso.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

// errorStatus traduce errores de dominio a status HTTP y código estable.
func errorStatus(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return fiber.StatusBadRequest, reqErr.code
	case errors.Is(err, domain.ErrNothingToInvoice):
		return fiber.StatusUnprocessableEntity, "NOTHING_TO_INVOICE"
	case errors.Is(err, domain.ErrInvalidArgument):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusConflict, "INVALID_STATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// fail escribe el error como dto.ErrorResponse. Los 500 no exponen el detalle.
func fail(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		if log, ok := c.Locals(localLogger).(*logger.Logger); ok {
			log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		}
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// ErrorHandler manejador global de Fiber para errores no tratados por los handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return fail(c, err)
}
