package http

import (
	"errors"

	"cv-builder/internal/apperr"
	"cv-builder/internal/auth"
	"cv-builder/internal/editor"
	"cv-builder/internal/render"
	"cv-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// classify maps an error onto a status code and JSON body.
func classify(err error) (int, fiber.Map) {
	var (
		ve *apperr.ValidationError
		ue *apperr.UploadError
		pe *apperr.PersistenceError
		ee *apperr.ExportError
		xe *apperr.ExternalServiceError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return fiber.StatusUnprocessableEntity, fiber.Map{"error": "validation failed", "fields": ve.Fields}
	case errors.As(err, &ue):
		if ue.TooLarge {
			return fiber.StatusRequestEntityTooLarge, fiber.Map{"error": ue.Reason}
		}
		return fiber.StatusBadRequest, fiber.Map{"error": ue.Reason}
	case errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, editor.ErrUnknownPath),
		errors.Is(err, editor.ErrReadOnlyPath),
		errors.Is(err, render.ErrUnknownTemplate),
		errors.Is(err, usecase.ErrUnknownFormat):
		return fiber.StatusBadRequest, fiber.Map{"error": err.Error()}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrRevoked):
		return fiber.StatusUnauthorized, fiber.Map{"error": "unauthorized"}
	case errors.As(err, &ee):
		return fiber.StatusInternalServerError, fiber.Map{"error": "export failed", "stage": ee.Stage}
	case errors.As(err, &pe):
		return fiber.StatusServiceUnavailable, fiber.Map{"error": "storage unavailable"}
	case errors.As(err, &xe):
		return fiber.StatusBadGateway, fiber.Map{"error": "ai service unavailable"}
	case errors.As(err, &fe):
		return fe.Code, fiber.Map{"error": fe.Message}
	}
	return fiber.StatusInternalServerError, fiber.Map{"error": "internal error"}
}

// ErrorHandler is the fiber error handler. Server-side failures are logged
// with their cause; clients only see the mapped message.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}
		return c.Status(status).JSON(body)
	}
}
