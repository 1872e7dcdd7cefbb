package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/klarkent2022/smart-irrigation/internal/services"
	"go.uber.org/zap"
)

// StatusFor maps an error returned by a handler to its HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error as {"detail": ...}. Internal errors are
// logged and their text is not sent to the caller.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		detail := err.Error()
		switch status {
		case fiber.StatusInternalServerError:
			logger.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			detail = "internal server error"
		case fiber.StatusGatewayTimeout:
			detail = "request timed out"
		}
		return c.Status(status).JSON(fiber.Map{"detail": detail})
	}
}
