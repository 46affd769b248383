package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"doctools/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Success:   false,
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Errors that are not *fiber.Error are unexpected: they are logged with detail and the
// client gets a generic 500.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "file too large")
		default:
			logger.Error("request_failed",
				slog.String("request_id", middleware.GetRequestID(c)),
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
