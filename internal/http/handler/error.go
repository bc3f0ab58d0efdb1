package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"fuelapi/internal/apperr"
	"fuelapi/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps a service failure to a response by its apperr kind.
// Causes are logged, never returned to the caller.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", validationMessage(err))
	case apperr.KindNotFound:
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "fuel record not found")
	case apperr.KindUnauthorized:
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case apperr.KindRateLimited:
		return writeError(c, fiber.StatusTooManyRequests, "DUPLICATE_UPLOAD", "duplicate upload, please wait before retrying")
	}

	zap.L().Error("request_failed",
		zap.String("request_id", requestIDFromCtx(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("kind", apperr.KindOf(err).String()),
		zap.Error(err),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// validationMessage exposes the innermost message of a validation failure.
// Validation errors are built from caller input, so they are safe to echo.
func validationMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return "invalid request"
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else if apperr.KindOf(err) != apperr.KindUnknown {
			return writeServiceError(c, err)
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "TOO_MANY_REQUESTS", "too many requests")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
