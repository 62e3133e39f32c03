package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"atlasdocs/internal/audit"
	"atlasdocs/internal/http/middleware"
	"atlasdocs/internal/service"
)

// errorPayload is the error response body. Messages are short and never carry
// internal details.
type errorPayload struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	msgUnauthorized   = "Unauthorized"
	msgFileRequired   = "File is required"
	msgNotFound       = "Document not found"
	msgInvalidBody    = "Invalid request body"
	msgListFailed     = "Cannot read documents"
	msgUploadFailed   = "Upload failed"
	msgUpdateFailed   = "Update failed"
	msgDeleteFailed   = "Delete failed"
	msgLogFailed      = "Failed to record event"
	msgUnavailable    = "Dependency unavailable"
	msgInternalServer = "Internal server error"
)

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		RequestID: middleware.RequestIDFromCtx(c),
	})
}

// writeServiceError maps service and audit sentinels to a status. Anything
// unrecognised becomes a 500 with fallback as the message.
func writeServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return writeError(c, fiber.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, service.ErrMissingFile):
		return writeError(c, fiber.StatusBadRequest, msgFileRequired)
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, msgNotFound)
	case errors.Is(err, service.ErrInvalidInput):
		return writeError(c, fiber.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, audit.ErrMissingAction):
		return writeError(c, fiber.StatusBadRequest, audit.ErrMissingAction.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, fallback)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return writeError(c, fiber.StatusBadRequest, "Bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "Not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "Method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "File too large")
		default:
			return writeError(c, fiber.StatusInternalServerError, msgInternalServer)
		}
	}
}
