// file: internals/helpers/json_response.go
package helper

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/helpers/apperr"
)

/* ===============================
   Error helpers (standard shape)
=================================*/

type ErrorResponse struct {
	Success   bool                `json:"success"`
	Status    int                 `json:"status"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

func statusToErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusNotAcceptable:
		return "PARSE_FAILURE"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusFailedDependency:
		return "DEPENDENCY_FAILURE"
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	case fiber.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		if status >= 500 {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}

// JsonError: error generic (bukan validasi)
func JsonError(c *fiber.Ctx, status int, message string) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	if strings.TrimSpace(message) == "" {
		message = fiber.NewError(status).Message
	}
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Status:    status,
		Message:   message,
		ErrorCode: statusToErrorCode(status),
	})
}

// JsonValidationError answers 400 with the offending fields.
func JsonValidationError(c *fiber.Ctx, fieldErrors map[string][]string) error {
	if fieldErrors == nil {
		fieldErrors = map[string][]string{}
	}
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Success:   false,
		Status:    fiber.StatusBadRequest,
		Message:   "validation failed",
		ErrorCode: "VALIDATION_ERROR",
		Errors:    fieldErrors,
	})
}

// JsonDomainError renders err through the apperr status table.
// Internal errors are logged and never echoed to the client.
func JsonDomainError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := apperr.StatusOf(err)
	message := err.Error()
	if kind == apperr.KindInternal {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
		message = "internal server error"
	}
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Status:    status,
		Message:   message,
		ErrorCode: kind.String(),
	})
}

/* ===============================
   JSON responses (standard success)
=================================*/

// JsonOK: 200 with the resource itself as body
func JsonOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// JsonCreated: 201 with the created resource as body
func JsonCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// JsonDeleted: response sukses delete (DELETE)
func JsonDeleted(c *fiber.Ctx, message string) error {
	if strings.TrimSpace(message) == "" {
		message = "deleted"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}
