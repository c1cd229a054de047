package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// FromFiberError is the app-wide fiber.ErrorHandler. *fiber.Error keeps its
// code (unknown route, bad method, body limit); everything else goes through
// the apperr status table.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonDomainError(c, err)
}
