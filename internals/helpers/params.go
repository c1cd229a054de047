package helper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/helpers/apperr"
)

// ParamID reads a positive numeric path parameter.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", apperr.ErrInvalidArgument, name, raw)
	}
	return id, nil
}
