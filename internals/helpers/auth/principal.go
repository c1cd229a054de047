package helper

import (
	"github.com/gofiber/fiber/v2"
)

const LocPrincipal = "principal"

// Principal is the authenticated caller of a request. It carries the username
// only; credentials never travel past the auth middleware.
type Principal struct {
	Username string `json:"username"`
}

func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(LocPrincipal, p)
}

// PrincipalFrom returns the principal stored by the auth middleware.
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(LocPrincipal).(Principal)
	if !ok || p.Username == "" {
		return Principal{}, false
	}
	return p, true
}
