package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Credentials splits the Authorization header into scheme and value. Split
// on any whitespace and tolerate quoted values. An access_token cookie is
// read as a Bearer token when the header is absent.
func Credentials(c *fiber.Ctx) (scheme, value string, ok bool) {
	raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if raw == "" {
		if tok := c.Cookies("access_token"); tok != "" {
			return "Bearer", tok, true
		}
		return "", "", false
	}
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return "", "", false
	}
	value = strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if value == "" {
		return "", "", false
	}
	return fields[0], value, true
}

// BearerToken returns the token of a Bearer Authorization header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	scheme, value, ok := Credentials(c)
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return value, true
}
