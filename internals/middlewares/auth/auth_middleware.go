// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"encoding/base64"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/features/users/auth/service"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
	helperAuth "bookshelf_backend/internals/helpers/auth"
)

const challenge = `Basic realm="bookshelf", Bearer`

var errMalformedBasic = errors.New("malformed basic credentials")

// RequireAuth accepts HTTP Basic credentials checked against the stored
// bcrypt hash, or a Bearer token issued by /api/auth/login. On success the
// principal is stored in locals; otherwise the request ends with 401.
func RequireAuth(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, value, ok := helperAuth.Credentials(c)
		if !ok {
			return reject(c, apperr.ErrUnauthorized)
		}

		var (
			p   helperAuth.Principal
			err error
		)
		switch strings.ToLower(scheme) {
		case "basic":
			username, password, perr := decodeBasic(value)
			if perr != nil {
				return reject(c, perr)
			}
			p, err = auth.Authenticate(c.UserContext(), username, password)
		case "bearer":
			p, err = auth.ParseToken(c.UserContext(), value)
		default:
			return reject(c, apperr.ErrUnauthorized)
		}
		if err != nil {
			if apperr.KindOf(err) != apperr.KindUnauthorized {
				log.Printf("[ERROR] [AUTH] %s %s: %v", c.Method(), c.Path(), err)
				return helper.JsonDomainError(c, err)
			}
			return reject(c, err)
		}

		helperAuth.SetPrincipal(c, p)
		return c.Next()
	}
}

func decodeBasic(value string) (string, string, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", "", errors.Join(apperr.ErrUnauthorized, errMalformedBasic)
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok || username == "" {
		return "", "", errors.Join(apperr.ErrUnauthorized, errMalformedBasic)
	}
	return username, password, nil
}

func reject(c *fiber.Ctx, err error) error {
	c.Set(fiber.HeaderWWWAuthenticate, challenge)
	return helper.JsonDomainError(c, err)
}
