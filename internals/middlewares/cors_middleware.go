// middlewares/cors.go

package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware takes a comma separated origin list; "*" allows any origin
// without credentials.
func CorsMiddleware(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Content-Type",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: origins != "*",
	}
	if origins == "" {
		cfg.AllowOrigins = "*"
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}
