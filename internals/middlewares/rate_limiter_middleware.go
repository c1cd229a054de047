package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter allows max requests per window and client IP. max <= 0
// disables limiting.
func RateLimiter(max int, window time.Duration, message string) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":    "TOO_MANY_REQUESTS",
				"message": message,
			})
		},
	})
}

// Global limiter for every endpoint.
func GlobalRateLimiter(max int) fiber.Handler {
	return RateLimiter(max, time.Minute, "Too many requests. Try again later.")
}

// Stricter limiter for the login route.
func LoginRateLimiter(max int) fiber.Handler {
	return RateLimiter(max, time.Minute, "Too many login attempts. Try again in a minute.")
}

// Limiter for registration (POST /api/users).
func RegisterRateLimiter(max int) fiber.Handler {
	return RateLimiter(max, 5*time.Minute, "Too many registrations. Wait a few minutes.")
}
