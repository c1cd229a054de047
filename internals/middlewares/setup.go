package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/configs"
	"bookshelf_backend/internals/middlewares/logger"
)

// SetupMiddlewares installs the app wide chain. Order: recover, request id,
// access log, cors, global limiter.
func SetupMiddlewares(app *fiber.App, cfg configs.AppConfig) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(cfg.RequestTimeout))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware(cfg.CorsAllowOrigins))
	app.Use(GlobalRateLimiter(cfg.RateLimitGlobal))
}
