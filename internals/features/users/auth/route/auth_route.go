// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	controller "bookshelf_backend/internals/features/users/auth/controller"
)

// Mount with: route.AuthRoutes(app.Group("/api/auth"), ctl, loginLimiter)
//   POST /api/auth/login
//   POST /api/auth/logout
func AuthRoutes(r fiber.Router, ctl *controller.AuthController, loginLimiter fiber.Handler) {
	if loginLimiter != nil {
		r.Post("/login", loginLimiter, ctl.Login)
	} else {
		r.Post("/login", ctl.Login)
	}
	r.Post("/logout", ctl.Logout)
}

// Mount with: route.PasswordRoutes(protected.Group("/users"), ctl)
//   PATCH /api/users/:userId/password
func PasswordRoutes(r fiber.Router, ctl *controller.AuthController) {
	r.Patch("/:userId/password", ctl.ChangePassword)
}
