package route

import (
	"github.com/gofiber/fiber/v2"

	userController "bookshelf_backend/internals/features/users/user/controller"
)

// Mount with: route.UserPublicRoutes(app.Group("/api/users"), ctl, limiter)
//   POST /api/users  (registration)
// mw runs on this route only.
func UserPublicRoutes(r fiber.Router, ctl *userController.UserController, mw ...fiber.Handler) {
	r.Post("/", append(mw, ctl.Create)...)
}

// Mount with: route.UserRoutes(protected.Group("/users"), ctl)
// /self is registered before /:id.
func UserRoutes(r fiber.Router, ctl *userController.UserController) {
	r.Get("/", ctl.List)
	r.Get("/self", ctl.Self)
	r.Get("/:id", ctl.GetByID)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)

	r.Put("/:userId/books/:bookId", ctl.AddBook)
	r.Delete("/:userId/books/:bookId", ctl.RemoveBook)
}
