package route

import (
	"github.com/gofiber/fiber/v2"

	bookController "bookshelf_backend/internals/features/library/books/controller"
)

// Mount with: route.BookPublicRoutes(app.Group("/api/books"), ctl)
// Endpoints:
//   POST /api/books
func BookPublicRoutes(r fiber.Router, ctl *bookController.BooksController) {
	r.Post("/", ctl.Create)
}

// Mount with: route.BookRoutes(protected.Group("/books"), ctl)
// Static segments come before /:id.
func BookRoutes(r fiber.Router, ctl *bookController.BooksController) {
	r.Get("/", ctl.List)
	r.Get("/greeting", ctl.Greeting)
	r.Get("/isbn/:isbn", ctl.FindByISBN)
	r.Get("/:id", ctl.GetByID)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)
}
