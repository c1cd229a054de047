package route

import (
	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/features/files/controller"
)

// Mount with: route.FileRoutes(app.Group("/api/files"), ctl)
//   POST /api/files
//   GET  /api/files?key=
func FileRoutes(r fiber.Router, ctl *controller.FileController) {
	r.Post("/", ctl.PresignUpload)
	r.Get("/", ctl.PresignDownload)
}
