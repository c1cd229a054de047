// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	fileController "bookshelf_backend/internals/features/files/controller"
	fileRoute "bookshelf_backend/internals/features/files/route"
	bookController "bookshelf_backend/internals/features/library/books/controller"
	bookRoute "bookshelf_backend/internals/features/library/books/route"
	bookService "bookshelf_backend/internals/features/library/books/service"
	authController "bookshelf_backend/internals/features/users/auth/controller"
	authRoute "bookshelf_backend/internals/features/users/auth/route"
	authService "bookshelf_backend/internals/features/users/auth/service"
	userController "bookshelf_backend/internals/features/users/user/controller"
	userRoute "bookshelf_backend/internals/features/users/user/route"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/middlewares"
	authMiddleware "bookshelf_backend/internals/middlewares/auth"
)

// SetupRoutes mounts the whole API. A fiber group with handlers installs
// them for every later route under its prefix, so every public route is
// mounted before the protected /api group is created.
func SetupRoutes(app *fiber.App, deps Deps) {
	cfg := deps.Config
	startTime := time.Now()
	paging := helper.Options{DefaultSize: cfg.PageDefaultSize, MaxSize: cfg.PageMaxSize}

	auth := authService.NewAuthService(deps.Users, deps.Revoked, cfg.JWTSecret, cfg.JWTTTL)

	books := bookController.NewBooksController(deps.Books, bookService.NewLookupService(deps.Books, deps.Remote), paging)
	users := userController.NewUserController(deps.Users, deps.Books, paging, cfg.BcryptCost)
	authCtl := authController.NewAuthController(auth, authService.NewPasswordService(deps.Users, cfg.BcryptCost))
	files := fileController.NewFileController(deps.OSS)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Mounting public routes...")
	BaseRoutes(app, deps.Ping, startTime)
	public := app.Group("/api")
	bookRoute.BookPublicRoutes(public.Group("/books"), books)
	userRoute.UserPublicRoutes(public.Group("/users"), users, middlewares.RegisterRateLimiter(cfg.RateLimitRegister))
	authRoute.AuthRoutes(public.Group("/auth"), authCtl, middlewares.LoginRateLimiter(cfg.RateLimitLogin))
	fileRoute.FileRoutes(public.Group("/files"), files)

	// ===================== PROTECTED =====================
	log.Println("[INFO] Mounting protected routes...")
	protected := app.Group("/api", authMiddleware.RequireAuth(auth))
	bookRoute.BookRoutes(protected.Group("/books"), books)
	userRoute.UserRoutes(protected.Group("/users"), users)
	authRoute.PasswordRoutes(protected.Group("/users"), authCtl)
}
