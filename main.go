package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"bookshelf_backend/internals/configs"
	database "bookshelf_backend/internals/databases"
	bookRepo "bookshelf_backend/internals/features/library/books/repository"
	bookService "bookshelf_backend/internals/features/library/books/service"
	authRepo "bookshelf_backend/internals/features/users/auth/repository"
	scheduler "bookshelf_backend/internals/features/users/auth/scheduler"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	helper "bookshelf_backend/internals/helpers"
	ossHelper "bookshelf_backend/internals/helpers/oss"
	middlewares "bookshelf_backend/internals/middlewares"
	routes "bookshelf_backend/internals/route"
	"bookshelf_backend/internals/seeds"
)

// storage bundles the repositories of one driver.
type storage struct {
	books   bookRepo.Repository
	users   userRepo.Repository
	revoked authRepo.RevocationStore
	ping    func(ctx context.Context) error
	close   func()
}

func openStorage(cfg configs.AppConfig) (*storage, error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Println("⚠️ STORAGE_DRIVER=memory, data is lost on restart")
		books := bookRepo.NewMemoryRepository()
		users := userRepo.NewMemoryRepository(books)
		books.OnDelete = users.UnlinkBook
		return &storage{
			books:   books,
			users:   users,
			revoked: authRepo.NewMemoryRevocationStore(),
			close:   func() {},
		}, nil
	case "postgres", "":
		db, err := database.ConnectDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		database.TunePool(db)
		if cfg.DB.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				database.Close(db)
				return nil, err
			}
		}
		database.WarmUp(db)
		return &storage{
			books:   bookRepo.NewGormRepository(db),
			users:   userRepo.NewGormRepository(db),
			revoked: authRepo.NewGormRevocationStore(db),
			ping:    func(ctx context.Context) error { return database.Ping(ctx, db) },
			close:   func() { database.Close(db) },
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func main() {
	configs.LoadEnv()
	cfg := configs.FromEnv()

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("❌ storage: %v", err)
	}
	defer store.close()

	// bookshelf seed <dir>
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		dir := "internals/seeds/testdata"
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		runner := seeds.Runner{Books: store.books, Users: store.users, BcryptCost: cfg.BcryptCost}
		if _, err := runner.RunAll(context.Background(), dir); err != nil {
			log.Fatalf("❌ seed: %v", err)
		}
		return
	}

	shutdownTracing, err := configs.InitTracing(context.Background(), cfg)
	if err != nil {
		log.Printf("⚠️ tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	var files *ossHelper.OSSService
	if cfg.OSS.Configured() {
		if files, err = ossHelper.NewOSSService(cfg.OSS); err != nil {
			log.Printf("⚠️ object storage disabled: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          helper.FromFiberError,
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, cfg)

	routes.SetupRoutes(app, routes.Deps{
		Config:  cfg,
		Books:   store.books,
		Users:   store.users,
		Revoked: store.revoked,
		Remote:  bookService.NewOpenLibraryClient(cfg.OpenLibrary),
		OSS:     files,
		Ping:    store.ping,
	})

	bg, stopBackground := context.WithCancel(context.Background())
	cleanupDone := scheduler.StartRevocationCleanup(bg, store.revoked, time.Hour)

	go func() {
		log.Printf("✅ Listening on :%s (storage=%s)", cfg.Port, storageName(cfg, store))
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	stopBackground()
	<-cleanupDone
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("[WARN] tracing shutdown: %v", err)
	}
}

func storageName(cfg configs.AppConfig, s *storage) string {
	if s.ping == nil {
		return "memory"
	}
	return "postgres " + cfg.DB.Host
}
