package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bookshelf_backend/internals/configs"
	bookModel "bookshelf_backend/internals/features/library/books/model"
	authModel "bookshelf_backend/internals/features/users/auth/model"
	userModel "bookshelf_backend/internals/features/users/user/model"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
)

// DSN builds a postgres URL with a server side statement timeout.
func DSN(cfg configs.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + cfg.Port,
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	q.Set("application_name", "bookshelf")
	q.Set("options", "-c statement_timeout=3000")
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectDB opens gorm on the lib/pq driver.
func ConnectDB(cfg configs.DBConfig) (*gorm.DB, error) {
	log.Printf("🔌 Connecting to PostgreSQL %s:%s/%s ...", cfg.Host, cfg.Port, cfg.Name)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        DSN(cfg),
	}), &gorm.Config{
		Logger:                 configs.NewGormLogger(cfg.LogLevel, cfg.SlowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	log.Println("✅ DB connected.")
	return db, nil
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("[WARN] pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// AutoMigrate creates books, users, the book_user join table and
// revoked_tokens.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&userModel.UserModel{}, "Books", &userRepo.OwnershipRow{}); err != nil {
		return fmt.Errorf("setup join table: %w", err)
	}
	if err := db.AutoMigrate(
		&bookModel.BookModel{},
		&userModel.UserModel{},
		&userRepo.OwnershipRow{},
		&authModel.RevokedToken{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Println("✅ schema migrated")
	return nil
}

// WarmUp pings once in the background so the first request finds an open
// connection.
func WarmUp(db *gorm.DB) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			log.Printf("[WARN] warm-up ping err: %v", err)
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
