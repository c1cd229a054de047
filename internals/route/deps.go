package routes

import (
	"context"

	"bookshelf_backend/internals/configs"
	bookRepo "bookshelf_backend/internals/features/library/books/repository"
	bookService "bookshelf_backend/internals/features/library/books/service"
	authRepo "bookshelf_backend/internals/features/users/auth/repository"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	ossHelper "bookshelf_backend/internals/helpers/oss"
)

// Deps carries everything the route tree needs. OSS may be nil. Ping
// reports storage health; nil means always healthy.
type Deps struct {
	Config  configs.AppConfig
	Books   bookRepo.Repository
	Users   userRepo.Repository
	Revoked authRepo.RevocationStore
	Remote  bookService.BookFetcher
	OSS     *ossHelper.OSSService
	Ping    func(ctx context.Context) error
}
