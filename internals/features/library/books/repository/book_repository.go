// file: internals/features/library/books/repository/book_repository.go
package repository

import (
	"context"

	model "bookshelf_backend/internals/features/library/books/model"
	helper "bookshelf_backend/internals/helpers"
)

// Repository is the book store. Lookups of a missing book return an error
// wrapping apperr.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, book *model.BookModel) error
	FindByID(ctx context.Context, id int64) (*model.BookModel, error)
	FindByISBN(ctx context.Context, isbn string) (*model.BookModel, error)
	Update(ctx context.Context, book *model.BookModel) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter model.BookFilter, page helper.Pageable) (helper.Page[model.BookModel], error)
}
