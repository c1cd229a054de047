// file: internals/features/users/user/repository/user_repository.go
package repository

import (
	"context"

	model "bookshelf_backend/internals/features/users/user/model"
	helper "bookshelf_backend/internals/helpers"
)

// Repository is the user store. Every read returns the user with its books
// fully loaded. Missing users yield an error wrapping apperr.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, user *model.UserModel) error
	FindByID(ctx context.Context, id int64) (*model.UserModel, error)
	FindByUsername(ctx context.Context, username string) (*model.UserModel, error)
	// Update writes username, name and birth date only.
	Update(ctx context.Context, user *model.UserModel) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	// SaveBooks makes the stored collection equal to user.Books.
	SaveBooks(ctx context.Context, user *model.UserModel) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter model.UserFilter, page helper.Pageable) (helper.Page[model.UserModel], error)
}
