package seeds

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	bookRepo "bookshelf_backend/internals/features/library/books/repository"
	authHelper "bookshelf_backend/internals/features/users/auth/helper"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	"bookshelf_backend/internals/helpers/apperr"
)

func newRunner() (Runner, *userRepo.MemoryRepository) {
	books := bookRepo.NewMemoryRepository()
	users := userRepo.NewMemoryRepository(books)
	return Runner{Books: books, Users: users, BcryptCost: bcrypt.MinCost}, users
}

func Test_RunAll_InsertsThenSkips(t *testing.T) {
	ctx := context.Background()
	r, users := newRunner()

	res, err := r.RunAll(ctx, "testdata")
	require.NoError(t, err)
	assert.Equal(t, Result{BooksInserted: 2, UsersInserted: 2}, res)

	ana, err := users.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, ana.Books, 2)
	assert.NoError(t, authHelper.CheckPasswordHash(ana.Password, "secret"))

	res, err = r.RunAll(ctx, "testdata")
	require.NoError(t, err)
	assert.Equal(t, Result{BooksSkipped: 2, UsersSkipped: 2}, res)
}

func Test_RunAll_MissingFilesAreSkipped(t *testing.T) {
	r, _ := newRunner()
	res, err := r.RunAll(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func Test_RunAll_RejectsInvalidRows(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, BooksFile), []byte(`[{"isbn":"1","pages":0}]`), 0o600))

	r, _ := newRunner()
	_, err := r.RunAll(context.Background(), dir)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func Test_RunAll_UnknownOwnedBook(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, UsersFile), []byte(
		`[{"username":"c","name":"C","birthDate":"1999-01-01","password":"x","books":["404"]}]`), 0o600))

	r, _ := newRunner()
	_, err := r.RunAll(context.Background(), dir)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
