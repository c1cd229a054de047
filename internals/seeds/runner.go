// file: internals/seeds/runner.go
package seeds

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	bookDTO "bookshelf_backend/internals/features/library/books/dto"
	bookRepo "bookshelf_backend/internals/features/library/books/repository"
	authHelper "bookshelf_backend/internals/features/users/auth/helper"
	userDTO "bookshelf_backend/internals/features/users/user/dto"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

const (
	BooksFile = "books.json"
	UsersFile = "users.json"
)

// UserSeed is a registration body plus the ISBNs the user owns.
type UserSeed struct {
	userDTO.CreateUserRequest
	Books []string `json:"books"`
}

type Result struct {
	BooksInserted int
	BooksSkipped  int
	UsersInserted int
	UsersSkipped  int
}

type Runner struct {
	Books      bookRepo.Repository
	Users      userRepo.Repository
	BcryptCost int
	Now        func() time.Time
}

// RunAll seeds books then users from dir. A missing file is skipped; rows
// that already exist (same ISBN or username) are left alone.
func (r Runner) RunAll(ctx context.Context, dir string) (Result, error) {
	var res Result
	if err := r.seedBooks(ctx, filepath.Join(dir, BooksFile), &res); err != nil {
		return res, err
	}
	if err := r.seedUsers(ctx, filepath.Join(dir, UsersFile), &res); err != nil {
		return res, err
	}
	log.Printf("✅ seeds done: books +%d (skip %d), users +%d (skip %d)",
		res.BooksInserted, res.BooksSkipped, res.UsersInserted, res.UsersSkipped)
	return res, nil
}

func readJSON(path string, dst any) (bool, error) {
	log.Println("📥 Reading seed file:", path)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("ℹ️ %s not found, skipped", path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func (r Runner) seedBooks(ctx context.Context, path string, res *Result) error {
	var inputs []bookDTO.BookRequest
	if ok, err := readJSON(path, &inputs); !ok {
		return err
	}
	for i := range inputs {
		in := &inputs[i]
		in.Normalize()
		if errs := helper.ValidateStruct(in); errs != nil {
			return fmt.Errorf("%s[%d]: %w: %v", BooksFile, i, apperr.ErrInvalidArgument, errs)
		}
		if _, err := r.Books.FindByISBN(ctx, in.ISBN); err == nil {
			log.Printf("ℹ️ book %s exists, skipped", in.ISBN)
			res.BooksSkipped++
			continue
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if err := r.Books.Create(ctx, in.ToModel()); err != nil {
			return fmt.Errorf("insert book %s: %w", in.ISBN, err)
		}
		res.BooksInserted++
	}
	return nil
}

func (r Runner) seedUsers(ctx context.Context, path string, res *Result) error {
	var inputs []UserSeed
	if ok, err := readJSON(path, &inputs); !ok {
		return err
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	for i := range inputs {
		in := &inputs[i]
		in.Normalize()
		if errs := helper.ValidateStruct(&in.CreateUserRequest); errs != nil {
			return fmt.Errorf("%s[%d]: %w: %v", UsersFile, i, apperr.ErrInvalidArgument, errs)
		}
		if _, err := r.Users.FindByUsername(ctx, in.Username); err == nil {
			log.Printf("ℹ️ user %s exists, skipped", in.Username)
			res.UsersSkipped++
			continue
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		u, err := in.ToModel()
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", UsersFile, i, err)
		}
		if err := u.Validate(now()); err != nil {
			return fmt.Errorf("%s[%d]: %w", UsersFile, i, err)
		}
		if u.Password, err = authHelper.HashPassword(in.Password, r.BcryptCost); err != nil {
			return fmt.Errorf("hash password of %s: %w", in.Username, err)
		}
		if err := r.Users.Create(ctx, u); err != nil {
			return fmt.Errorf("insert user %s: %w", in.Username, err)
		}

		for _, isbn := range in.Books {
			b, err := r.Books.FindByISBN(ctx, isbn)
			if err != nil {
				return fmt.Errorf("user %s owns %s: %w", in.Username, isbn, err)
			}
			if err := u.AddBook(b); err != nil && !errors.Is(err, apperr.ErrAlreadyOwned) {
				return err
			}
		}
		if len(u.Books) > 0 {
			if err := r.Users.SaveBooks(ctx, u); err != nil {
				return fmt.Errorf("link books of %s: %w", in.Username, err)
			}
		}
		res.UsersInserted++
	}
	return nil
}
