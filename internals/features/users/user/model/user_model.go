package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"

	bookModel "bookshelf_backend/internals/features/library/books/model"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

// UserModel is a registered reader and the owning side of the book_user
// relation. Books are loaded explicitly by the repository.
type UserModel struct {
	ID        int64                 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Username  string                `gorm:"type:varchar(100);not null;index:idx_users_username;column:username" json:"username"`
	Name      string                `gorm:"type:text;not null;column:name" json:"name"`
	BirthDate datatypes.Date        `gorm:"type:date;not null;column:birth_date" json:"birthDate"`
	Password  string                `gorm:"type:text;not null;column:password" json:"-"`
	Books     []bookModel.BookModel `gorm:"many2many:book_user;joinForeignKey:UserID;joinReferences:BookID" json:"books"`
}

// TableName memastikan nama tabel sesuai dengan skema database
func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) Birth() time.Time { return time.Time(u.BirthDate) }

// Validate checks the profile fields. The password hash is not checked here.
func (u *UserModel) Validate(now time.Time) error {
	var bad []string
	if strings.TrimSpace(u.Username) == "" {
		bad = append(bad, "username")
	}
	if strings.TrimSpace(u.Name) == "" {
		bad = append(bad, "name")
	}
	if !helper.IsPastDate(u.Birth(), now) {
		bad = append(bad, "birthDate")
	}
	if len(bad) == 0 {
		return nil
	}
	return fmt.Errorf("%w: invalid user fields %s", apperr.ErrInvalidArgument, strings.Join(bad, ", "))
}

/* =======================================================
   OWNERSHIP
   Both operations only touch the in-memory collection; the
   caller persists it with Repository.SaveBooks.
   ======================================================= */

func (u *UserModel) OwnsBook(b *bookModel.BookModel) bool {
	for i := range u.Books {
		if u.Books[i].Equal(b) {
			return true
		}
	}
	return false
}

func (u *UserModel) AddBook(b *bookModel.BookModel) error {
	if b == nil || b.ID == 0 {
		return fmt.Errorf("%w: book is required", apperr.ErrInvalidArgument)
	}
	if u.OwnsBook(b) {
		return fmt.Errorf("user %d, book %d: %w", u.ID, b.ID, apperr.ErrAlreadyOwned)
	}
	u.Books = append(u.Books, *b)
	return nil
}

func (u *UserModel) RemoveBook(b *bookModel.BookModel) error {
	if b == nil || b.ID == 0 {
		return fmt.Errorf("%w: book is required", apperr.ErrInvalidArgument)
	}
	for i := range u.Books {
		if u.Books[i].Equal(b) {
			u.Books = append(u.Books[:i], u.Books[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("user %d, book %d: %w", u.ID, b.ID, apperr.ErrNotOwned)
}

// BookIDs returns the ids of the owned books, ascending.
func (u *UserModel) BookIDs() []int64 {
	ids := make([]int64, 0, len(u.Books))
	for _, b := range u.Books {
		ids = append(ids, b.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
