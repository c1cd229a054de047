// file: internals/features/library/books/model/book_model.go
package model

import (
	"fmt"
	"sort"
	"strings"

	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

type BookModel struct {
	ID        int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ISBN      string  `gorm:"type:varchar(32);not null;index:idx_books_isbn;column:isbn" json:"isbn"`
	Author    string  `gorm:"type:text;not null;column:author" json:"author"`
	Genre     *string `gorm:"type:text;column:genre" json:"genre"`
	Image     string  `gorm:"type:text;not null;column:image" json:"image"`
	Pages     int     `gorm:"not null;column:pages" json:"pages"`
	Publisher string  `gorm:"type:text;not null;column:publisher" json:"publisher"`
	Subtitle  string  `gorm:"type:text;not null;column:subtitle" json:"subtitle"`
	Title     string  `gorm:"type:text;not null;column:title" json:"title"`
	Year      string  `gorm:"type:varchar(4);not null;column:year" json:"year"`
}

func (BookModel) TableName() string { return "books" }

// Equal compares identity only. A book without an id equals nothing,
// not even itself.
func (b *BookModel) Equal(other *BookModel) bool {
	if b == nil || other == nil {
		return false
	}
	return b.ID != 0 && other.ID != 0 && b.ID == other.ID
}

// Validate checks the field invariants of a book. The API layer validates
// request bodies with struct tags; this guards the other entry points
// (remote lookup, seeds).
func (b *BookModel) Validate() error {
	var bad []string
	for field, v := range map[string]string{
		"isbn":      b.ISBN,
		"author":    b.Author,
		"image":     b.Image,
		"publisher": b.Publisher,
		"subtitle":  b.Subtitle,
		"title":     b.Title,
	} {
		if strings.TrimSpace(v) == "" {
			bad = append(bad, field)
		}
	}
	if b.Pages < 1 {
		bad = append(bad, "pages")
	}
	if !helper.IsYear4(b.Year) {
		bad = append(bad, "year")
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("%w: invalid book fields %s", apperr.ErrInvalidArgument, strings.Join(bad, ", "))
}

// OwnershipTable is the join table between users and books.
const OwnershipTable = "book_user"
