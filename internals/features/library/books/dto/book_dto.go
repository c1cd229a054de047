// file: internals/features/library/books/dto/book_dto.go
package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	model "bookshelf_backend/internals/features/library/books/model"
	"bookshelf_backend/internals/helpers/apperr"
)

/* =========================================
   REQUEST DTOs
   ========================================= */

// BookRequest is the body of POST /api/books and PUT /api/books/:id.
type BookRequest struct {
	ID        *int64  `json:"id,omitempty"`
	ISBN      string  `json:"isbn"      validate:"required,notblank"`
	Author    string  `json:"author"    validate:"required,notblank"`
	Genre     *string `json:"genre,omitempty"`
	Image     string  `json:"image"     validate:"required,notblank"`
	Pages     int     `json:"pages"     validate:"min=1"`
	Publisher string  `json:"publisher" validate:"required,notblank"`
	Subtitle  string  `json:"subtitle"  validate:"required,notblank"`
	Title     string  `json:"title"     validate:"required,notblank"`
	Year      string  `json:"year"      validate:"required,year4"`
}

func (r *BookRequest) Normalize() {
	r.ISBN = strings.TrimSpace(r.ISBN)
	r.Author = strings.TrimSpace(r.Author)
	r.Image = strings.TrimSpace(r.Image)
	r.Publisher = strings.TrimSpace(r.Publisher)
	r.Subtitle = strings.TrimSpace(r.Subtitle)
	r.Title = strings.TrimSpace(r.Title)
	r.Year = strings.TrimSpace(r.Year)
	r.Genre = trimPtr(r.Genre)
}

func (r BookRequest) ToModel() *model.BookModel {
	m := &model.BookModel{}
	r.ApplyToModel(m)
	return m
}

// ApplyToModel replaces every mutable field (PUT is a full replacement).
func (r BookRequest) ApplyToModel(m *model.BookModel) {
	m.ISBN = r.ISBN
	m.Author = r.Author
	m.Genre = r.Genre
	m.Image = r.Image
	m.Pages = r.Pages
	m.Publisher = r.Publisher
	m.Subtitle = r.Subtitle
	m.Title = r.Title
	m.Year = r.Year
}

/* =========================================
   QUERY (filters)
   ========================================= */

// BookFilterFromQuery reads the optional list filters. Absent or blank
// parameters leave the field unconstrained.
func BookFilterFromQuery(c *fiber.Ctx) (model.BookFilter, error) {
	f := model.BookFilter{
		ISBN:      queryPtr(c, "isbn"),
		Author:    queryPtr(c, "author"),
		Genre:     queryPtr(c, "genre"),
		Image:     queryPtr(c, "image"),
		Publisher: queryPtr(c, "publisher"),
		Subtitle:  queryPtr(c, "subtitle"),
		Title:     queryPtr(c, "title"),
		Year:      queryPtr(c, "year"),
	}
	if raw := queryPtr(c, "pages"); raw != nil {
		n, err := strconv.Atoi(*raw)
		if err != nil {
			return model.BookFilter{}, fmt.Errorf("%w: pages must be a number", apperr.ErrInvalidArgument)
		}
		f.Pages = &n
	}
	return f, nil
}

func queryPtr(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
