// file: internals/features/library/books/dto/openlibrary_dto.go
package dto

import (
	"fmt"
	"regexp"
	"strings"

	model "bookshelf_backend/internals/features/library/books/model"
	"bookshelf_backend/internals/helpers/apperr"
)

/* =========================================
   OPEN LIBRARY (jscmd=data)
   ========================================= */

// OpenLibraryRecord mirrors the subset of the "ISBN:<isbn>" document we read.
// Pointers tell "absent" apart from zero values.
type OpenLibraryRecord struct {
	Title         *string           `json:"title"`
	Subtitle      *string           `json:"subtitle"`
	PublishDate   *string           `json:"publish_date"`
	NumberOfPages *int              `json:"number_of_pages"`
	Cover         *OpenLibraryCover `json:"cover"`
	Publishers    []OpenLibraryName `json:"publishers"`
	Authors       []OpenLibraryName `json:"authors"`
}

type OpenLibraryCover struct {
	Small  *string `json:"small"`
	Medium *string `json:"medium"`
	Large  *string `json:"large"`
}

type OpenLibraryName struct {
	Name *string `json:"name"`
	URL  string  `json:"url,omitempty"`
}

// OpenLibraryBook is a fully parsed record, ready to become a book.
type OpenLibraryBook struct {
	ISBN        string
	Title       string
	Subtitle    string
	Publishers  []string
	PublishDate string
	Pages       int
	Authors     []string
	CoverImage  string
}

// Parse extracts every required field or fails as a whole.
func (r *OpenLibraryRecord) Parse(isbn string) (*OpenLibraryBook, error) {
	var missing []string
	req := func(name string, v *string) string {
		if v == nil || strings.TrimSpace(*v) == "" {
			missing = append(missing, name)
			return ""
		}
		return strings.TrimSpace(*v)
	}

	out := &OpenLibraryBook{
		ISBN:        isbn,
		Title:       req("title", r.Title),
		Subtitle:    req("subtitle", r.Subtitle),
		PublishDate: req("publish_date", r.PublishDate),
	}
	if r.NumberOfPages == nil {
		missing = append(missing, "number_of_pages")
	} else {
		out.Pages = *r.NumberOfPages
	}
	if r.Cover == nil {
		missing = append(missing, "cover.large")
	} else {
		out.CoverImage = req("cover.large", r.Cover.Large)
	}
	if r.Publishers == nil {
		missing = append(missing, "publishers")
	}
	if r.Authors == nil {
		missing = append(missing, "authors")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", apperr.ErrParseFailure, strings.Join(missing, ", "))
	}

	out.Publishers = names(r.Publishers)
	out.Authors = names(r.Authors)
	return out, nil
}

func names(in []OpenLibraryName) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n.Name != nil {
			out = append(out, strings.TrimSpace(*n.Name))
		}
	}
	return out
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// ToModel maps the record onto a book. Genre is never provided remotely.
func (b *OpenLibraryBook) ToModel() (*model.BookModel, error) {
	year := yearPattern.FindStringSubmatch(b.PublishDate)
	if year == nil {
		return nil, fmt.Errorf("%w: no year in publish_date %q", apperr.ErrParseFailure, b.PublishDate)
	}
	return &model.BookModel{
		ISBN:      b.ISBN,
		Author:    strings.Join(b.Authors, ", "),
		Image:     b.CoverImage,
		Pages:     b.Pages,
		Publisher: strings.Join(b.Publishers, ", "),
		Subtitle:  b.Subtitle,
		Title:     b.Title,
		Year:      year[1],
	}, nil
}
