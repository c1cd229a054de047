package model

import (
	"cmp"
	"strings"
)

// BookFilter: nil field = no constraint on that column.
type BookFilter struct {
	ISBN      *string
	Author    *string
	Genre     *string
	Image     *string
	Pages     *int
	Publisher *string
	Subtitle  *string // substring
	Title     *string // substring
	Year      *string
}

// Matches applies the same rules as the SQL scopes: exact match on every
// field except title and subtitle, which use case-sensitive containment.
func (f BookFilter) Matches(b *BookModel) bool {
	if f.ISBN != nil && b.ISBN != *f.ISBN {
		return false
	}
	if f.Author != nil && b.Author != *f.Author {
		return false
	}
	if f.Genre != nil && (b.Genre == nil || *b.Genre != *f.Genre) {
		return false
	}
	if f.Image != nil && b.Image != *f.Image {
		return false
	}
	if f.Pages != nil && b.Pages != *f.Pages {
		return false
	}
	if f.Publisher != nil && b.Publisher != *f.Publisher {
		return false
	}
	if f.Year != nil && b.Year != *f.Year {
		return false
	}
	if f.Title != nil && !strings.Contains(b.Title, *f.Title) {
		return false
	}
	if f.Subtitle != nil && !strings.Contains(b.Subtitle, *f.Subtitle) {
		return false
	}
	return true
}

// Sortable maps API sort keys to columns.
var Sortable = map[string]string{
	"id":        "id",
	"isbn":      "isbn",
	"author":    "author",
	"genre":     "genre",
	"image":     "image",
	"pages":     "pages",
	"publisher": "publisher",
	"subtitle":  "subtitle",
	"title":     "title",
	"year":      "year",
}

// CompareField orders two books on one sortable key. NULL genres sort last
// in ascending order, as postgres does.
func CompareField(a, b *BookModel, field string) int {
	switch field {
	case "isbn":
		return cmp.Compare(a.ISBN, b.ISBN)
	case "author":
		return cmp.Compare(a.Author, b.Author)
	case "genre":
		switch {
		case a.Genre == nil && b.Genre == nil:
			return 0
		case a.Genre == nil:
			return 1
		case b.Genre == nil:
			return -1
		}
		return cmp.Compare(*a.Genre, *b.Genre)
	case "image":
		return cmp.Compare(a.Image, b.Image)
	case "pages":
		return cmp.Compare(a.Pages, b.Pages)
	case "publisher":
		return cmp.Compare(a.Publisher, b.Publisher)
	case "subtitle":
		return cmp.Compare(a.Subtitle, b.Subtitle)
	case "title":
		return cmp.Compare(a.Title, b.Title)
	case "year":
		return cmp.Compare(a.Year, b.Year)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}
