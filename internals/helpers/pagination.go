// file: internals/helpers/pagination.go
package helper

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/helpers/apperr"
)

const (
	DefaultPage = 0
	tieBreaker  = "id"
)

type Options struct {
	DefaultSize int
	MaxSize     int
}

// ===== Preset =====
var DefaultOpts = Options{DefaultSize: 20, MaxSize: 100}

type SortOrder struct {
	Field string
	Desc  bool
}

// Pageable is a 0-based page request: ?page=&size=&sort=field[,asc|desc]
type Pageable struct {
	Page int
	Size int
	Sort []SortOrder
}

func (p Pageable) Limit() int { return p.Size }

// Offset saturates at math.MaxInt so a huge page lands past the last row.
func (p Pageable) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// ParsePageable reads paging and sorting from the query string. Sort fields
// must be keys of allowed; anything else is rejected with apperr.ErrBadSort.
func ParsePageable(c *fiber.Ctx, opt Options, allowed map[string]string) (Pageable, error) {
	raw := make([]string, 0, 2)
	for _, v := range c.Context().QueryArgs().PeekMulti("sort") {
		raw = append(raw, string(v))
	}
	return BuildPageable(c.Query("page"), c.Query("size"), raw, opt, allowed)
}

// BuildPageable normalises raw query values into a Pageable.
func BuildPageable(pageRaw, sizeRaw string, sortRaw []string, opt Options, allowed map[string]string) (Pageable, error) {
	if opt.DefaultSize <= 0 {
		opt.DefaultSize = DefaultOpts.DefaultSize
	}
	if opt.MaxSize <= 0 {
		opt.MaxSize = DefaultOpts.MaxSize
	}

	page := atoiDefault(pageRaw, DefaultPage)
	if page < 0 {
		page = DefaultPage
	}
	size := atoiDefault(sizeRaw, opt.DefaultSize)
	if size < 1 {
		size = opt.DefaultSize
	}
	if size > opt.MaxSize {
		size = opt.MaxSize
	}

	var orders []SortOrder
	for _, s := range sortRaw {
		parsed, err := parseSort(s, allowed)
		if err != nil {
			return Pageable{}, err
		}
		orders = append(orders, parsed...)
	}

	return Pageable{Page: page, Size: size, Sort: orders}, nil
}

// "title" | "title,desc" | "author,title,asc"
func parseSort(s string, allowed map[string]string) ([]SortOrder, error) {
	parts := strings.Split(s, ",")
	desc := false
	if n := len(parts); n > 1 {
		switch strings.ToLower(strings.TrimSpace(parts[n-1])) {
		case "desc":
			desc = true
			parts = parts[:n-1]
		case "asc":
			parts = parts[:n-1]
		}
	}

	out := make([]SortOrder, 0, len(parts))
	for _, p := range parts {
		field := strings.TrimSpace(p)
		if field == "" {
			continue
		}
		if _, ok := allowed[field]; !ok {
			return nil, fmt.Errorf("%w: %q", apperr.ErrBadSort, field)
		}
		out = append(out, SortOrder{Field: field, Desc: desc})
	}
	return out, nil
}

// SafeOrderClauses turns the requested sort into ORDER BY fragments using
// whitelisted columns only, with "id ASC" appended as tiebreaker.
func (p Pageable) SafeOrderClauses(allowed map[string]string) []string {
	clauses := make([]string, 0, len(p.Sort)+1)
	hasID := false
	for _, o := range p.Sort {
		col, ok := allowed[o.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		clauses = append(clauses, col+" "+dir)
		if o.Field == tieBreaker {
			hasID = true
		}
	}
	if !hasID {
		if col, ok := allowed[tieBreaker]; ok {
			clauses = append(clauses, col+" ASC")
		}
	}
	return clauses
}

/* ===============================
   Page (response shape)
=================================*/

type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size)) // ceil
}

func NewPage[T any](content []T, total int64, p Pageable) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    TotalPages(total, p.Size),
		Number:        p.Page,
		Size:          p.Size,
	}
}

// MapPage converts the content of a page, keeping the counters.
func MapPage[T, R any](in Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(in.Content))
	for _, v := range in.Content {
		out = append(out, fn(v))
	}
	return Page[R]{
		Content:       out,
		TotalElements: in.TotalElements,
		TotalPages:    in.TotalPages,
		Number:        in.Number,
		Size:          in.Size,
	}
}

// Window returns the slice of items that falls on page p (empty past the end).
func Window[T any](items []T, p Pageable) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
