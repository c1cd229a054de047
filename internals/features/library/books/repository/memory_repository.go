package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	model "bookshelf_backend/internals/features/library/books/model"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

// MemoryRepository keeps books in process memory (STORAGE_DRIVER=memory and
// tests). Filtering, ordering and paging follow the gorm repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]model.BookModel

	// OnDelete is called with the id of every deleted book, after the lock
	// is released.
	OnDelete func(id int64)
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: map[int64]model.BookModel{}}
}

func (r *MemoryRepository) Create(_ context.Context, book *model.BookModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	book.ID = r.seq
	r.rows[book.ID] = clone(*book)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*model.BookModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", id, apperr.ErrNotFound)
	}
	out := clone(m)
	return &out, nil
}

// FindManyByID returns the books that exist, in id order.
func (r *MemoryRepository) FindManyByID(_ context.Context, ids []int64) []model.BookModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.BookModel, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.rows[id]; ok {
			out = append(out, clone(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryRepository) FindByISBN(_ context.Context, isbn string) (*model.BookModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *model.BookModel
	for _, m := range r.rows {
		if m.ISBN == isbn && (found == nil || m.ID < found.ID) {
			c := clone(m)
			found = &c
		}
	}
	if found == nil {
		return nil, fmt.Errorf("book isbn %s: %w", isbn, apperr.ErrNotFound)
	}
	return found, nil
}

func (r *MemoryRepository) Update(_ context.Context, book *model.BookModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[book.ID]; !ok {
		return fmt.Errorf("book %d: %w", book.ID, apperr.ErrNotFound)
	}
	r.rows[book.ID] = clone(*book)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.rows[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("book %d: %w", id, apperr.ErrNotFound)
	}
	delete(r.rows, id)
	onDelete := r.OnDelete
	r.mu.Unlock()

	if onDelete != nil {
		onDelete(id)
	}
	return nil
}

func (r *MemoryRepository) List(_ context.Context, f model.BookFilter, p helper.Pageable) (helper.Page[model.BookModel], error) {
	r.mu.RLock()
	matched := make([]model.BookModel, 0, len(r.rows))
	for _, m := range r.rows {
		if f.Matches(&m) {
			matched = append(matched, clone(m))
		}
	}
	r.mu.RUnlock()

	SortBooks(matched, p.Sort)
	return helper.NewPage(helper.Window(matched, p), int64(len(matched)), p), nil
}

// SortBooks orders by the requested keys, then by id.
func SortBooks(books []model.BookModel, orders []helper.SortOrder) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := &books[i], &books[j]
		for _, o := range orders {
			c := model.CompareField(a, b, o.Field)
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return a.ID < b.ID
	})
}

func clone(m model.BookModel) model.BookModel {
	if m.Genre != nil {
		g := *m.Genre
		m.Genre = &g
	}
	return m
}
