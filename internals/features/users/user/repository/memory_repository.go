package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	bookModel "bookshelf_backend/internals/features/library/books/model"
	model "bookshelf_backend/internals/features/users/user/model"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

// BookSource resolves owned book ids to books.
type BookSource interface {
	FindManyByID(ctx context.Context, ids []int64) []bookModel.BookModel
}

type memoryRow struct {
	user    model.UserModel // Books always nil here
	bookIDs map[int64]struct{}
}

// MemoryRepository keeps users in process memory and stores the collection
// as book ids, resolved through BookSource on every read. The book store
// must not be called while mu is held.
type MemoryRepository struct {
	mu    sync.RWMutex
	seq   int64
	rows  map[int64]*memoryRow
	books BookSource
}

func NewMemoryRepository(books BookSource) *MemoryRepository {
	return &MemoryRepository{rows: map[int64]*memoryRow{}, books: books}
}

// UnlinkBook drops a deleted book from every collection. Wire it to the
// book store's delete hook.
func (r *MemoryRepository) UnlinkBook(bookID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		delete(row.bookIDs, bookID)
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *model.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	user.ID = r.seq
	u := *user
	u.Books = nil
	r.rows[user.ID] = &memoryRow{user: u, bookIDs: map[int64]struct{}{}}
	return nil
}

// snapshot copies a row under the lock; books are resolved afterwards.
type snapshot struct {
	user model.UserModel
	ids  []int64
}

func (s snapshot) materialize(ctx context.Context, books BookSource) model.UserModel {
	u := s.user
	u.Books = []bookModel.BookModel{}
	if len(s.ids) > 0 && books != nil {
		u.Books = books.FindManyByID(ctx, s.ids)
	}
	return u
}

func snap(row *memoryRow) snapshot {
	ids := make([]int64, 0, len(row.bookIDs))
	for id := range row.bookIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return snapshot{user: row.user, ids: ids}
}

func (r *MemoryRepository) FindByID(ctx context.Context, id int64) (*model.UserModel, error) {
	r.mu.RLock()
	row, ok := r.rows[id]
	var s snapshot
	if ok {
		s = snap(row)
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	u := s.materialize(ctx, r.books)
	return &u, nil
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*model.UserModel, error) {
	r.mu.RLock()
	var found *memoryRow
	for _, row := range r.rows {
		if row.user.Username == username && (found == nil || row.user.ID < found.user.ID) {
			found = row
		}
	}
	var s snapshot
	if found != nil {
		s = snap(found)
	}
	r.mu.RUnlock()

	if found == nil {
		return nil, fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
	}
	u := s.materialize(ctx, r.books)
	return &u, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *model.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[user.ID]
	if !ok {
		return fmt.Errorf("user %d: %w", user.ID, apperr.ErrNotFound)
	}
	row.user.Username = user.Username
	row.user.Name = user.Name
	row.user.BirthDate = user.BirthDate
	return nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	row.user.Password = hash
	return nil
}

func (r *MemoryRepository) SaveBooks(_ context.Context, user *model.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[user.ID]
	if !ok {
		return fmt.Errorf("user %d: %w", user.ID, apperr.ErrNotFound)
	}
	ids := make(map[int64]struct{}, len(user.Books))
	for _, id := range user.BookIDs() {
		ids[id] = struct{}{}
	}
	row.bookIDs = ids
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context, f model.UserFilter, p helper.Pageable) (helper.Page[model.UserModel], error) {
	r.mu.RLock()
	matched := make([]snapshot, 0, len(r.rows))
	for _, row := range r.rows {
		if f.Matches(&row.user) {
			matched = append(matched, snap(row))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := &matched[i].user, &matched[j].user
		for _, o := range p.Sort {
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

	window := helper.Window(matched, p)
	content := make([]model.UserModel, 0, len(window))
	for _, s := range window {
		content = append(content, s.materialize(ctx, r.books))
	}
	return helper.NewPage(content, int64(len(matched)), p), nil
}
