package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	model "bookshelf_backend/internals/features/library/books/model"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

var tracer = otel.Tracer("bookshelf_backend/books/repository")

type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *GormRepository) Create(ctx context.Context, book *model.BookModel) (err error) {
	ctx, span := tracer.Start(ctx, "books.Create", trace.WithAttributes(attribute.String("book.isbn", book.ISBN)))
	defer func() { endSpan(span, err) }()

	if err = r.DB.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	span.SetAttributes(attribute.Int64("book.id", book.ID))
	return nil
}

func (r *GormRepository) FindByID(ctx context.Context, id int64) (_ *model.BookModel, err error) {
	ctx, span := tracer.Start(ctx, "books.FindByID", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer func() { endSpan(span, err) }()

	var m model.BookModel
	if err = r.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err, "book %d", id)
	}
	return &m, nil
}

func (r *GormRepository) FindByISBN(ctx context.Context, isbn string) (_ *model.BookModel, err error) {
	ctx, span := tracer.Start(ctx, "books.FindByISBN", trace.WithAttributes(attribute.String("book.isbn", isbn)))
	defer func() { endSpan(span, err) }()

	var m model.BookModel
	if err = r.DB.WithContext(ctx).Where("isbn = ?", isbn).Order("id ASC").First(&m).Error; err != nil {
		return nil, notFound(err, "book isbn %s", isbn)
	}
	return &m, nil
}

func (r *GormRepository) Update(ctx context.Context, book *model.BookModel) (err error) {
	ctx, span := tracer.Start(ctx, "books.Update", trace.WithAttributes(attribute.Int64("book.id", book.ID)))
	defer func() { endSpan(span, err) }()

	res := r.DB.WithContext(ctx).Model(&model.BookModel{}).
		Where("id = ?", book.ID).
		Select("*").Omit("id").
		Updates(book)
	if err = res.Error; err != nil {
		return fmt.Errorf("update book %d: %w", book.ID, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book %d: %w", book.ID, apperr.ErrNotFound)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "books.Delete", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer func() { endSpan(span, err) }()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+model.OwnershipTable+" WHERE book_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink book %d: %w", id, err)
		}
		res := tx.Delete(&model.BookModel{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete book %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("book %d: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
}

func (r *GormRepository) List(ctx context.Context, f model.BookFilter, p helper.Pageable) (_ helper.Page[model.BookModel], err error) {
	ctx, span := tracer.Start(ctx, "books.List", trace.WithAttributes(
		attribute.Int("page.number", p.Page),
		attribute.Int("page.size", p.Size),
	))
	defer func() { endSpan(span, err) }()

	base := r.DB.WithContext(ctx).Model(&model.BookModel{}).Scopes(FilterScope(f))

	var total int64
	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.Page[model.BookModel]{}, fmt.Errorf("count books: %w", err)
	}

	rows := []model.BookModel{}
	if int64(p.Offset()) < total {
		if err = PageScope(base.Session(&gorm.Session{}), p).Find(&rows).Error; err != nil {
			return helper.Page[model.BookModel]{}, fmt.Errorf("list books: %w", err)
		}
	}
	span.SetAttributes(attribute.Int64("result.total", total))
	return helper.NewPage(rows, total, p), nil
}

// FilterScope adds a WHERE condition per non-nil filter field.
func FilterScope(f model.BookFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		exact := []struct {
			col string
			val *string
		}{
			{"isbn", f.ISBN},
			{"author", f.Author},
			{"genre", f.Genre},
			{"image", f.Image},
			{"publisher", f.Publisher},
			{"year", f.Year},
		}
		for _, e := range exact {
			if e.val != nil {
				db = db.Where(e.col+" = ?", *e.val)
			}
		}
		if f.Pages != nil {
			db = db.Where("pages = ?", *f.Pages)
		}
		if f.Title != nil {
			db = db.Where(`title LIKE ? ESCAPE '\'`, ContainsPattern(*f.Title))
		}
		if f.Subtitle != nil {
			db = db.Where(`subtitle LIKE ? ESCAPE '\'`, ContainsPattern(*f.Subtitle))
		}
		return db
	}
}

// PageScope applies whitelisted ordering plus LIMIT/OFFSET.
func PageScope(db *gorm.DB, p helper.Pageable) *gorm.DB {
	for _, o := range p.SafeOrderClauses(model.Sortable) {
		db = db.Order(o)
	}
	return db.Limit(p.Limit()).Offset(p.Offset())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a LIKE pattern matching s literally as a substring.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, apperr.ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
