package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	bookModel "bookshelf_backend/internals/features/library/books/model"
	bookRepo "bookshelf_backend/internals/features/library/books/repository"
	model "bookshelf_backend/internals/features/users/user/model"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

var tracer = otel.Tracer("bookshelf_backend/users/repository")

type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

// OwnershipRow is one row of the book_user join table.
type OwnershipRow struct {
	UserID int64 `gorm:"primaryKey;column:user_id"`
	BookID int64 `gorm:"primaryKey;column:book_id"`
}

func (OwnershipRow) TableName() string { return bookModel.OwnershipTable }

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func withBooks(db *gorm.DB) *gorm.DB {
	return db.Preload("Books", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("books.id ASC")
	})
}

func (r *GormRepository) Create(ctx context.Context, user *model.UserModel) (err error) {
	ctx, span := tracer.Start(ctx, "users.Create", trace.WithAttributes(attribute.String("user.username", user.Username)))
	defer func() { endSpan(span, err) }()

	// the collection is written through SaveBooks only
	if err = r.DB.WithContext(ctx).Omit("Books").Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return nil
}

func (r *GormRepository) FindByID(ctx context.Context, id int64) (_ *model.UserModel, err error) {
	ctx, span := tracer.Start(ctx, "users.FindByID", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	var m model.UserModel
	if err = withBooks(r.DB.WithContext(ctx)).First(&m, id).Error; err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &m, nil
}

func (r *GormRepository) FindByUsername(ctx context.Context, username string) (_ *model.UserModel, err error) {
	ctx, span := tracer.Start(ctx, "users.FindByUsername", trace.WithAttributes(attribute.String("user.username", username)))
	defer func() { endSpan(span, err) }()

	var m model.UserModel
	if err = withBooks(r.DB.WithContext(ctx)).Where("username = ?", username).Order("id ASC").First(&m).Error; err != nil {
		return nil, notFound(err, "user %q", username)
	}
	return &m, nil
}

func (r *GormRepository) Update(ctx context.Context, user *model.UserModel) (err error) {
	ctx, span := tracer.Start(ctx, "users.Update", trace.WithAttributes(attribute.Int64("user.id", user.ID)))
	defer func() { endSpan(span, err) }()

	res := r.DB.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Select("username", "name", "birth_date").
		Updates(map[string]any{
			"username":   user.Username,
			"name":       user.Name,
			"birth_date": user.BirthDate,
		})
	if err = res.Error; err != nil {
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", user.ID, apperr.ErrNotFound)
	}
	return nil
}

func (r *GormRepository) UpdatePassword(ctx context.Context, id int64, hash string) (err error) {
	ctx, span := tracer.Start(ctx, "users.UpdatePassword", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	res := r.DB.WithContext(ctx).Model(&model.UserModel{}).Where("id = ?", id).Update("password", hash)
	if err = res.Error; err != nil {
		return fmt.Errorf("update password of user %d: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *GormRepository) SaveBooks(ctx context.Context, user *model.UserModel) (err error) {
	ctx, span := tracer.Start(ctx, "users.SaveBooks", trace.WithAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Int("books.count", len(user.Books)),
	))
	defer func() { endSpan(span, err) }()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&OwnershipRow{}).Error; err != nil {
			return fmt.Errorf("clear books of user %d: %w", user.ID, err)
		}
		if len(user.Books) == 0 {
			return nil
		}
		rows := make([]OwnershipRow, 0, len(user.Books))
		for _, id := range user.BookIDs() {
			rows = append(rows, OwnershipRow{UserID: user.ID, BookID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("save books of user %d: %w", user.ID, err)
		}
		return nil
	})
}

func (r *GormRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "users.Delete", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&OwnershipRow{}).Error; err != nil {
			return fmt.Errorf("unlink user %d: %w", id, err)
		}
		res := tx.Delete(&model.UserModel{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
}

func (r *GormRepository) List(ctx context.Context, f model.UserFilter, p helper.Pageable) (_ helper.Page[model.UserModel], err error) {
	ctx, span := tracer.Start(ctx, "users.List", trace.WithAttributes(
		attribute.Int("page.number", p.Page),
		attribute.Int("page.size", p.Size),
	))
	defer func() { endSpan(span, err) }()

	base := r.DB.WithContext(ctx).Model(&model.UserModel{}).Scopes(FilterScope(f))

	var total int64
	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.Page[model.UserModel]{}, fmt.Errorf("count users: %w", err)
	}

	rows := []model.UserModel{}
	if int64(p.Offset()) < total {
		q := withBooks(base.Session(&gorm.Session{}))
		for _, o := range p.SafeOrderClauses(model.Sortable) {
			q = q.Order(o)
		}
		if err = q.Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
			return helper.Page[model.UserModel]{}, fmt.Errorf("list users: %w", err)
		}
	}
	return helper.NewPage(rows, total, p), nil
}

// FilterScope adds a WHERE condition per non-nil filter field.
func FilterScope(f model.UserFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Username != nil {
			db = db.Where("username = ?", *f.Username)
		}
		if f.Name != nil {
			db = db.Where(`name LIKE ? ESCAPE '\'`, bookRepo.ContainsPattern(*f.Name))
		}
		if f.BirthFrom != nil {
			db = db.Where("birth_date >= ?", f.BirthFrom.Format(helper.DateLayout))
		}
		if f.BirthTo != nil {
			db = db.Where("birth_date <= ?", f.BirthTo.Format(helper.DateLayout))
		}
		return db
	}
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, apperr.ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
