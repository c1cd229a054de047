package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	bookModel "bookshelf_backend/internals/features/library/books/model"
	uModel "bookshelf_backend/internals/features/users/user/model"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// CreateUserRequest is the registration body.
type CreateUserRequest struct {
	Username  string `json:"username"  validate:"required,notblank,max=100"`
	Name      string `json:"name"      validate:"required,notblank"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02,past"`
	Password  string `json:"password"  validate:"required,notblank"`
}

// Normalize trims fields. The password is taken as typed.
func (r *CreateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Name = strings.TrimSpace(r.Name)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
}

// ToModel leaves the password for the controller to hash.
func (r *CreateUserRequest) ToModel() (*uModel.UserModel, error) {
	d, err := ParseDate(r.BirthDate)
	if err != nil {
		return nil, err
	}
	return &uModel.UserModel{
		Username:  r.Username,
		Name:      r.Name,
		BirthDate: datatypes.Date(d),
	}, nil
}

// UpdateUserRequest replaces the profile fields. Password and books have
// their own endpoints.
type UpdateUserRequest struct {
	ID        *int64 `json:"id"`
	Username  string `json:"username"  validate:"required,notblank,max=100"`
	Name      string `json:"name"      validate:"required,notblank"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02,past"`
}

func (r *UpdateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Name = strings.TrimSpace(r.Name)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
}

func (r *UpdateUserRequest) ApplyToModel(m *uModel.UserModel) error {
	d, err := ParseDate(r.BirthDate)
	if err != nil {
		return err
	}
	m.Username = r.Username
	m.Name = r.Name
	m.BirthDate = datatypes.Date(d)
	return nil
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(helper.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must match %s", apperr.ErrInvalidArgument, s, helper.DateLayout)
	}
	return d, nil
}

/* =======================================================
   QUERY (filters)
   ======================================================= */

// UserFilterFromQuery reads ?username=&name=&birthDateFrom=&birthDateTo=.
func UserFilterFromQuery(c *fiber.Ctx) (uModel.UserFilter, error) {
	f := uModel.UserFilter{
		Username: queryPtr(c, "username"),
		Name:     queryPtr(c, "name"),
	}
	for key, dst := range map[string]**time.Time{
		"birthDateFrom": &f.BirthFrom,
		"birthDateTo":   &f.BirthTo,
	} {
		if raw := queryPtr(c, key); raw != nil {
			d, err := ParseDate(*raw)
			if err != nil {
				return uModel.UserFilter{}, err
			}
			*dst = &d
		}
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

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

type UserResponse struct {
	ID        int64                 `json:"id"`
	Username  string                `json:"username"`
	Name      string                `json:"name"`
	BirthDate string                `json:"birthDate"`
	Books     []bookModel.BookModel `json:"books"`
}

func FromModel(m *uModel.UserModel) *UserResponse {
	books := m.Books
	if books == nil {
		books = []bookModel.BookModel{}
	}
	return &UserResponse{
		ID:        m.ID,
		Username:  m.Username,
		Name:      m.Name,
		BirthDate: m.Birth().Format(helper.DateLayout),
		Books:     books,
	}
}

func FromModelPage(p helper.Page[uModel.UserModel]) helper.Page[UserResponse] {
	return helper.MapPage(p, func(m uModel.UserModel) UserResponse { return *FromModel(&m) })
}
