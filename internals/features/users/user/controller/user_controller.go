package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	bookModel "bookshelf_backend/internals/features/library/books/model"
	bookRepo "bookshelf_backend/internals/features/library/books/repository"
	authHelper "bookshelf_backend/internals/features/users/auth/helper"
	"bookshelf_backend/internals/features/users/user/dto"
	"bookshelf_backend/internals/features/users/user/model"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
	helperAuth "bookshelf_backend/internals/helpers/auth"
)

type UserController struct {
	Users      userRepo.Repository
	Books      bookRepo.Repository
	Paging     helper.Options
	BcryptCost int
}

func NewUserController(users userRepo.Repository, books bookRepo.Repository, paging helper.Options, bcryptCost int) *UserController {
	return &UserController{Users: users, Books: books, Paging: paging, BcryptCost: bcryptCost}
}

// POST /api/users
func (uc *UserController) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	m, err := req.ToModel()
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := m.Validate(time.Now()); err != nil {
		return helper.JsonDomainError(c, err)
	}
	hash, err := authHelper.HashPassword(req.Password, uc.BcryptCost)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	m.Password = hash

	if err := uc.Users.Create(c.UserContext(), m); err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [USERS][CREATE] id=%d username=%s", m.ID, m.Username)
	return helper.JsonCreated(c, dto.FromModel(m))
}

// GET /api/users?username=&name=&birthDateFrom=&birthDateTo=&page=&size=&sort=
func (uc *UserController) List(c *fiber.Ctx) error {
	f, err := dto.UserFilterFromQuery(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	p, err := helper.ParsePageable(c, uc.Paging, model.Sortable)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	page, err := uc.Users.List(c.UserContext(), f, p)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, dto.FromModelPage(page))
}

// GET /api/users/:id
func (uc *UserController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParamID(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	u, err := uc.Users.FindByID(c.UserContext(), id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, dto.FromModel(u))
}

// GET /api/users/self (the authenticated caller)
func (uc *UserController) Self(c *fiber.Ctx) error {
	p, ok := helperAuth.PrincipalFrom(c)
	if !ok {
		return helper.JsonDomainError(c, apperr.ErrUnauthorized)
	}
	u, err := uc.Users.FindByUsername(c.UserContext(), p.Username)
	if errors.Is(err, apperr.ErrNotFound) {
		// authenticated by a token whose user is gone
		return helper.JsonDomainError(c, apperr.ErrUnauthorized)
	}
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, dto.FromModel(u))
}

// PUT /api/users/:id
func (uc *UserController) Update(c *fiber.Ctx) error {
	id, err := helper.ParamID(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.ID == nil || *req.ID != id {
		return helper.JsonDomainError(c, apperr.ErrIDMismatch)
	}
	req.Normalize()
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	u, err := uc.Users.FindByID(c.UserContext(), id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := req.ApplyToModel(u); err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := uc.Users.Update(c.UserContext(), u); err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [USERS][UPDATE] id=%d", id)
	return helper.JsonOK(c, dto.FromModel(u))
}

// DELETE /api/users/:id
func (uc *UserController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParamID(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := uc.Users.Delete(c.UserContext(), id); err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [USERS][DELETE] id=%d", id)
	return helper.JsonDeleted(c, "user deleted")
}

/* =======================================================
   BOOK COLLECTION
   ======================================================= */

// PUT /api/users/:userId/books/:bookId
func (uc *UserController) AddBook(c *fiber.Ctx) error {
	return uc.changeBooks(c, "ADD", (*model.UserModel).AddBook)
}

// DELETE /api/users/:userId/books/:bookId
func (uc *UserController) RemoveBook(c *fiber.Ctx) error {
	return uc.changeBooks(c, "REMOVE", (*model.UserModel).RemoveBook)
}

func (uc *UserController) changeBooks(c *fiber.Ctx, op string, apply func(*model.UserModel, *bookModel.BookModel) error) error {
	userID, err := helper.ParamID(c, "userId")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	bookID, err := helper.ParamID(c, "bookId")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	ctx := c.UserContext()
	u, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	b, err := uc.Books.FindByID(ctx, bookID)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := apply(u, b); err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := uc.Users.SaveBooks(ctx, u); err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [USERS][BOOKS][%s] user=%d book=%d", op, userID, bookID)
	return helper.JsonOK(c, dto.FromModel(u))
}
