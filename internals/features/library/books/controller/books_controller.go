// file: internals/features/library/books/controller/books_controller.go
package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/features/library/books/dto"
	model "bookshelf_backend/internals/features/library/books/model"
	"bookshelf_backend/internals/features/library/books/repository"
	"bookshelf_backend/internals/features/library/books/service"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

type BooksController struct {
	Books  repository.Repository
	Lookup *service.LookupService
	Paging helper.Options
}

func NewBooksController(books repository.Repository, lookup *service.LookupService, paging helper.Options) *BooksController {
	return &BooksController{Books: books, Lookup: lookup, Paging: paging}
}

// =========================================================
// GREETING - GET /api/books/greeting?name=
// =========================================================
func (h *BooksController) Greeting(c *fiber.Ctx) error {
	name := c.Query("name", "World")
	return helper.JsonOK(c, fiber.Map{"greeting": "Hello, " + name + "!"})
}

// =========================================================
// CREATE - POST /api/books
// =========================================================
func (h *BooksController) Create(c *fiber.Ctx) error {
	var req dto.BookRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	m := req.ToModel()
	if err := h.Books.Create(c.UserContext(), m); err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [BOOKS][CREATE] id=%d isbn=%s", m.ID, m.ISBN)
	return helper.JsonCreated(c, m)
}

// =========================================================
// LIST - GET /api/books?isbn=&author=&...&page=&size=&sort=
// =========================================================
func (h *BooksController) List(c *fiber.Ctx) error {
	filter, err := dto.BookFilterFromQuery(c)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	p, err := helper.ParsePageable(c, h.Paging, model.Sortable)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	page, err := h.Books.List(c.UserContext(), filter, p)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, page)
}

// =========================================================
// GET BY ID - GET /api/books/:id
// =========================================================
func (h *BooksController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParamID(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	m, err := h.Books.FindByID(c.UserContext(), id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, m)
}

// =========================================================
// UPDATE - PUT /api/books/:id (full replacement)
// =========================================================
func (h *BooksController) Update(c *fiber.Ctx) error {
	id, err := helper.ParamID(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}

	var req dto.BookRequest
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

	m, err := h.Books.FindByID(c.UserContext(), id)
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	req.ApplyToModel(m)
	if err := h.Books.Update(c.UserContext(), m); err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [BOOKS][UPDATE] id=%d", m.ID)
	return helper.JsonOK(c, m)
}

// =========================================================
// DELETE - DELETE /api/books/:id
// =========================================================
func (h *BooksController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParamID(c, "id")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	if err := h.Books.Delete(c.UserContext(), id); err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [BOOKS][DELETE] id=%d", id)
	return helper.JsonDeleted(c, "book deleted")
}

// =========================================================
// FIND BY ISBN - GET /api/books/isbn/:isbn
// 200 when stored, 201 when fetched from Open Library and persisted
// =========================================================
func (h *BooksController) FindByISBN(c *fiber.Ctx) error {
	m, created, err := h.Lookup.FindOrFetch(c.UserContext(), c.Params("isbn"))
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	if created {
		return helper.JsonCreated(c, m)
	}
	return helper.JsonOK(c, m)
}
