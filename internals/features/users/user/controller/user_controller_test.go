package controller_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	bookModel "bookshelf_backend/internals/features/library/books/model"
	bookRepo "bookshelf_backend/internals/features/library/books/repository"
	authHelper "bookshelf_backend/internals/features/users/auth/helper"
	"bookshelf_backend/internals/features/users/user/controller"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	"bookshelf_backend/internals/features/users/user/route"
	helper "bookshelf_backend/internals/helpers"
	helperAuth "bookshelf_backend/internals/helpers/auth"
)

type env struct {
	app   *fiber.App
	books *bookRepo.MemoryRepository
	users *userRepo.MemoryRepository
}

// newEnv mounts the user routes; X-Test-User stands in for the auth
// middleware.
func newEnv(t *testing.T) env {
	t.Helper()
	books := bookRepo.NewMemoryRepository()
	users := userRepo.NewMemoryRepository(books)
	books.OnDelete = users.UnlinkBook

	app := fiber.New(fiber.Config{
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: helper.FromFiberError,
	})
	app.Use(func(c *fiber.Ctx) error {
		if u := c.Get("X-Test-User"); u != "" {
			helperAuth.SetPrincipal(c, helperAuth.Principal{Username: u})
		}
		return c.Next()
	})
	ctl := controller.NewUserController(users, books, helper.Options{DefaultSize: 20, MaxSize: 50}, bcrypt.MinCost)
	route.UserPublicRoutes(app.Group("/api/users"), ctl)
	route.UserRoutes(app.Group("/api/users"), ctl)
	return env{app: app, books: books, users: users}
}

func (e env) do(t *testing.T, method, path string, body any, user string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = sonic.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func (e env) register(t *testing.T, username, name, birth string) int64 {
	t.Helper()
	status, body := e.do(t, "POST", "/api/users", map[string]any{
		"username": username, "name": name, "birthDate": birth, "password": "pw",
	}, "")
	require.Equal(t, 201, status, body)
	return int64(body["id"].(float64))
}

func (e env) book(t *testing.T, isbn string) int64 {
	t.Helper()
	b := &bookModel.BookModel{
		ISBN: isbn, Author: "A", Image: "i", Pages: 1, Publisher: "P",
		Subtitle: "S", Title: "T " + isbn, Year: "2001",
	}
	require.NoError(t, e.books.Create(context.Background(), b))
	return b.ID
}

func Test_Create_HashesPassword(t *testing.T) {
	e := newEnv(t)
	id := e.register(t, "ana", "Ana Lopez", "1990-04-02")

	u, err := e.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotEqual(t, "pw", u.Password)
	assert.NoError(t, authHelper.CheckPasswordHash(u.Password, "pw"))

	status, body := e.do(t, "GET", fmt.Sprintf("/api/users/%d", id), nil, "ana")
	require.Equal(t, 200, status)
	assert.Equal(t, "1990-04-02", body["birthDate"])
	assert.NotContains(t, body, "password")
	assert.Equal(t, []any{}, body["books"])
}

func Test_Create_Validation(t *testing.T) {
	e := newEnv(t)
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	for name, body := range map[string]map[string]any{
		"future birth": {"username": "a", "name": "A", "birthDate": tomorrow, "password": "pw"},
		"bad date":     {"username": "a", "name": "A", "birthDate": "02/04/1990", "password": "pw"},
		"blank name":   {"username": "a", "name": "  ", "birthDate": "1990-01-01", "password": "pw"},
		"no password":  {"username": "a", "name": "A", "birthDate": "1990-01-01"},
	} {
		t.Run(name, func(t *testing.T) {
			status, out := e.do(t, "POST", "/api/users", body, "")
			assert.Equal(t, 400, status)
			assert.Equal(t, "VALIDATION_ERROR", out["error_code"])
		})
	}
}

func Test_Self(t *testing.T) {
	e := newEnv(t)
	e.register(t, "ana", "Ana", "1990-04-02")

	status, _ := e.do(t, "GET", "/api/users/self", nil, "")
	assert.Equal(t, 401, status)

	status, body := e.do(t, "GET", "/api/users/self", nil, "ana")
	require.Equal(t, 200, status)
	assert.Equal(t, "ana", body["username"])

	// principal whose user no longer exists
	status, _ = e.do(t, "GET", "/api/users/self", nil, "ghost")
	assert.Equal(t, 401, status)
}

func Test_Update(t *testing.T) {
	e := newEnv(t)
	id := e.register(t, "ana", "Ana", "1990-04-02")
	path := fmt.Sprintf("/api/users/%d", id)

	status, _ := e.do(t, "PUT", path, map[string]any{"id": id + 1, "username": "ana", "name": "Ana B", "birthDate": "1990-04-02"}, "ana")
	assert.Equal(t, 400, status)

	status, _ = e.do(t, "PUT", "/api/users/99", map[string]any{"id": 99, "username": "x", "name": "X", "birthDate": "1990-04-02"}, "ana")
	assert.Equal(t, 404, status)

	status, body := e.do(t, "PUT", path, map[string]any{"id": id, "username": "ana", "name": "Ana B", "birthDate": "1991-05-06"}, "ana")
	require.Equal(t, 200, status)
	assert.Equal(t, "Ana B", body["name"])
	assert.Equal(t, "1991-05-06", body["birthDate"])

	u, err := e.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.NoError(t, authHelper.CheckPasswordHash(u.Password, "pw"), "update keeps the password")
}

func Test_Delete(t *testing.T) {
	e := newEnv(t)
	id := e.register(t, "ana", "Ana", "1990-04-02")
	path := fmt.Sprintf("/api/users/%d", id)

	status, _ := e.do(t, "DELETE", path, nil, "ana")
	assert.Equal(t, 200, status)
	status, _ = e.do(t, "DELETE", path, nil, "ana")
	assert.Equal(t, 404, status)
}

func Test_List_FilterAndPage(t *testing.T) {
	e := newEnv(t)
	e.register(t, "ana", "Ana Lopez", "1990-04-02")
	e.register(t, "ben", "Ben Lopez", "1985-11-30")
	e.register(t, "cy", "Cy Young", "2001-01-01")

	status, body := e.do(t, "GET", "/api/users?name=Lopez&sort=birthDate", nil, "ana")
	require.Equal(t, 200, status)
	content := body["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "ben", content[0].(map[string]any)["username"])
	assert.Equal(t, float64(2), body["totalElements"])

	status, body = e.do(t, "GET", "/api/users?birthDateFrom=1990-04-02&birthDateTo=2000-12-31", nil, "ana")
	require.Equal(t, 200, status)
	assert.Equal(t, float64(1), body["totalElements"])

	status, body = e.do(t, "GET", "/api/users?size=2&page=5", nil, "ana")
	require.Equal(t, 200, status)
	assert.Empty(t, body["content"])
	assert.Equal(t, float64(3), body["totalElements"])
	assert.Equal(t, float64(2), body["totalPages"])

	status, _ = e.do(t, "GET", "/api/users?birthDateFrom=yesterday", nil, "ana")
	assert.Equal(t, 400, status)
	status, _ = e.do(t, "GET", "/api/users?sort=password", nil, "ana")
	assert.Equal(t, 400, status)
}

func Test_BookCollection(t *testing.T) {
	e := newEnv(t)
	userID := e.register(t, "ana", "Ana", "1990-04-02")
	b1, b2 := e.book(t, "111"), e.book(t, "222")
	add := func(bookID int64) (int, map[string]any) {
		return e.do(t, "PUT", fmt.Sprintf("/api/users/%d/books/%d", userID, bookID), nil, "ana")
	}
	remove := func(bookID int64) (int, map[string]any) {
		return e.do(t, "DELETE", fmt.Sprintf("/api/users/%d/books/%d", userID, bookID), nil, "ana")
	}

	status, _ := add(b1)
	require.Equal(t, 200, status)
	status, body := add(b2)
	require.Equal(t, 200, status)
	assert.Len(t, body["books"], 2)

	status, _ = add(b1)
	assert.Equal(t, 409, status)
	status, _ = add(999)
	assert.Equal(t, 404, status)
	status, _ = e.do(t, "PUT", fmt.Sprintf("/api/users/999/books/%d", b1), nil, "ana")
	assert.Equal(t, 404, status)

	status, body = remove(b1)
	require.Equal(t, 200, status)
	assert.Len(t, body["books"], 1)
	status, _ = remove(b1)
	assert.Equal(t, 404, status)

	u, err := e.users.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b2}, u.BookIDs())
}
