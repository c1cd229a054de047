package auth_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	bookRepo "bookshelf_backend/internals/features/library/books/repository"
	authHelper "bookshelf_backend/internals/features/users/auth/helper"
	authRepo "bookshelf_backend/internals/features/users/auth/repository"
	"bookshelf_backend/internals/features/users/auth/service"
	"bookshelf_backend/internals/features/users/user/model"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	helperAuth "bookshelf_backend/internals/helpers/auth"
	"bookshelf_backend/internals/middlewares/auth"
)

func newApp(t *testing.T) (*fiber.App, *service.AuthService) {
	t.Helper()
	users := userRepo.NewMemoryRepository(bookRepo.NewMemoryRepository())
	hash, err := authHelper.HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &model.UserModel{
		Username:  "ana",
		Name:      "Ana",
		BirthDate: datatypes.Date(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)),
		Password:  hash,
	}))

	svc := service.NewAuthService(users, authRepo.NewMemoryRevocationStore(), "secret", time.Minute)
	app := fiber.New()
	app.Get("/whoami", auth.RequireAuth(svc), func(c *fiber.Ctx) error {
		p, _ := helperAuth.PrincipalFrom(c)
		return c.SendString(p.Username)
	})
	return app, svc
}

func call(t *testing.T, app *fiber.App, authorization string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header.Get("WWW-Authenticate")
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func Test_RequireAuth_Basic(t *testing.T) {
	app, _ := newApp(t)

	status, body, _ := call(t, app, basic("ana", "pw"))
	assert.Equal(t, 200, status)
	assert.Equal(t, "ana", body)

	for name, header := range map[string]string{
		"none":         "",
		"wrong pass":   basic("ana", "nope"),
		"unknown user": basic("bob", "pw"),
		"not base64":   "Basic ***",
		"no colon":     "Basic " + base64.StdEncoding.EncodeToString([]byte("ana")),
		"other scheme": "Digest abc",
		"scheme only":  "Basic",
	} {
		t.Run(name, func(t *testing.T) {
			status, _, challenge := call(t, app, header)
			assert.Equal(t, 401, status)
			assert.Contains(t, challenge, "Basic")
		})
	}
}

func Test_RequireAuth_Bearer(t *testing.T) {
	app, svc := newApp(t)

	token, _, err := svc.IssueToken(helperAuth.Principal{Username: "ana"})
	require.NoError(t, err)

	status, body, _ := call(t, app, "Bearer "+token)
	assert.Equal(t, 200, status)
	assert.Equal(t, "ana", body)

	status, _, _ = call(t, app, "bearer  \""+token+"\"")
	assert.Equal(t, 200, status)

	require.NoError(t, svc.Revoke(context.Background(), token))
	status, _, _ = call(t, app, "Bearer "+token)
	assert.Equal(t, 401, status)

	status, _, _ = call(t, app, "Bearer nonsense")
	assert.Equal(t, 401, status)
}
