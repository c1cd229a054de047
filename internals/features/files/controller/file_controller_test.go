package controller_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf_backend/internals/configs"
	"bookshelf_backend/internals/features/files/controller"
	"bookshelf_backend/internals/features/files/dto"
	"bookshelf_backend/internals/features/files/route"
	helper "bookshelf_backend/internals/helpers"
	ossHelper "bookshelf_backend/internals/helpers/oss"
)

func newApp(t *testing.T, configured bool) *fiber.App {
	t.Helper()
	var svc *ossHelper.OSSService
	if configured {
		var err error
		svc, err = ossHelper.NewOSSService(configs.OSSConfig{
			Endpoint:       "oss-ap-southeast-1.aliyuncs.com",
			AccessKey:      "ak",
			SecretKey:      "sk",
			Bucket:         "bookshelf-test",
			Folder:         "trainee",
			PresignExpires: time.Minute,
		})
		require.NoError(t, err)
	}
	app := fiber.New(fiber.Config{
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: helper.FromFiberError,
	})
	route.FileRoutes(app.Group("/api/files"), controller.NewFileController(svc))
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body, contentType string) (int, dto.PresignResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if contentType != "" {
		req.Header.Set("x-content-type", contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out dto.PresignResponse
	_ = sonic.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func Test_PresignUpload(t *testing.T) {
	app := newApp(t, true)

	status, out := send(t, app, "POST", "/api/files", `{"key":"covers/a.png"}`, "image/png")
	require.Equal(t, 200, status)
	assert.Equal(t, "PUT", out.Method)
	assert.Equal(t, "trainee/covers/a.png", out.Key)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, "https://bookshelf-test.oss-ap-southeast-1.aliyuncs.com/trainee/covers/a.png", out.ObjectURL)
	assert.Contains(t, out.URL, "bookshelf-test.")
	assert.True(t, out.ExpiresAt.After(time.Now()))

	status, _ = send(t, app, "POST", "/api/files", `{"key":"covers/a.png"}`, "")
	assert.Equal(t, 400, status)
	status, _ = send(t, app, "POST", "/api/files", `{"key":" "}`, "image/png")
	assert.Equal(t, 400, status)
	status, _ = send(t, app, "POST", "/api/files", `{"key":"../secret"}`, "image/png")
	assert.Equal(t, 400, status)
}

func Test_PresignDownload(t *testing.T) {
	app := newApp(t, true)

	status, out := send(t, app, "GET", "/api/files?key=covers/a.png", "", "")
	require.Equal(t, 200, status)
	assert.Equal(t, "GET", out.Method)
	assert.Equal(t, "trainee/covers/a.png", out.Key)

	status, _ = send(t, app, "GET", "/api/files", "", "")
	assert.Equal(t, 400, status)
}

func Test_Files_NotConfigured(t *testing.T) {
	app := newApp(t, false)

	status, _ := send(t, app, "POST", "/api/files", `{"key":"a"}`, "text/plain")
	assert.Equal(t, 503, status)
	status, _ = send(t, app, "GET", "/api/files?key=a", "", "")
	assert.Equal(t, 503, status)
}
