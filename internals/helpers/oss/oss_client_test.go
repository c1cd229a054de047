package helper

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf_backend/internals/configs"
	"bookshelf_backend/internals/helpers/apperr"
)

func fakeConfig() configs.OSSConfig {
	return configs.OSSConfig{
		Endpoint:       "https://oss-ap-southeast-1.aliyuncs.com",
		AccessKey:      "test-access-key",
		SecretKey:      "test-secret-key",
		Bucket:         "bookshelf-test",
		Folder:         "/trainee/",
		PresignExpires: 2 * time.Minute,
	}
}

func Test_NewOSSService_NotConfigured(t *testing.T) {
	cfg := fakeConfig()
	cfg.Bucket = ""
	_, err := NewOSSService(cfg)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func Test_ObjectKey(t *testing.T) {
	svc, err := NewOSSService(fakeConfig())
	require.NoError(t, err)

	key, err := svc.ObjectKey(" covers/hobbit.jpg ")
	require.NoError(t, err)
	assert.Equal(t, "trainee/covers/hobbit.jpg", key)

	for _, bad := range []string{"", "  ", "/", "a//b", "../etc/passwd", "a/./b"} {
		_, err := svc.ObjectKey(bad)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, bad)
	}
}

func Test_SignURLs(t *testing.T) {
	svc, err := NewOSSService(fakeConfig())
	require.NoError(t, err)

	raw, key, err := svc.SignPutURL("covers/hobbit.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "trainee/covers/hobbit.jpg", key)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.Host, "bookshelf-test."), u.Host)
	assert.Equal(t, "/trainee/covers/hobbit.jpg", u.Path)
	assert.NotEmpty(t, u.Query().Get("Signature"))
	assert.NotEmpty(t, u.Query().Get("Expires"))

	getURL, _, err := svc.SignGetURL("covers/hobbit.jpg")
	require.NoError(t, err)
	assert.NotEqual(t, raw, getURL, "put and get signatures differ")

	_, _, err = svc.SignPutURL("covers/hobbit.jpg", " ")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func Test_ExpiresAt(t *testing.T) {
	svc, err := NewOSSService(fakeConfig())
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(2*time.Minute), svc.ExpiresAt(now))
}

func Test_PublicURL(t *testing.T) {
	svc, err := NewOSSService(fakeConfig())
	require.NoError(t, err)

	assert.Equal(t, "https://bookshelf-test.oss-ap-southeast-1.aliyuncs.com/trainee/covers/hobbit.jpg",
		svc.PublicURL("trainee/covers/hobbit.jpg"))
	assert.Empty(t, svc.PublicURL(""))
}
