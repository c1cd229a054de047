package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf_backend/internals/configs"
	"bookshelf_backend/internals/features/library/books/dto"
	model "bookshelf_backend/internals/features/library/books/model"
	"bookshelf_backend/internals/features/library/books/repository"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
)

const zenISBN = "0385472579"

const zenSpeaks = `{"ISBN:0385472579": {
  "publishers": [{"name": "Anchor Books"}],
  "pagination": "159 p. :",
  "subtitle": "shouts of nothingness",
  "title": "Zen speaks",
  "url": "https://openlibrary.org/books/OL1397864M/Zen_speaks",
  "number_of_pages": 159,
  "cover": {
    "small": "https://covers.openlibrary.org/b/id/240726-S.jpg",
    "large": "https://covers.openlibrary.org/b/id/240726-L.jpg",
    "medium": "https://covers.openlibrary.org/b/id/240726-M.jpg"
  },
  "publish_date": "1994",
  "key": "/books/OL1397864M",
  "authors": [{"url": "https://openlibrary.org/authors/OL223368A/Zhizhong_Cai", "name": "Zhizhong Cai"}],
  "publish_places": [{"name": "New York"}]
}}`

// remote starts a fake Open Library answering every request with status/body.
func remote(t *testing.T, status int, body string) (*OpenLibraryClient, *atomic.Int32) {
	t.Helper()
	calls := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "ISBN:"+zenISBN, r.URL.Query().Get("bibkeys"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewOpenLibraryClient(configs.OpenLibraryConfig{
		URL:     srv.URL + "/api/books?bibkeys=ISBN:{isbn}&format=json&jscmd=data",
		Timeout: 2 * time.Second,
	}), calls
}

func countBooks(t *testing.T, repo repository.Repository) int64 {
	t.Helper()
	page, err := repo.List(context.Background(), model.BookFilter{}, helper.Pageable{Size: 10})
	require.NoError(t, err)
	return page.TotalElements
}

func Test_FindOrFetch_RemoteRecordIsPersisted(t *testing.T) {
	client, calls := remote(t, http.StatusOK, zenSpeaks)
	repo := repository.NewMemoryRepository()
	svc := NewLookupService(repo, client)

	book, created, err := svc.FindOrFetch(context.Background(), zenISBN)

	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, book.ID)
	assert.Equal(t, zenISBN, book.ISBN)
	assert.Equal(t, "Zen speaks", book.Title)
	assert.Equal(t, "shouts of nothingness", book.Subtitle)
	assert.Equal(t, "Zhizhong Cai", book.Author)
	assert.Equal(t, "Anchor Books", book.Publisher)
	assert.Equal(t, "1994", book.Year)
	assert.Equal(t, 159, book.Pages)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/240726-L.jpg", book.Image)
	assert.Nil(t, book.Genre)

	// second call is served locally
	again, created, err := svc.FindOrFetch(context.Background(), zenISBN)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, again.Equal(book))
	assert.Equal(t, int32(1), calls.Load())
}

func Test_FindOrFetch_LocalHitSkipsRemote(t *testing.T) {
	client, calls := remote(t, http.StatusInternalServerError, "")
	repo := repository.NewMemoryRepository()
	stored := &model.BookModel{ISBN: zenISBN, Author: "a", Image: "i", Pages: 1, Publisher: "p", Subtitle: "s", Title: "t", Year: "2000"}
	require.NoError(t, repo.Create(context.Background(), stored))

	got, created, err := NewLookupService(repo, client).FindOrFetch(context.Background(), zenISBN)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, got.ID)
	assert.Zero(t, calls.Load())
}

func Test_FindOrFetch_Failures(t *testing.T) {
	withoutTitle := strings.Replace(zenSpeaks, `"title": "Zen speaks",`, "", 1)
	noYear := strings.Replace(zenSpeaks, `"publish_date": "1994"`, `"publish_date": "someday"`, 1)
	noPages := strings.Replace(zenSpeaks, `"number_of_pages": 159`, `"number_of_pages": 0`, 1)
	pagesAsText := strings.Replace(zenSpeaks, `"number_of_pages": 159`, `"number_of_pages": "many"`, 1)

	cases := []struct {
		name   string
		status int
		body   string
		want   error
		code   int
	}{
		{"remote non-200", http.StatusServiceUnavailable, "oops", apperr.ErrDependencyFailure, http.StatusFailedDependency},
		{"remote 404", http.StatusNotFound, "{}", apperr.ErrDependencyFailure, http.StatusFailedDependency},
		{"missing title", http.StatusOK, withoutTitle, apperr.ErrParseFailure, http.StatusNotAcceptable},
		{"no year in publish date", http.StatusOK, noYear, apperr.ErrParseFailure, http.StatusNotAcceptable},
		{"zero pages", http.StatusOK, noPages, apperr.ErrParseFailure, http.StatusNotAcceptable},
		{"malformed field", http.StatusOK, pagesAsText, apperr.ErrParseFailure, http.StatusNotAcceptable},
		{"not json", http.StatusOK, "<html>", apperr.ErrParseFailure, http.StatusNotAcceptable},
		{"remote empty", http.StatusOK, "{}", apperr.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := remote(t, tc.status, tc.body)
			repo := repository.NewMemoryRepository()

			book, created, err := NewLookupService(repo, client).FindOrFetch(context.Background(), zenISBN)

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.code, apperr.StatusOf(err))
			assert.Nil(t, book)
			assert.False(t, created)
			assert.Zero(t, countBooks(t, repo), "nothing may be persisted on failure")
		})
	}
}

func Test_FindOrFetch_NetworkErrorIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewOpenLibraryClient(configs.OpenLibraryConfig{URL: url + "/?bibkeys=ISBN:{isbn}", Timeout: time.Second})
	_, _, err := NewLookupService(repository.NewMemoryRepository(), client).FindOrFetch(context.Background(), zenISBN)

	assert.ErrorIs(t, err, apperr.ErrParseFailure)
}

func Test_FindOrFetch_TimeoutIsBounded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() { close(release); srv.Close() })

	client := NewOpenLibraryClient(configs.OpenLibraryConfig{URL: srv.URL + "/?bibkeys=ISBN:{isbn}", Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, _, err := NewLookupService(repository.NewMemoryRepository(), client).FindOrFetch(context.Background(), zenISBN)

	assert.ErrorIs(t, err, apperr.ErrParseFailure)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func Test_FindOrFetch_BlankISBN(t *testing.T) {
	_, _, err := NewLookupService(repository.NewMemoryRepository(), nil).FindOrFetch(context.Background(), "  ")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func Test_OpenLibraryBook_ToModel_JoinsNames(t *testing.T) {
	b := &dto.OpenLibraryBook{
		ISBN:        "1",
		Title:       "T",
		Subtitle:    "S",
		Publishers:  []string{"P1", "P2"},
		PublishDate: "March 3, 2001",
		Pages:       10,
		Authors:     []string{"A1", "A2"},
		CoverImage:  "img",
	}

	m, err := b.ToModel()

	require.NoError(t, err)
	assert.Equal(t, "A1, A2", m.Author)
	assert.Equal(t, "P1, P2", m.Publisher)
	assert.Equal(t, "2001", m.Year)
	assert.NoError(t, m.Validate())
}
