// file: internals/features/library/books/service/lookup_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"bookshelf_backend/internals/features/library/books/dto"
	model "bookshelf_backend/internals/features/library/books/model"
	"bookshelf_backend/internals/features/library/books/repository"
	"bookshelf_backend/internals/helpers/apperr"
)

// BookFetcher is the remote side of a lookup.
type BookFetcher interface {
	Fetch(ctx context.Context, isbn string) (*dto.OpenLibraryBook, error)
}

var lookupOutcomes metric.Int64Counter

func init() {
	c, err := otel.Meter("bookshelf_backend/books/service").Int64Counter(
		"books.lookup.outcomes",
		metric.WithDescription("ISBN lookups by outcome"),
	)
	if err != nil {
		log.Printf("[WARN] lookup counter disabled: %v", err)
		return
	}
	lookupOutcomes = c
}

type LookupService struct {
	Books  repository.Repository
	Remote BookFetcher
}

func NewLookupService(books repository.Repository, remote BookFetcher) *LookupService {
	return &LookupService{Books: books, Remote: remote}
}

// FindOrFetch returns the stored book with this ISBN, or fetches, persists
// and returns it. created reports whether the book was just persisted.
func (s *LookupService) FindOrFetch(ctx context.Context, isbn string) (book *model.BookModel, created bool, err error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, false, fmt.Errorf("%w: isbn is required", apperr.ErrInvalidArgument)
	}
	defer func() { record(ctx, created, err) }()

	book, err = s.Books.FindByISBN(ctx, isbn)
	if err == nil {
		return book, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	remote, err := s.Remote.Fetch(ctx, isbn)
	if err != nil {
		return nil, false, err
	}
	book, err = remote.ToModel()
	if err != nil {
		return nil, false, err
	}
	if verr := book.Validate(); verr != nil {
		// a record we cannot turn into a valid book is a parse failure, not a bad request
		return nil, false, fmt.Errorf("%w: %v", apperr.ErrParseFailure, verr)
	}
	if err = s.Books.Create(ctx, book); err != nil {
		return nil, false, err
	}
	log.Printf("[INFO] [BOOKS][LOOKUP] isbn=%s stored as id=%d", isbn, book.ID)
	return book, true, nil
}

func record(ctx context.Context, created bool, err error) {
	if lookupOutcomes == nil {
		return
	}
	outcome := "found"
	switch {
	case err != nil:
		outcome = strings.ToLower(apperr.KindOf(err).String())
	case created:
		outcome = "created"
	}
	lookupOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
