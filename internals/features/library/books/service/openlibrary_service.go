// file: internals/features/library/books/service/openlibrary_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"bookshelf_backend/internals/configs"
	"bookshelf_backend/internals/features/library/books/dto"
	"bookshelf_backend/internals/helpers/apperr"
)

var tracer = otel.Tracer("bookshelf_backend/books/service")

// max body we are willing to parse from the remote service
const maxRemoteBody = 1 << 20

// OpenLibraryClient fetches book records by ISBN. The URL is a template in
// which "{isbn}" is replaced.
type OpenLibraryClient struct {
	urlTemplate string
	http        *http.Client
	limiter     *rate.Limiter
}

func NewOpenLibraryClient(cfg configs.OpenLibraryConfig) *OpenLibraryClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	tmpl := cfg.URL
	if tmpl == "" {
		tmpl = configs.DefaultOpenLibraryURL
	}
	return &OpenLibraryClient{
		urlTemplate: tmpl,
		http:        &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, burst),
	}
}

// Fetch returns the parsed record for isbn.
//
//   - transport failure or unreadable body: apperr.ErrParseFailure
//   - status other than 200:                apperr.ErrDependencyFailure
//   - no "ISBN:<isbn>" document:            apperr.ErrNotFound
//   - document missing a required field:    apperr.ErrParseFailure
func (c *OpenLibraryClient) Fetch(ctx context.Context, isbn string) (_ *dto.OpenLibraryBook, err error) {
	ctx, span := tracer.Start(ctx, "openlibrary.Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("book.isbn", isbn)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err = c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", apperr.ErrDependencyFailure, err)
	}

	target := strings.ReplaceAll(c.urlTemplate, "{isbn}", url.QueryEscape(isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build open library request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[ERROR] [BOOKS][LOOKUP] isbn=%s transport: %v", isbn, err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseFailure, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	log.Printf("[INFO] [BOOKS][LOOKUP] isbn=%s status=%d dur=%s", isbn, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: open library answered %d", apperr.ErrDependencyFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperr.ErrParseFailure, err)
	}
	return parseOpenLibrary(body, isbn)
}

func parseOpenLibrary(body []byte, isbn string) (*dto.OpenLibraryBook, error) {
	var docs map[string]*dto.OpenLibraryRecord
	if err := sonic.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseFailure, err)
	}
	rec := docs["ISBN:"+isbn]
	if rec == nil {
		return nil, fmt.Errorf("isbn %s unknown to open library: %w", isbn, apperr.ErrNotFound)
	}
	return rec.Parse(isbn)
}
