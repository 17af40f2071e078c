// Package export renders calendar documents and keeps rendered output in
// an optional document cache.
package export

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
	"github.com/zapponejosh/jaarkalender/internal/database"
	"github.com/zapponejosh/jaarkalender/internal/logger"
	"github.com/zapponejosh/jaarkalender/internal/render"
)

// ErrInvalidRequest is returned when an export request fails validation.
var ErrInvalidRequest = errors.New("invalid export request")

var validate = validator.New()

// Store is the document cache used by Service. *database.DB implements it.
type Store interface {
	GetDocument(ctx context.Context, key database.DocumentKey) (*database.Document, error)
	PutDocument(ctx context.Context, doc *database.Document) error
	ListDocuments(ctx context.Context, year int) ([]database.Document, error)
	DeleteDocuments(ctx context.Context, year int) (int64, error)
	CacheStats(ctx context.Context) (*database.CacheStats, error)
}

// Request describes one document to export. PageSize applies to PDF only;
// it defaults to the service page size and is cleared for other formats.
type Request struct {
	Year      int    `validate:"min=1,max=9999"`
	Format    string `validate:"required,oneof=pdf html txt json yaml csv ics"`
	Theme     string `validate:"required,oneof=light dark"`
	PageSize  string `validate:"omitempty,oneof=A4 A3 Letter"`
	Landscape bool
}

// Options configures a Service.
type Options struct {
	DefaultTheme string // used when a request leaves Theme empty
	PageSize     string // PDF page size
}

// Service renders year calendars into documents.
type Service struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// NewService creates an export service. A nil store disables caching.
func NewService(store Store, opts Options, logger *slog.Logger) *Service {
	if opts.DefaultTheme == "" {
		opts.DefaultTheme = string(render.ThemeLight)
	}
	if opts.PageSize == "" {
		opts.PageSize = "A4"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, opts: opts, logger: logger}
}

// Caching reports whether rendered documents are cached.
func (s *Service) Caching() bool {
	return s.store != nil
}

// Export renders the requested document, serving it from the cache when
// possible. Cache failures are logged and never fail the export.
func (s *Service) Export(ctx context.Context, req Request) (*database.Document, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.logger).With("year", req.Year, "format", req.Format, "theme", req.Theme, "page_size", req.PageSize)
	key := database.DocumentKey{Year: req.Year, Format: req.Format, Theme: req.Theme, PageSize: req.PageSize}

	// Landscape pages are rendered on demand; the cache holds the default
	// layout only.
	cacheable := s.store != nil && !req.Landscape

	if cacheable {
		doc, err := s.store.GetDocument(ctx, key)
		switch {
		case err == nil:
			doc.Cached = true
			log.Debug("export served from cache", "size", bytefmt.ByteSize(uint64(doc.Size)), "hits", doc.Hits)
			return doc, nil
		case !database.IsNotFound(err):
			log.Warn("cache lookup failed", "error", err)
		}
	}

	start := time.Now()
	doc, err := s.render(req)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.store.PutDocument(ctx, doc); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}

	log.Info("export rendered",
		"size", bytefmt.ByteSize(uint64(doc.Size)),
		"landscape", req.Landscape,
		"duration", time.Since(start),
	)
	return doc, nil
}

// ExportYears exports several years concurrently. Results are in the
// order of years; a repeated year is rendered once and shares its
// document. The first failure cancels the remaining work.
func (s *Service) ExportYears(ctx context.Context, years []int, format, theme string, landscape bool) ([]*database.Document, error) {
	unique := slices.Clone(years)
	slices.Sort(unique)
	unique = slices.Compact(unique)
	rendered := make([]*database.Document, len(unique))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, year := range unique {
		i, year := i, year
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := s.Export(ctx, Request{Year: year, Format: format, Theme: theme, Landscape: landscape})
			if err != nil {
				return fmt.Errorf("export %d: %w", year, err)
			}
			rendered[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]*database.Document, len(years))
	for i, year := range years {
		j, _ := slices.BinarySearch(unique, year)
		docs[i] = rendered[j]
	}
	return docs, nil
}

// Cached lists cached document metadata for a year, or all years when
// year is 0.
func (s *Service) Cached(ctx context.Context, year int) ([]database.Document, error) {
	if s.store == nil {
		return []database.Document{}, nil
	}
	return s.store.ListDocuments(ctx, year)
}

// Stats summarizes the cache. Without a store the stats are zero.
func (s *Service) Stats(ctx context.Context) (*database.CacheStats, error) {
	if s.store == nil {
		return &database.CacheStats{}, nil
	}
	return s.store.CacheStats(ctx)
}

// Purge drops cached documents of a year, or all of them when year is 0.
func (s *Service) Purge(ctx context.Context, year int) (int64, error) {
	if year != 0 {
		if err := calendar.ValidateYear(year); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	if s.store == nil {
		return 0, nil
	}
	return s.store.DeleteDocuments(ctx, year)
}

func (s *Service) render(req Request) (*database.Document, error) {
	renderer, err := render.ForFormat(req.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	view, err := calendar.Build(req.Year)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	var buf bytes.Buffer
	opts := render.Options{
		Theme:     render.Theme(req.Theme),
		PageSize:  req.PageSize,
		Landscape: req.Landscape,
	}
	if err := renderer.Render(&buf, view, opts); err != nil {
		return nil, fmt.Errorf("render %s: %w", req.Format, err)
	}

	sum := sha256.Sum256(buf.Bytes())
	now := time.Now().UTC()
	return &database.Document{
		Year:        req.Year,
		Format:      req.Format,
		Theme:       req.Theme,
		PageSize:    req.PageSize,
		ContentType: renderer.ContentType(),
		Filename:    render.Filename(req.Year, renderer.Format()),
		Content:     buf.Bytes(),
		SHA256:      hex.EncodeToString(sum[:]),
		Size:        int64(buf.Len()),
		CreatedAt:   now,
		AccessedAt:  now,
	}, nil
}

// normalize applies defaults and validates req.
func (s *Service) normalize(req Request) (Request, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	req.Theme = strings.ToLower(strings.TrimSpace(req.Theme))
	if req.Theme == "" {
		req.Theme = s.opts.DefaultTheme
	}
	switch {
	case req.Format != string(render.FormatPDF):
		req.PageSize = ""
	case req.PageSize == "":
		req.PageSize = s.opts.PageSize
	}

	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %s", ErrInvalidRequest, describe(err))
	}
	return req, nil
}

// describe turns validator errors into a short message naming each field.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s; got %q", strings.ToLower(fe.Field()), fe.Param(), fe.Value()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be between %d and %d; got %v", strings.ToLower(fe.Field()), calendar.MinYear, calendar.MaxYear, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
