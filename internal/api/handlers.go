package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
	"github.com/zapponejosh/jaarkalender/internal/config"
	"github.com/zapponejosh/jaarkalender/internal/database"
	"github.com/zapponejosh/jaarkalender/internal/export"
	"github.com/zapponejosh/jaarkalender/internal/logger"
	"github.com/zapponejosh/jaarkalender/internal/render"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db      *database.DB // nil when the document cache is disabled
	exports *export.Service
	cfg     *config.Config
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, exports *export.Service, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:      db,
		exports: exports,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db == nil {
		WriteSuccess(w, map[string]string{
			"status": "healthy",
			"cache":  "disabled",
		})
		return
	}

	// Check database health
	if err := h.db.Health(ctx); err != nil {
		h.log(r).Warn("health check failed", slog.Any("error", err))
		WriteUnavailable(w, r, "Document cache unhealthy")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
		"cache":  "enabled",
	})
}

// Index handles GET /?year=YYYY&theme=light|dark
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		var err error
		if year, err = parseYear(s); err != nil {
			WriteBadRequest(w, r, err.Error())
			return
		}
	}

	theme, err := h.theme(r)
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	view, err := calendar.Build(year)
	if err != nil {
		h.writeError(w, r, "build calendar", err)
		return
	}

	var buf bytes.Buffer
	if err := (render.HTML{}).Render(&buf, view, render.Options{Theme: theme, Interactive: true}); err != nil {
		h.writeError(w, r, "render calendar page", err)
		return
	}

	WriteDocument(w, render.HTML{}.ContentType(), "", buf.Bytes())
}

// GetCalendar handles GET /api/v1/calendar/{year}
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	view, err := calendar.Build(year)
	if err != nil {
		h.writeError(w, r, "build calendar", err)
		return
	}

	WriteSuccess(w, view)
}

// GetMonth handles GET /api/v1/calendar/{year}/months/{month}
func (h *Handlers) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	monthStr := chi.URLParam(r, "month")
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		WriteBadRequest(w, r, fmt.Sprintf("Invalid month: %s. Use 1-12", monthStr))
		return
	}

	grid, err := calendar.BuildMonth(year, time.Month(month), nil)
	if err != nil {
		h.writeError(w, r, "build month", err)
		return
	}

	WriteSuccess(w, grid)
}

// holidaysResponse is the payload of GET /api/v1/holidays/{year}.
type holidaysResponse struct {
	Year     int                `json:"year"`
	Count    int                `json:"count"`
	Holidays []calendar.Holiday `json:"holidays"`
}

// GetHolidays handles GET /api/v1/holidays/{year}
func (h *Handlers) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	set, err := calendar.Holidays(year)
	if err != nil {
		h.writeError(w, r, "build holidays", err)
		return
	}

	WriteSuccess(w, holidaysResponse{
		Year:     year,
		Count:    set.Len(),
		Holidays: set.List(),
	})
}

// easterResponse is the payload of GET /api/v1/easter/{year}.
type easterResponse struct {
	Year   int                `json:"year"`
	Easter calendar.Date      `json:"easter"`
	Feasts []calendar.Holiday `json:"feasts"`
}

// GetEaster handles GET /api/v1/easter/{year}
func (h *Handlers) GetEaster(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	WriteSuccess(w, easterResponse{
		Year:   year,
		Easter: calendar.Easter(year),
		Feasts: calendar.MovableFeasts(year),
	})
}

// weekResponse is the payload of GET /api/v1/weeks/{date}.
type weekResponse struct {
	Date        calendar.Date `json:"date"`
	Week        int           `json:"week"`
	Weekday     string        `json:"weekday"`
	Weekend     bool          `json:"weekend"`
	Holiday     bool          `json:"holiday"`
	HolidayName string        `json:"holiday_name,omitempty"`
}

// GetWeek handles GET /api/v1/weeks/{YYYY-MM-DD}
func (h *Handlers) GetWeek(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	date, err := calendar.ParseDate(dateStr)
	if err != nil {
		WriteBadRequest(w, r, fmt.Sprintf("Invalid date: %s. Use YYYY-MM-DD", dateStr))
		return
	}

	set, err := calendar.Holidays(date.Year)
	if err != nil {
		h.writeError(w, r, "build holidays", err)
		return
	}
	name, holiday := set.Name(date)

	WriteSuccess(w, weekResponse{
		Date:        date,
		Week:        calendar.ISOWeek(date),
		Weekday:     calendar.WeekdayName(date.Weekday()),
		Weekend:     date.IsWeekend(),
		Holiday:     holiday,
		HolidayName: name,
	})
}

// Export handles GET /api/v1/export/{year}?format=pdf&theme=light&page_size=A4&landscape=false
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	query := r.URL.Query()
	req := export.Request{
		Year:     year,
		Format:   query.Get("format"),
		Theme:    query.Get("theme"),
		PageSize: query.Get("page_size"),
	}
	if req.Format == "" {
		req.Format = string(render.FormatPDF)
	}
	if s := query.Get("landscape"); s != "" {
		if req.Landscape, err = strconv.ParseBool(s); err != nil {
			WriteBadRequest(w, r, fmt.Sprintf("Invalid landscape value: %s", s))
			return
		}
	}

	doc, err := h.exports.Export(ctx, req)
	if err != nil {
		h.writeError(w, r, "export calendar", err)
		return
	}

	etag := strconv.Quote(doc.SHA256)
	w.Header().Set("ETag", etag)
	w.Header().Set("X-Cache", cacheStatus(doc.Cached))
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	WriteDocument(w, doc.ContentType, doc.Filename, doc.Content)
}

// exportsResponse is the payload of GET /api/v1/admin/exports.
type exportsResponse struct {
	Caching   bool                 `json:"caching"`
	Stats     *database.CacheStats `json:"stats"`
	Documents []database.Document  `json:"documents"`
}

// ListExports handles GET /api/v1/admin/exports?year=YYYY
func (h *Handlers) ListExports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := optionalYear(r)
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	docs, err := h.exports.Cached(ctx, year)
	if err != nil {
		h.writeError(w, r, "list cached exports", err)
		return
	}

	stats, err := h.exports.Stats(ctx)
	if err != nil {
		h.writeError(w, r, "read cache stats", err)
		return
	}

	WriteSuccess(w, exportsResponse{
		Caching:   h.exports.Caching(),
		Stats:     stats,
		Documents: docs,
	})
}

// PurgeExports handles DELETE /api/v1/admin/exports?year=YYYY
func (h *Handlers) PurgeExports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := optionalYear(r)
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	removed, err := h.exports.Purge(ctx, year)
	if err != nil {
		h.writeError(w, r, "purge cached exports", err)
		return
	}

	WriteSuccess(w, map[string]int64{"removed": removed})
}

// =============================================================================
// Helpers
// =============================================================================

// parseYear parses and range-checks a year path or query value.
func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year: %s. Use %d-%d", s, calendar.MinYear, calendar.MaxYear)
	}
	if err := calendar.ValidateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

// optionalYear reads ?year=, returning 0 when absent.
func optionalYear(r *http.Request) (int, error) {
	s := r.URL.Query().Get("year")
	if s == "" {
		return 0, nil
	}
	return parseYear(s)
}

// theme reads ?theme=, falling back to the configured default.
func (h *Handlers) theme(r *http.Request) (render.Theme, error) {
	name := r.URL.Query().Get("theme")
	if name == "" {
		name = h.cfg.DefaultTheme
	}
	return render.ParseTheme(name)
}

// isClientError reports whether err was caused by bad input.
func isClientError(err error) bool {
	for _, target := range []error{
		calendar.ErrInvalidYear,
		calendar.ErrInvalidMonth,
		calendar.ErrInvalidDate,
		render.ErrUnknownFormat,
		render.ErrUnknownTheme,
		export.ErrInvalidRequest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError maps err to a 400 or 500 response. Server errors are logged.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if isClientError(err) {
		WriteBadRequest(w, r, err.Error())
		return
	}
	h.log(r).Error("failed to "+op, slog.Any("error", err), slog.String("path", r.URL.Path))
	WriteInternalError(w, r, "Failed to "+op)
}

// log returns the handler logger tagged with the request ID.
func (h *Handlers) log(r *http.Request) *slog.Logger {
	return logger.FromContext(r.Context(), h.logger)
}

// etagMatches reports whether an If-None-Match value names etag. The
// value may be "*" or a comma-separated list; comparison is weak, so W/
// prefixes are ignored.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}

func cacheStatus(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}
