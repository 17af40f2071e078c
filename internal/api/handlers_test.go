package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/jaarkalender/internal/config"
	"github.com/zapponejosh/jaarkalender/internal/database"
	"github.com/zapponejosh/jaarkalender/internal/export"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

// testEnv sets up a complete test environment with database, config, and router
type testEnv struct {
	db       *database.DB
	cfg      *config.Config
	handlers *Handlers
	router   http.Handler
	apiKey   string
}

// setupTest creates a fresh test environment
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	db, err := database.Open(database.MemoryConfig(), logger)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(context.Background())
	require.NoError(t, err, "migrate test database")

	apiKey := "admin-test-key-32-characters-minimum-length"
	cfg := &config.Config{
		Port:         8080,
		Env:          config.EnvProduction,
		DatabasePath: ":memory:",
		CacheExports: true,
		APIKey:       apiKey,
		DefaultTheme: "light",
		PDFPageSize:  "A4",
		LogLevel:     "error",
		LogFormat:    "text",
	}

	exports := export.NewService(db, export.Options{
		DefaultTheme: cfg.DefaultTheme,
		PageSize:     cfg.PDFPageSize,
	}, logger)
	handlers := NewHandlers(db, exports, cfg, logger)
	handlers.now = func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }

	return &testEnv{
		db:       db,
		cfg:      cfg,
		handlers: handlers,
		router:   SetupRoutes(handlers, cfg, logger),
		apiKey:   apiKey,
	}
}

// do sends a request through the full router
func (env *testEnv) do(method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// envelope mirrors Response with raw data for per-test decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
}

// parseResponse parses the JSON envelope and decodes data into v (if non-nil)
func parseResponse(t *testing.T, rr *httptest.ResponseRecorder, v any) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
	if v != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("decode data: %v, data: %s", err, env.Data)
		}
	}
	return env
}

// =============================================================================
// MIDDLEWARE TESTS
// =============================================================================

func TestAuthMiddleware(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name   string
		apiKey string
		want   int
	}{
		{"valid key", env.apiKey, http.StatusOK},
		{"missing key", "", http.StatusUnauthorized},
		{"invalid key", "key_invalid123456789", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(http.MethodGet, "/api/v1/admin/exports", tt.apiKey)
			if rr.Code != tt.want {
				t.Errorf("Status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_DevelopmentWithoutKey(t *testing.T) {
	cfg := &config.Config{Env: config.EnvDevelopment}
	handler := AuthMiddleware(cfg, slog.Default())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/health", "")
	id := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-ID = %q, want a UUID", id)
	}

	// A valid incoming ID is propagated
	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != incoming {
		t.Errorf("X-Request-ID = %q, want %q", got, incoming)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodOptions, "/api/v1/holidays/2024", "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

// =============================================================================
// PUBLIC ENDPOINT TESTS
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var data map[string]string
	resp := parseResponse(t, rr, &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "enabled", data["cache"])
}

func TestHealthCheck_CacheDisabled(t *testing.T) {
	cfg := &config.Config{DefaultTheme: "light"}
	h := NewHandlers(nil, export.NewService(nil, export.Options{}, slog.Default()), cfg, slog.Default())

	rr := httptest.NewRecorder()
	h.HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var data map[string]string
	parseResponse(t, rr, &data)
	assert.Equal(t, "disabled", data["cache"])
}

func TestIndex(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "<title>Kalender 2024</title>")
	assert.Contains(t, body, `href="/?year=2023`)

	rr = env.do(http.MethodGet, "/?year=2025&theme=dark", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<body class="dark">`)
	assert.Contains(t, rr.Body.String(), "<title>Kalender 2025</title>")

	for _, path := range []string{"/?year=abc", "/?year=0", "/?theme=sepia"} {
		rr = env.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
	}
}

func TestGetCalendar(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/calendar/2024", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var view struct {
		Year   int `json:"year"`
		Months []struct {
			Month int    `json:"month"`
			Name  string `json:"name"`
		} `json:"months"`
		Holidays []struct {
			Date string `json:"date"`
		} `json:"holidays"`
	}
	parseResponse(t, rr, &view)
	assert.Equal(t, 2024, view.Year)
	require.Len(t, view.Months, 12)
	assert.Equal(t, 1, view.Months[0].Month)
	assert.Equal(t, "december", view.Months[11].Name)
	assert.Len(t, view.Holidays, 9)
}

func TestGetCalendar_InvalidYear(t *testing.T) {
	env := setupTest(t)

	for _, year := range []string{"0", "10000", "-5", "twenty"} {
		rr := env.do(http.MethodGet, "/api/v1/calendar/"+year, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("year %s: Status = %d, want %d", year, rr.Code, http.StatusBadRequest)
			continue
		}
		resp := parseResponse(t, rr, nil)
		if resp.Error == nil || resp.Error.Code != "BAD_REQUEST" {
			t.Errorf("year %s: error = %+v, want BAD_REQUEST", year, resp.Error)
		}
	}
}

func TestGetMonth(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/calendar/2024/months/2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var grid struct {
		Name  string `json:"name"`
		Weeks []struct {
			Week int `json:"week"`
			Days []struct {
				Day int `json:"day"`
			} `json:"days"`
		} `json:"weeks"`
	}
	parseResponse(t, rr, &grid)
	assert.Equal(t, "februari", grid.Name)
	require.Len(t, grid.Weeks, 5)
	assert.Equal(t, 5, grid.Weeks[0].Week)
	assert.Equal(t, 0, grid.Weeks[0].Days[0].Day)
	assert.Equal(t, 1, grid.Weeks[0].Days[3].Day)

	for _, month := range []string{"0", "13", "feb"} {
		rr = env.do(http.MethodGet, "/api/v1/calendar/2024/months/"+month, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, month)
	}
}

func TestGetHolidays(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/holidays/2016", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		Year     int `json:"year"`
		Count    int `json:"count"`
		Holidays []struct {
			Date string `json:"date"`
			Name string `json:"name"`
		} `json:"holidays"`
	}
	parseResponse(t, rr, &data)
	assert.Equal(t, 2016, data.Year)
	assert.Equal(t, 8, data.Count)
	assert.Equal(t, "2016-05-05", data.Holidays[3].Date)
	assert.Equal(t, "Bevrijdingsdag / Hemelvaartsdag", data.Holidays[3].Name)
}

func TestGetEaster(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/easter/2024", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		Easter string `json:"easter"`
		Feasts []struct {
			Date string `json:"date"`
			Name string `json:"name"`
		} `json:"feasts"`
	}
	parseResponse(t, rr, &data)
	assert.Equal(t, "2024-03-31", data.Easter)
	require.Len(t, data.Feasts, 4)
	assert.Equal(t, "2024-05-09", data.Feasts[1].Date)
	assert.Equal(t, "2024-05-20", data.Feasts[3].Date)
}

func TestGetWeek(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		date    string
		week    int
		weekday string
		holiday string
	}{
		{"2024-01-01", 1, "maandag", "Nieuwjaarsdag"},
		{"2021-01-03", 53, "zondag", ""},
		{"2015-01-01", 1, "donderdag", "Nieuwjaarsdag"},
		{"2024-12-30", 1, "maandag", ""},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			rr := env.do(http.MethodGet, "/api/v1/weeks/"+tt.date, "")
			require.Equal(t, http.StatusOK, rr.Code)

			var data weekResponse
			parseResponse(t, rr, &data)
			assert.Equal(t, tt.week, data.Week)
			assert.Equal(t, tt.weekday, data.Weekday)
			assert.Equal(t, tt.holiday != "", data.Holiday)
			assert.Equal(t, tt.holiday, data.HolidayName)
		})
	}

	rr := env.do(http.MethodGet, "/api/v1/weeks/2024-02-30", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExport_PDF(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/export/2024", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="kalender_2024.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))

	rr = env.do(http.MethodGet, "/api/v1/export/2024?format=pdf&theme=light", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))
}

func TestExport_NotModified(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/export/2024?format=ics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	for _, header := range []string{
		etag,
		"W/" + etag,
		`"other", ` + etag,
		"*",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/export/2024?format=ics", nil)
		req.Header.Set("If-None-Match", header)
		rr = httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotModified, rr.Code, header)
		assert.Zero(t, rr.Body.Len(), header)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/2024?format=ics", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEtagMatches(t *testing.T) {
	const etag = `"abc123"`

	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc123"`, true},
		{`W/"abc123"`, true},
		{`"x", "abc123"`, true},
		{`"x",W/"abc123"`, true},
		{"*", true},
		{`"abc"`, false},
		{`abc123`, false},
		{`"x", "y"`, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, etag); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestExport_PageSize(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/export/2024?format=pdf&page_size=A3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	a3 := rr.Header().Get("ETag")

	// The configured A4 page must not be served from the A3 entry.
	rr = env.do(http.MethodGet, "/api/v1/export/2024?format=pdf", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.NotEqual(t, a3, rr.Header().Get("ETag"))

	rr = env.do(http.MethodGet, "/api/v1/export/2024?format=pdf&page_size=A3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))
	assert.Equal(t, a3, rr.Header().Get("ETag"))

	rr = env.do(http.MethodGet, "/api/v1/export/2024?format=pdf&page_size=A5", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExport_Formats(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"html", "text/html; charset=utf-8", "<h3>januari 2024</h3>"},
		{"txt", "text/plain; charset=utf-8", "* Feestdagen 2024"},
		{"json", "application/json", `"year": 2024`},
		{"yaml", "application/yaml", "year: 2024"},
		{"csv", "text/csv; charset=utf-8", "datum,dag,week,feestdag"},
		{"ics", "text/calendar; charset=utf-8", "BEGIN:VCALENDAR"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rr := env.do(http.MethodGet, "/api/v1/export/2024?format="+tt.format, "")
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.contains)
		})
	}
}

func TestExport_BadRequest(t *testing.T) {
	env := setupTest(t)

	for _, path := range []string{
		"/api/v1/export/2024?format=docx",
		"/api/v1/export/2024?theme=sepia",
		"/api/v1/export/2024?landscape=maybe",
		"/api/v1/export/0",
	} {
		rr := env.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
	}
}

// =============================================================================
// ADMIN ENDPOINT TESTS
// =============================================================================

func TestListAndPurgeExports(t *testing.T) {
	env := setupTest(t)

	for _, path := range []string{
		"/api/v1/export/2024?format=txt",
		"/api/v1/export/2024?format=csv",
		"/api/v1/export/2025?format=txt",
	} {
		rr := env.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := env.do(http.MethodGet, "/api/v1/admin/exports", env.apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	var list exportsResponse
	parseResponse(t, rr, &list)
	assert.True(t, list.Caching)
	assert.Len(t, list.Documents, 3)
	assert.Equal(t, 3, list.Stats.Documents)

	rr = env.do(http.MethodGet, "/api/v1/admin/exports?year=2025", env.apiKey)
	require.Equal(t, http.StatusOK, rr.Code)
	parseResponse(t, rr, &list)
	assert.Len(t, list.Documents, 1)

	rr = env.do(http.MethodDelete, "/api/v1/admin/exports?year=2024", env.apiKey)
	require.Equal(t, http.StatusOK, rr.Code)
	var purged map[string]int64
	parseResponse(t, rr, &purged)
	assert.Equal(t, int64(2), purged["removed"])

	rr = env.do(http.MethodDelete, "/api/v1/admin/exports?year=abc", env.apiKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestErrorResponse_RequestID(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/calendar/0", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	id := rr.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)

	resp := parseResponse(t, rr, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
	assert.Equal(t, id, resp.Error.RequestID)
}

func TestMethodNotAllowed(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodPost, "/api/v1/holidays/2024", "")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	resp := parseResponse(t, rr, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotAllowed, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestNotFound(t *testing.T) {
	env := setupTest(t)

	rr := env.do(http.MethodGet, "/api/v1/nope", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	resp := parseResponse(t, rr, nil)
	assert.False(t, resp.Success)
	assert.True(t, strings.EqualFold(resp.Error.Code, "NOT_FOUND"))
}
