package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Holiday is one entry of a holiday list
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// HolidaysResponse is the response for /holidays/{year}
type HolidaysResponse struct {
	Year     int       `json:"year"`
	Count    int       `json:"count"`
	Holidays []Holiday `json:"holidays"`
}

// EasterResponse is the response for /easter/{year}
type EasterResponse struct {
	Year   int       `json:"year"`
	Easter string    `json:"easter"`
	Feasts []Holiday `json:"feasts"`
}

// WeekResponse is the response for /weeks/{date}
type WeekResponse struct {
	Date        string `json:"date"`
	Week        int    `json:"week"`
	Weekday     string `json:"weekday"`
	Weekend     bool   `json:"weekend"`
	Holiday     bool   `json:"holiday"`
	HolidayName string `json:"holiday_name"`
}

// MonthResponse is the part of /calendar/{year}/months/{month} we check
type MonthResponse struct {
	Name  string `json:"name"`
	Weeks []struct {
		Week int `json:"week"`
	} `json:"weeks"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Calendar API Smoke Test")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	// Run test groups
	tr.testHealth()
	tr.testHolidays()
	tr.testEaster()
	tr.testWeeks()
	tr.testMonths()
	tr.testExports()
	tr.testEdgeCases()
	if tr.apiKey != "" {
		tr.testAdmin()
	}

	// Print summary
	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health HealthResponse
	if err := tr.parseDataAs(resp, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (cache %s)", health.Cache))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testHolidays() {
	tr.printSection("Holidays")

	testCases := []struct {
		year  int
		count int
	}{
		{2024, 9},
		{2025, 9},
		{2016, 8}, // Ascension Day on Liberation Day
	}

	for _, tc := range testCases {
		resp, err := tr.get(fmt.Sprintf("/api/v1/holidays/%d", tc.year))
		if err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}

		var data HolidaysResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}

		if data.Count == tc.count && len(data.Holidays) == tc.count {
			tr.recordSuccess(fmt.Sprintf("%d: %d holidays", tc.year, data.Count))
		} else {
			tr.recordError(fmt.Sprint(tc.year), fmt.Sprintf("Expected %d holidays, got %d", tc.count, data.Count))
		}

		if tr.verbose {
			for _, h := range data.Holidays {
				fmt.Printf("    %s  %s\n", h.Date, h.Name)
			}
		}
	}
}

func (tr *TestRunner) testEaster() {
	tr.printSection("Easter")

	testCases := []struct {
		year   int
		easter string
	}{
		{2024, "2024-03-31"},
		{2025, "2025-04-20"},
		{1818, "1818-03-22"}, // earliest possible
		{1943, "1943-04-25"}, // latest possible
	}

	for _, tc := range testCases {
		resp, err := tr.get(fmt.Sprintf("/api/v1/easter/%d", tc.year))
		if err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}

		var data EasterResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}

		if data.Easter == tc.easter && len(data.Feasts) == 4 {
			tr.recordSuccess(fmt.Sprintf("Easter %d: %s", tc.year, data.Easter))
		} else {
			tr.recordError(fmt.Sprint(tc.year), fmt.Sprintf("Expected %s, got %s", tc.easter, data.Easter))
		}
	}
}

func (tr *TestRunner) testWeeks() {
	tr.printSection("ISO Weeks")

	testCases := []struct {
		date string
		week int
	}{
		{"2015-01-01", 1},
		{"2021-01-03", 53},
		{"2023-01-01", 52},
		{"2024-12-30", 1},
		{"2026-12-31", 53},
	}

	for _, tc := range testCases {
		resp, err := tr.get("/api/v1/weeks/" + tc.date)
		if err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		var data WeekResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		if data.Week == tc.week {
			tr.recordSuccess(fmt.Sprintf("%s (%s): week %d", tc.date, data.Weekday, data.Week))
		} else {
			tr.recordError(tc.date, fmt.Sprintf("Expected week %d, got %d", tc.week, data.Week))
		}
	}
}

func (tr *TestRunner) testMonths() {
	tr.printSection("Month Grids")

	for month := 1; month <= 12; month++ {
		path := fmt.Sprintf("/api/v1/calendar/2024/months/%d", month)
		resp, err := tr.get(path)
		if err != nil {
			tr.recordError(path, err.Error())
			continue
		}

		var data MonthResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(path, err.Error())
			continue
		}

		rows := len(data.Weeks)
		if rows >= 4 && rows <= 6 {
			tr.recordSuccess(fmt.Sprintf("%s 2024: %d rows, weeks %d-%d",
				data.Name, rows, data.Weeks[0].Week, data.Weeks[rows-1].Week))
		} else {
			tr.recordError(path, fmt.Sprintf("Unexpected row count %d", rows))
		}
	}
}

func (tr *TestRunner) testExports() {
	tr.printSection("Exports")

	testCases := []struct {
		query  string
		prefix string
	}{
		{"format=pdf", "%PDF-"},
		{"format=pdf&theme=dark&landscape=true", "%PDF-"},
		{"format=html", "<!DOCTYPE html>"},
		{"format=ics", "BEGIN:VCALENDAR"},
		{"format=csv", "datum,dag,week,feestdag"},
	}

	for _, tc := range testCases {
		path := "/api/v1/export/2024?" + tc.query
		resp, err := tr.getRaw(path)
		if err != nil {
			tr.recordError(tc.query, err.Error())
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			tr.recordError(tc.query, err.Error())
			continue
		}

		if resp.StatusCode == http.StatusOK && bytes.HasPrefix(body, []byte(tc.prefix)) {
			tr.recordSuccess(fmt.Sprintf("%s: %d bytes, cache %s", tc.query, len(body), resp.Header.Get("X-Cache")))
		} else {
			tr.recordError(tc.query, fmt.Sprintf("HTTP %d, want body starting with %q", resp.StatusCode, tc.prefix))
		}
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	testCases := []struct {
		path        string
		description string
	}{
		{"/api/v1/calendar/0", "Year below range rejected"},
		{"/api/v1/calendar/10000", "Year above range rejected"},
		{"/api/v1/calendar/2024/months/13", "Month 13 rejected"},
		{"/api/v1/weeks/2023-02-29", "Non-existent date rejected"},
		{"/api/v1/weeks/invalid", "Invalid date format rejected"},
		{"/api/v1/export/2024?format=docx", "Unknown format rejected"},
		{"/api/v1/export/2024?theme=sepia", "Unknown theme rejected"},
	}

	for _, tc := range testCases {
		resp, err := tr.getRaw(tc.path)
		if err != nil {
			tr.recordError(tc.path, err.Error())
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusBadRequest {
			tr.recordSuccess(tc.description)
		} else {
			tr.recordError(tc.path, fmt.Sprintf("Expected HTTP 400, got %d", resp.StatusCode))
		}
	}
}

func (tr *TestRunner) testAdmin() {
	tr.printSection("Cache Administration")

	req, _ := http.NewRequest(http.MethodGet, tr.baseURL+"/api/v1/admin/exports", nil)
	req.Header.Set("X-API-Key", tr.apiKey)
	if resp, err := tr.do(req); err != nil {
		tr.recordError("List exports", err.Error())
	} else {
		tr.recordSuccess(fmt.Sprintf("List exports: %s", compact(resp.Data)))
	}

	req, _ = http.NewRequest(http.MethodDelete, tr.baseURL+"/api/v1/admin/exports?year=2024", nil)
	req.Header.Set("X-API-Key", tr.apiKey)
	if resp, err := tr.do(req); err != nil {
		tr.recordError("Purge exports", err.Error())
	} else {
		tr.recordSuccess(fmt.Sprintf("Purge exports: %s", compact(resp.Data)))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) get(path string) (*APIResponse, error) {
	req, err := http.NewRequest(http.MethodGet, tr.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return tr.do(req)
}

func (tr *TestRunner) do(req *http.Request) (*APIResponse, error) {
	resp, err := tr.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	return &apiResp, nil
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	return tr.client.Get(tr.baseURL + path)
}

func (tr *TestRunner) parseDataAs(resp *APIResponse, target any) error {
	return json.Unmarshal(resp.Data, target)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	s := buf.String()
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

var cli struct {
	URL     string `name:"url" default:"http://localhost:8080" help:"Base URL of the API"`
	APIKey  string `name:"api-key" env:"API_KEY" help:"API key for the admin endpoints (skipped when empty)"`
	Verbose bool   `short:"v" help:"Verbose output (list holidays)"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("apitest"),
		kong.Description("Smoke test a running calendar API"),
		kong.UsageOnError(),
	)

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(cli.URL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", cli.URL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(cli.URL, cli.APIKey, cli.Verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
