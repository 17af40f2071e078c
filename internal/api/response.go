package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/zapponejosh/jaarkalender/internal/logger"
)

// Error codes carried in ErrorInfo.Code.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeNotFound          = "NOT_FOUND"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeInternal          = "INTERNAL_ERROR"
	CodeHealthCheckFailed = "HEALTH_CHECK_FAILED"
)

// Response is the JSON envelope of every endpoint except document
// downloads and the HTML page.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed request. RequestID repeats the X-Request-ID
// header so a reported error can be found in the server log.
type ErrorInfo struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// WriteError writes an error envelope tagged with the request ID of r.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) error {
	return WriteJSON(w, status, Response{
		Error: &ErrorInfo{
			Message:   message,
			Code:      code,
			RequestID: logger.RequestID(r.Context()),
		},
	})
}

func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) error {
	return WriteError(w, r, http.StatusBadRequest, CodeBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) error {
	return WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, message)
}

func WriteNotFound(w http.ResponseWriter, r *http.Request, message string) error {
	return WriteError(w, r, http.StatusNotFound, CodeNotFound, message)
}

// WriteMethodNotAllowed answers a known route called with the wrong method.
func WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request) error {
	return WriteError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
}

func WriteInternalError(w http.ResponseWriter, r *http.Request, message string) error {
	return WriteError(w, r, http.StatusInternalServerError, CodeInternal, message)
}

// WriteUnavailable reports a failing dependency from the health check.
func WriteUnavailable(w http.ResponseWriter, r *http.Request, message string) error {
	return WriteError(w, r, http.StatusServiceUnavailable, CodeHealthCheckFailed, message)
}

// WriteDocument writes a rendered document. A non-empty filename turns the
// response into a download.
func WriteDocument(w http.ResponseWriter, contentType, filename string, body []byte) error {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(body)
	return err
}
