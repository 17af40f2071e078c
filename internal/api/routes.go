package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/zapponejosh/jaarkalender/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /                                     HTML calendar (?year=&theme=)
//	GET    /health                               health check
//	GET    /api/v1/calendar/{year}               year view
//	GET    /api/v1/calendar/{year}/months/{month} month grid, 1-12
//	GET    /api/v1/holidays/{year}               holiday list
//	GET    /api/v1/easter/{year}                 Easter and movable feasts
//	GET    /api/v1/weeks/{date}                  ISO week of a date
//	GET    /api/v1/export/{year}                 document download (?format=&theme=&page_size=&landscape=)
//	GET    /api/v1/admin/exports                 cached documents (API key)
//	DELETE /api/v1/admin/exports                 purge cache, ?year= optional (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(chimiddleware.RealIP)
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, r, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteMethodNotAllowed(w, r)
	})

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/", handlers.Index)
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/calendar/{year}", handlers.GetCalendar)
		r.Get("/calendar/{year}/months/{month}", handlers.GetMonth)
		r.Get("/holidays/{year}", handlers.GetHolidays)
		r.Get("/easter/{year}", handlers.GetEaster)
		r.Get("/weeks/{date}", handlers.GetWeek)
		r.Get("/export/{year}", handlers.Export)

		// ======================================================================
		// Admin routes (API key)
		// ======================================================================
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))
			r.Get("/admin/exports", handlers.ListExports)
			r.Delete("/admin/exports", handlers.PurgeExports)
		})
	})

	return r
}
