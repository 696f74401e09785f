package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AhmedIzaan/ai-interview-coach/internal/app"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	h := &handler{app: application}
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if !application.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("starting"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Get("/tones", h.tones)

		r.Route("/interview", func(r chi.Router) {
			r.Get("/", h.snapshot)
			r.Post("/", h.start)
			r.Post("/capture", h.toggleCapture)
			r.Post("/submit", h.submit)
			r.Post("/retry", h.retry)
			r.Post("/restart", h.restart)
			r.Delete("/error", h.dismissError)
			r.Get("/stream", application.Hub.ServeHTTP)
		})

		r.Get("/reports", h.listReports)
		r.Get("/reports/{id}", h.getReport)
	})

	return r
}
