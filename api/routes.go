// Package api wires the nanotrim HTTP handlers into a chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aria-lang/nanotrim/api/handlers"
	"github.com/aria-lang/nanotrim/api/middleware"
)

// NewRouter returns the API router. timeout bounds every request; batch
// trimming observes it through the request context.
func NewRouter(trim *handlers.Trim, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/sequence", func(r chi.Router) {
			r.Post("/reverse-complement", handlers.ReverseComplementHandler)
			r.Post("/info", handlers.SequenceInfoHandler)
			r.Post("/validate", handlers.ValidateHandler)
		})

		r.Route("/alignment", func(r chi.Router) {
			r.Post("/local", handlers.LocalAlignHandler)
			r.Post("/score", handlers.AlignmentScoreHandler)
		})

		r.Route("/quality", func(r chi.Router) {
			r.Post("/stats", handlers.QualityStatsHandler)
			r.Post("/filter", handlers.FilterReadHandler)
		})

		r.Route("/trim", func(r chi.Router) {
			r.Post("/read", trim.ReadHandler)
			r.Post("/batch", trim.BatchHandler)
			r.Get("/catalog", trim.CatalogHandler)
		})
	})

	return r
}
