package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Get("/api/version", h.getServiceVersion)
	})

	// routes behind the bearer token
	router.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Get("/api/account", h.getAccount)

		r.Post("/api/zones/ensure", h.ensureZone)
		r.Post("/api/zones/subscriptions", h.ensureSubscription)

		r.With(h.saveIntegrityCheck).Post("/api/records/save", h.saveRecords)
		r.Delete("/api/records", h.deleteRecords)
		r.Post("/api/records/fetch", h.fetchRecords)
		r.Post("/api/records/changes", h.fetchChanges)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
