package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns booking router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Availability is public so guests can check dates before signing in
	r.Get("/availability/{propertyID}", h.Availability)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.Create)
		r.Get("/", h.ListMine)
		r.Get("/host", h.ListForHost)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/status", h.ChangeStatus)
		r.Delete("/{id}", h.Cancel)
	})

	return r
}
