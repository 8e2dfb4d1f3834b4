package property

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/krib/krib-api/internal/middleware"
)

// Routes returns property router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	// Host/agent only
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireHost())

		r.Post("/", h.Create)
		r.Get("/mine", h.ListMine)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/photos", h.UploadPhoto)
		r.Delete("/{id}/photos/{photoID}", h.DeletePhoto)
	})

	return r
}
