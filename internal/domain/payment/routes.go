package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/krib/krib-api/internal/middleware"
)

// Routes returns payment router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.ListMine)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Post("/{id}/pay", h.MarkPaid)
	})

	return r
}
