package admin

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/domain/property"
	"github.com/krib/krib-api/internal/domain/user"
	"github.com/krib/krib-api/internal/middleware"
	"github.com/krib/krib-api/internal/pkg/response"
)

// Handler handles admin console HTTP requests
type Handler struct {
	repo         Repository
	userRepo     user.Repository
	propertyRepo property.Repository
}

// NewHandler creates admin handler
func NewHandler(repo Repository, userRepo user.Repository, propertyRepo property.Repository) *Handler {
	return &Handler{repo: repo, userRepo: userRepo, propertyRepo: propertyRepo}
}

// Stats handles GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetPlatformStats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

// ListBookings handles GET /admin/bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", "pending", "confirmed", "cancelled", "completed":
	default:
		response.BadRequest(w, "Invalid status filter")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	rows, total, err := h.repo.ListBookings(r.Context(), status, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, rows, response.NewMeta(total, page, limit))
}

// SetUserBanned handles POST /admin/users/{id}/ban and /unban
func (h *Handler) SetUserBanned(banned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			response.BadRequest(w, "Invalid user ID")
			return
		}

		u, err := h.userRepo.GetByID(r.Context(), id)
		if err != nil {
			response.InternalError(w)
			return
		}
		if u == nil {
			response.NotFound(w, "User not found")
			return
		}

		if err := h.userRepo.UpdateBanned(r.Context(), id, banned); err != nil {
			response.InternalError(w)
			return
		}

		log.Info().
			Str("user_id", id.String()).
			Str("admin_id", middleware.GetUserID(r.Context()).String()).
			Bool("banned", banned).
			Msg("user ban state changed")

		response.OK(w, map[string]interface{}{"id": id, "is_banned": banned})
	}
}

// SetPropertyActive handles POST /admin/properties/{id}/activate and /deactivate
func (h *Handler) SetPropertyActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			response.BadRequest(w, "Invalid property ID")
			return
		}

		p, err := h.propertyRepo.GetByID(r.Context(), id)
		if err != nil {
			response.InternalError(w)
			return
		}
		if p == nil {
			response.NotFound(w, "Property not found")
			return
		}

		if err := h.propertyRepo.SetActive(r.Context(), id, active); err != nil {
			response.InternalError(w)
			return
		}

		log.Info().
			Str("property_id", id.String()).
			Str("admin_id", middleware.GetUserID(r.Context()).String()).
			Bool("active", active).
			Msg("property active state changed")

		response.OK(w, map[string]interface{}{"id": id, "is_active": active})
	}
}

// Routes returns admin router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	r.Get("/stats", h.Stats)
	r.Get("/bookings", h.ListBookings)

	r.Post("/users/{id}/ban", h.SetUserBanned(true))
	r.Post("/users/{id}/unban", h.SetUserBanned(false))

	r.Post("/properties/{id}/activate", h.SetPropertyActive(true))
	r.Post("/properties/{id}/deactivate", h.SetPropertyActive(false))

	return r
}
