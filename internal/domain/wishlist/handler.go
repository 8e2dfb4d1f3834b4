package wishlist

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/middleware"
	"github.com/krib/krib-api/internal/pkg/response"
)

// Handler for wishlist API
type Handler struct {
	repo *Repository
}

// NewHandler creates wishlist handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// AddRequest for saving a listing
type AddRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
}

// Add handles POST /wishlist
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	item, err := h.repo.Add(r.Context(), userID, propertyID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, item)
}

// Remove handles DELETE /wishlist/{propertyID}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	if err := h.repo.Remove(r.Context(), userID, propertyID); err != nil {
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// Check handles GET /wishlist/{propertyID}/check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	item, err := h.repo.Get(r.Context(), userID, propertyID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"saved": item != nil})
}

// List handles GET /wishlist
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	items, err := h.repo.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, items)
}

// Routes returns wishlist router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Add)
	r.Get("/", h.List)
	r.Get("/{propertyID}/check", h.Check)
	r.Delete("/{propertyID}", h.Remove)

	return r
}
