package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/domain/property"
	"github.com/krib/krib-api/internal/middleware"
	"github.com/krib/krib-api/internal/pkg/response"
	"github.com/krib/krib-api/internal/pkg/validator"
)

// Handler for review API
type Handler struct {
	service *Service
}

// NewHandler creates review handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /reviews
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	rev, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, property.ErrPropertyNotFound):
			response.NotFound(w, "Property not found")
		case errors.Is(err, ErrNoCompletedStay):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrAlreadyReviewed):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, rev.ToResponse())
}

// ListByProperty handles GET /reviews/property/{propertyID}
func (h *Handler) ListByProperty(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	reviews, total, err := h.service.ListByProperty(r.Context(), propertyID, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, reviews[i].ToResponse())
	}

	response.WithMeta(w, out, response.NewMeta(total, page, limit))
}

// Summary handles GET /reviews/property/{propertyID}/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	summary, err := h.service.Summary(r.Context(), propertyID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, summary)
}

// Delete handles DELETE /reviews/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	reviewID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), userID, reviewID); err != nil {
		switch {
		case errors.Is(err, ErrReviewNotFound):
			response.NotFound(w, "Review not found")
		case errors.Is(err, ErrNotReviewOwner):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// Routes returns review router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/property/{propertyID}", h.ListByProperty)
	r.Get("/property/{propertyID}/summary", h.Summary)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
