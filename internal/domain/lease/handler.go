package lease

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/middleware"
	"github.com/krib/krib-api/internal/pkg/response"
	"github.com/krib/krib-api/internal/pkg/validator"
)

// Handler handles lease HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates lease handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Apply handles POST /leases
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}
	moveIn, err := time.Parse("2006-01-02", req.MoveIn)
	if err != nil {
		response.BadRequest(w, "Invalid move-in date")
		return
	}

	l, err := h.service.Apply(r.Context(), &ApplyInput{
		PropertyID:  propertyID,
		ApplicantID: userID,
		MoveIn:      moveIn,
		Months:      req.Months,
		MonthlyRent: req.MonthlyRent,
		Message:     req.Message,
	})
	if err != nil {
		h.writeLeaseError(w, err)
		return
	}

	response.Created(w, ResponseFromEntity(l))
}

// Get handles GET /leases/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid lease ID")
		return
	}

	l, err := h.service.GetByID(r.Context(), userID, id)
	if err != nil {
		h.writeLeaseError(w, err)
		return
	}

	response.OK(w, ResponseFromEntity(l))
}

// ListMine handles GET /leases
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, limit := parsePagination(r)
	leases, total, err := h.service.ListMine(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, toResponses(leases), response.NewMeta(total, page, limit))
}

// ListForHost handles GET /leases/host
func (h *Handler) ListForHost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, limit := parsePagination(r)
	leases, total, err := h.service.ListForHost(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, toResponses(leases), response.NewMeta(total, page, limit))
}

// Review handles PATCH /leases/{id}/status
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid lease ID")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	l, err := h.service.Review(r.Context(), userID, id, Status(req.Status))
	if err != nil {
		h.writeLeaseError(w, err)
		return
	}

	response.OK(w, ResponseFromEntity(l))
}

func (h *Handler) writeLeaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLeaseNotFound), errors.Is(err, ErrAccessDenied):
		// Hide existence from strangers
		response.NotFound(w, "Lease application not found")
	case errors.Is(err, ErrPropertyUnavailable),
		errors.Is(err, ErrNotLongTermRental),
		errors.Is(err, ErrMoveInNotFuture),
		errors.Is(err, ErrInvalidTerm):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrDuplicateOpen), errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w)
	}
}

func toResponses(leases []*Lease) []*LeaseResponse {
	out := make([]*LeaseResponse, len(leases))
	for i, l := range leases {
		out[i] = ResponseFromEntity(l)
	}
	return out
}

func parsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// Routes returns lease router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Apply)
	r.Get("/", h.ListMine)
	r.Get("/host", h.ListForHost)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.Review)

	return r
}
