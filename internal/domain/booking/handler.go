package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/middleware"
	"github.com/krib/krib-api/internal/pkg/response"
	"github.com/krib/krib-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateBookingRequest
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
	checkIn, err := ParseDate(req.CheckIn)
	if err != nil {
		response.BadRequest(w, "Invalid check-in date")
		return
	}
	checkOut, err := ParseDate(req.CheckOut)
	if err != nil {
		response.BadRequest(w, "Invalid check-out date")
		return
	}

	b, err := h.service.Create(r.Context(), &CreateInput{
		PropertyID:      propertyID,
		GuestID:         userID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		Message:         req.Message,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	response.Created(w, ResponseFromEntity(b))
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	b, err := h.service.GetByID(r.Context(), userID, id)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	response.OK(w, ResponseFromEntity(b))
}

// ListMine handles GET /bookings
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, limit := parsePagination(r)
	bookings, total, err := h.service.ListMine(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	h.writeList(w, bookings, total, page, limit)
}

// ListForHost handles GET /bookings/host
func (h *Handler) ListForHost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, limit := parsePagination(r)
	bookings, total, err := h.service.ListForHost(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	h.writeList(w, bookings, total, page, limit)
}

// Update handles PUT /bookings/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	in := &UpdateInput{
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
	}
	if req.CheckIn != nil {
		t, err := ParseDate(*req.CheckIn)
		if err != nil {
			response.BadRequest(w, "Invalid check-in date")
			return
		}
		in.CheckIn = &t
	}
	if req.CheckOut != nil {
		t, err := ParseDate(*req.CheckOut)
		if err != nil {
			response.BadRequest(w, "Invalid check-out date")
			return
		}
		in.CheckOut = &t
	}

	b, err := h.service.Update(r.Context(), userID, id, in)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	response.OK(w, ResponseFromEntity(b))
}

// Cancel handles DELETE /bookings/{id}
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	// Body is optional on cancellation
	var req CancelBookingRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.service.Cancel(r.Context(), userID, id, req.Reason); err != nil {
		h.writeBookingError(w, err)
		return
	}

	response.NoContent(w)
}

// ChangeStatus handles PATCH /bookings/{id}/status
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.service.ChangeStatus(r.Context(), userID, id, Status(req.Status))
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	response.OK(w, ResponseFromEntity(b))
}

// Availability handles GET /bookings/availability/{propertyID}
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	if startDate == "" || endDate == "" {
		response.BadRequest(w, "startDate and endDate are required")
		return
	}

	checkIn, err := ParseDate(startDate)
	if err != nil {
		response.BadRequest(w, "Invalid startDate")
		return
	}
	checkOut, err := ParseDate(endDate)
	if err != nil {
		response.BadRequest(w, "Invalid endDate")
		return
	}

	available, conflicts, err := h.service.Availability(r.Context(), propertyID, checkIn, checkOut)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	resp := AvailabilityResponse{
		Available:           available,
		ConflictingBookings: make([]ConflictResponse, 0, len(conflicts)),
	}
	for _, c := range conflicts {
		resp.ConflictingBookings = append(resp.ConflictingBookings, ConflictResponse{
			CheckIn:  c.CheckIn,
			CheckOut: c.CheckOut,
			Status:   string(c.Status),
		})
	}
	response.OK(w, resp)
}

func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCheckOutBeforeCheckIn),
		errors.Is(err, ErrCheckInNotFuture),
		errors.Is(err, ErrPropertyUnavailable),
		errors.Is(err, ErrGuestLimitExceeded),
		errors.Is(err, ErrDatesUnavailable),
		errors.Is(err, ErrNotShortTermRental):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrAccessDenied):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrAlreadyFinal), errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w)
	}
}

func (h *Handler) writeList(w http.ResponseWriter, bookings []*Booking, total, page, limit int) {
	items := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, ResponseFromEntity(b))
	}
	response.WithMeta(w, items, response.NewMeta(total, page, limit))
}

func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 20
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return page, limit
}
