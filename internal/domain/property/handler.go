package property

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/domain/user"
	"github.com/krib/krib-api/internal/middleware"
	"github.com/krib/krib-api/internal/pkg/response"
	"github.com/krib/krib-api/internal/pkg/validator"
)

// maxPhotoUploadSize bounds multipart photo uploads (15 MB)
const maxPhotoUploadSize = 15 << 20

// Handler handles property HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates property handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /properties
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrOnlyHostsCanCreate):
			response.Forbidden(w, ErrOnlyHostsCanCreate.Error())
		case errors.Is(err, user.ErrUserNotFound):
			response.Unauthorized(w, "Authentication required")
		case errors.Is(err, ErrInvalidPriceRange):
			response.BadRequest(w, ErrInvalidPriceRange.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, ResponseFromEntity(p))
}

// Get handles GET /properties/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	p, photos, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			response.NotFound(w, "Property not found")
			return
		}
		response.InternalError(w)
		return
	}

	resp := ResponseFromEntity(p)
	for _, ph := range photos {
		resp.Photos = append(resp.Photos, PhotoResponseFromEntity(ph))
	}
	response.OK(w, resp)
}

// List handles GET /properties
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, sortBy, pagination := parseListQuery(r)

	properties, total, err := h.service.List(r.Context(), filter, sortBy, pagination)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*PropertyResponse, 0, len(properties))
	for _, p := range properties {
		items = append(items, ResponseFromEntity(p))
	}
	response.WithMeta(w, items, response.NewMeta(total, pagination.Page, pagination.Limit))
}

// ListMine handles GET /properties/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	pagination := parsePagination(r)
	properties, total, err := h.service.ListByHost(r.Context(), userID, pagination)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*PropertyResponse, 0, len(properties))
	for _, p := range properties {
		items = append(items, ResponseFromEntity(p))
	}
	response.WithMeta(w, items, response.NewMeta(total, pagination.Page, pagination.Limit))
}

// Update handles PUT /properties/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	var req UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		h.writeOwnershipError(w, err)
		return
	}

	response.OK(w, ResponseFromEntity(p))
}

// Delete handles DELETE /properties/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.writeOwnershipError(w, err)
		return
	}

	response.NoContent(w)
}

// UploadPhoto handles POST /properties/{id}/photos (multipart form, field "photo")
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUploadSize)
	if err := r.ParseMultipartForm(maxPhotoUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		response.BadRequest(w, "Missing photo file")
		return
	}
	defer file.Close()

	photo, err := h.service.UploadPhoto(r.Context(), userID, id, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedMedia):
			response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA", "Only JPEG and PNG images are supported")
		default:
			h.writeOwnershipError(w, err)
		}
		return
	}

	response.Created(w, PhotoResponseFromEntity(photo))
}

// DeletePhoto handles DELETE /properties/{id}/photos/{photoID}
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property ID")
		return
	}
	photoID, err := uuid.Parse(chi.URLParam(r, "photoID"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	if err := h.service.DeletePhoto(r.Context(), userID, id, photoID); err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			response.NotFound(w, "Photo not found")
			return
		}
		h.writeOwnershipError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) writeOwnershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPropertyNotFound):
		response.NotFound(w, "Property not found")
	case errors.Is(err, ErrNotPropertyOwner):
		response.Forbidden(w, ErrNotPropertyOwner.Error())
	case errors.Is(err, ErrInvalidPriceRange):
		response.BadRequest(w, ErrInvalidPriceRange.Error())
	default:
		response.InternalError(w)
	}
}

func parseListQuery(r *http.Request) (*Filter, SortBy, *Pagination) {
	q := r.URL.Query()
	filter := &Filter{}

	if v := q.Get("q"); v != "" {
		filter.Query = &v
	}
	if v := q.Get("emirate"); v != "" {
		filter.Emirate = &v
	}
	if v := q.Get("city"); v != "" {
		filter.City = &v
	}
	if v := q.Get("property_type"); v != "" {
		t := Type(v)
		filter.Type = &t
	}
	if v := q.Get("rental_kind"); v != "" {
		k := RentalKind(v)
		filter.RentalKind = &k
	}
	if v := q.Get("price_min"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			filter.PriceMin = &f
		}
	}
	if v := q.Get("price_max"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			filter.PriceMax = &f
		}
	}
	if v := q.Get("guests"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Guests = &n
		}
	}
	if v := q.Get("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Bedrooms = &n
		}
	}
	if v := q.Get("host_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.HostID = &id
		}
	}
	if v := q["amenity"]; len(v) > 0 {
		filter.Amenities = v
	}

	sortBy := SortByNewest
	switch q.Get("sort") {
	case "price_asc":
		sortBy = SortByPriceAsc
	case "price_desc":
		sortBy = SortByPriceDesc
	case "popular":
		sortBy = SortByPopular
	}

	return filter, sortBy, parsePagination(r)
}

func parsePagination(r *http.Request) *Pagination {
	page := 1
	limit := 20
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
	return &Pagination{Page: page, Limit: limit}
}
