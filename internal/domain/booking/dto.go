package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// dateLayouts are accepted stay-date formats, tried in order
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate parses a stay date from either a bare date or an RFC 3339
// timestamp.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// CreateBookingRequest for POST /bookings
type CreateBookingRequest struct {
	PropertyID      string `json:"property_id" validate:"required,uuid"`
	CheckIn         string `json:"check_in" validate:"required"`
	CheckOut        string `json:"check_out" validate:"required"`
	Guests          int    `json:"guests" validate:"required,gte=1"`
	Message         string `json:"message" validate:"omitempty,max=2000"`
	SpecialRequests string `json:"special_requests" validate:"omitempty,max=2000"`
}

// UpdateBookingRequest for PUT /bookings/{id}
type UpdateBookingRequest struct {
	CheckIn         *string `json:"check_in"`
	CheckOut        *string `json:"check_out"`
	Guests          *int    `json:"guests" validate:"omitempty,gte=1"`
	SpecialRequests *string `json:"special_requests" validate:"omitempty,max=2000"`
}

// CancelBookingRequest for DELETE /bookings/{id}
type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// ChangeStatusRequest for PATCH /bookings/{id}/status
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	GuestID    uuid.UUID `json:"guest_id"`

	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Guests   int       `json:"guests"`

	Nights      int     `json:"nights"`
	BaseAmount  float64 `json:"base_amount"`
	CleaningFee float64 `json:"cleaning_fee"`
	ServiceFee  float64 `json:"service_fee"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`

	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
	CancelReason    string `json:"cancel_reason,omitempty"`

	PropertyTitle string `json:"property_title,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvailabilityResponse for GET /bookings/availability/{propertyID}
type AvailabilityResponse struct {
	Available           bool               `json:"available"`
	ConflictingBookings []ConflictResponse `json:"conflicting_bookings"`
}

// ConflictResponse exposes only the blocked date range, not who booked it
type ConflictResponse struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Status   string    `json:"status"`
}

// ResponseFromEntity converts a Booking to its API representation
func ResponseFromEntity(b *Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:            b.ID,
		PropertyID:    b.PropertyID,
		GuestID:       b.GuestID,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Guests:        b.Guests,
		Nights:        b.Nights,
		BaseAmount:    b.BaseAmount,
		CleaningFee:   b.CleaningFee,
		ServiceFee:    b.ServiceFee,
		TotalAmount:   b.TotalAmount,
		Currency:      "AED",
		Status:        string(b.Status),
		PropertyTitle: b.PropertyTitle,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.Message.Valid {
		resp.Message = b.Message.String
	}
	if b.SpecialRequests.Valid {
		resp.SpecialRequests = b.SpecialRequests.String
	}
	if b.CancelReason.Valid {
		resp.CancelReason = b.CancelReason.String
	}
	return resp
}
