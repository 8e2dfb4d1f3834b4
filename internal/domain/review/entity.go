package review

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Review represents a guest's review of a property after a completed stay
type Review struct {
	ID         uuid.UUID      `db:"id"`
	PropertyID uuid.UUID      `db:"property_id"`
	GuestID    uuid.UUID      `db:"guest_id"`
	BookingID  uuid.NullUUID  `db:"booking_id"`
	Rating     int            `db:"rating"`
	Comment    sql.NullString `db:"comment"`
	IsPublic   bool           `db:"is_public"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// ReviewResponse for API responses
type ReviewResponse struct {
	ID         string  `json:"id"`
	PropertyID string  `json:"property_id"`
	GuestID    string  `json:"guest_id"`
	BookingID  *string `json:"booking_id,omitempty"`
	Rating     int     `json:"rating"`
	Comment    string  `json:"comment,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// ToResponse converts entity to response
func (r *Review) ToResponse() *ReviewResponse {
	resp := &ReviewResponse{
		ID:         r.ID.String(),
		PropertyID: r.PropertyID.String(),
		GuestID:    r.GuestID.String(),
		Rating:     r.Rating,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.Comment.Valid {
		resp.Comment = r.Comment.String
	}
	if r.BookingID.Valid {
		s := r.BookingID.UUID.String()
		resp.BookingID = &s
	}
	return resp
}

// CreateRequest for creating a review
type CreateRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	BookingID  string `json:"booking_id" validate:"omitempty,uuid"`
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

// RatingSummary for a property's rating overview
type RatingSummary struct {
	AverageRating float64           `json:"average_rating"`
	TotalReviews  int               `json:"total_reviews"`
	Distribution  map[int]int       `json:"distribution"`
	RecentReviews []*ReviewResponse `json:"recent_reviews,omitempty"`
}
