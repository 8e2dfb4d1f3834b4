package lease

import (
	"time"

	"github.com/google/uuid"
)

// ApplyRequest for submitting a lease application
type ApplyRequest struct {
	PropertyID  string  `json:"property_id" validate:"required,uuid"`
	MoveIn      string  `json:"move_in" validate:"required"`
	Months      int     `json:"months" validate:"required,gte=1,lte=60"`
	MonthlyRent float64 `json:"monthly_rent" validate:"required,gt=0"`
	Message     string  `json:"message" validate:"max=2000"`
}

// ReviewRequest for advancing an application through review
type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=under_review approved rejected active ended"`
}

// LeaseResponse for API output
type LeaseResponse struct {
	ID            uuid.UUID `json:"id"`
	PropertyID    uuid.UUID `json:"property_id"`
	PropertyTitle string    `json:"property_title,omitempty"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	MoveIn        string    `json:"move_in"`
	EndDate       string    `json:"end_date"`
	Months        int       `json:"months"`
	MonthlyRent   float64   `json:"monthly_rent"`
	AnnualRent    float64   `json:"annual_rent"`
	TotalAmount   float64   `json:"total_amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	Message       string    `json:"message,omitempty"`
	DecidedAt     *string   `json:"decided_at,omitempty"`
	CreatedAt     string    `json:"created_at"`
}

// ResponseFromEntity converts entity to response
func ResponseFromEntity(l *Lease) *LeaseResponse {
	resp := &LeaseResponse{
		ID:            l.ID,
		PropertyID:    l.PropertyID,
		PropertyTitle: l.PropertyTitle,
		ApplicantID:   l.ApplicantID,
		MoveIn:        l.MoveIn.Format("2006-01-02"),
		EndDate:       l.EndDate().Format("2006-01-02"),
		Months:        l.Months,
		MonthlyRent:   l.MonthlyRent,
		AnnualRent:    l.AnnualRent,
		TotalAmount:   l.TotalAmount,
		Currency:      l.Currency,
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
	}
	if l.Message.Valid {
		resp.Message = l.Message.String
	}
	if l.DecidedAt.Valid {
		s := l.DecidedAt.Time.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}
