package payment

import (
	"time"

	"github.com/google/uuid"
)

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID  `json:"id"`
	BookingID uuid.UUID  `json:"booking_id"`
	Type      string     `json:"payment_type"`
	Status    string     `json:"status"`
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency"`
	DueAt     time.Time  `json:"due_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ResponseFromEntity converts a Payment to its API representation
func ResponseFromEntity(p *Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:        p.ID,
		BookingID: p.BookingID,
		Type:      string(p.Type),
		Status:    string(p.Status),
		Amount:    p.Amount,
		Currency:  p.Currency,
		DueAt:     p.DueAt,
		PaidAt:    p.PaidAt,
		CreatedAt: p.CreatedAt,
	}
}
