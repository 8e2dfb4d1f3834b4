package payment

import (
	"time"

	"github.com/google/uuid"
)

// Type represents what a payment record covers
type Type string

const (
	TypeBookingPayment  Type = "booking_payment"
	TypeSecurityDeposit Type = "security_deposit"
)

// Status represents payment lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// Payment represents a payment obligation (matches payments table)
type Payment struct {
	ID        uuid.UUID  `db:"id"`
	BookingID uuid.UUID  `db:"booking_id"`
	UserID    uuid.UUID  `db:"user_id"`
	Type      Type       `db:"payment_type"`
	Status    Status     `db:"status"`
	Amount    float64    `db:"amount"`
	Currency  string     `db:"currency"`
	DueAt     time.Time  `db:"due_at"`
	PaidAt    *time.Time `db:"paid_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// CanBePaid reports whether the payment is still awaiting settlement
func (p *Payment) CanBePaid() bool {
	return p.Status == StatusPending
}
