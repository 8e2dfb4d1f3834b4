package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents booking lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsTerminal reports whether no further transitions are allowed
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo enforces the booking state machine:
// pending -> confirmed -> completed, with pending|confirmed -> cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// Booking represents a nightly reservation (matches bookings table)
type Booking struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	PropertyID uuid.UUID `db:"property_id"`
	GuestID    uuid.UUID `db:"guest_id"`

	// Half-open stay interval [CheckIn, CheckOut)
	CheckIn  time.Time `db:"check_in"`
	CheckOut time.Time `db:"check_out"`
	Guests   int       `db:"guests"`

	// Monetary breakdown (AED)
	Nights      int     `db:"nights"`
	BaseAmount  float64 `db:"base_amount"`
	CleaningFee float64 `db:"cleaning_fee"`
	ServiceFee  float64 `db:"service_fee"`
	TotalAmount float64 `db:"total_amount"`

	Status          Status         `db:"status"`
	Message         sql.NullString `db:"message"`
	SpecialRequests sql.NullString `db:"special_requests"`
	CancelReason    sql.NullString `db:"cancel_reason"`

	// Joined data (not in DB, populated by queries)
	PropertyTitle string    `db:"-"`
	HostID        uuid.UUID `db:"-"`
}

// CanBeCancelled reports whether the cancellation transition is allowed
func (b *Booking) CanBeCancelled() bool {
	return !b.Status.IsTerminal()
}

// Overlaps applies the half-open interval conflict predicate against
// another stay [checkIn, checkOut).
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckOut.After(checkIn) && b.CheckIn.Before(checkOut)
}
