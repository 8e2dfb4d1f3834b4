package lease

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents lease application state
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusActive      Status = "active"
	StatusEnded       Status = "ended"
)

// CanTransitionTo reports whether the state machine allows the move
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusSubmitted:
		return next == StatusUnderReview || next == StatusApproved || next == StatusRejected
	case StatusUnderReview:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved:
		return next == StatusActive || next == StatusRejected
	case StatusActive:
		return next == StatusEnded
	default:
		return false
	}
}

// IsOpen reports whether the application still awaits a decision
func (s Status) IsOpen() bool {
	return s == StatusSubmitted || s == StatusUnderReview
}

// Lease represents a long-term rental application and, once approved,
// the running lease itself.
type Lease struct {
	ID          uuid.UUID `db:"id"`
	PropertyID  uuid.UUID `db:"property_id"`
	ApplicantID uuid.UUID `db:"applicant_id"`

	MoveIn      time.Time `db:"move_in"`
	Months      int       `db:"months"`
	MonthlyRent float64   `db:"monthly_rent"`
	AnnualRent  float64   `db:"annual_rent"`
	TotalAmount float64   `db:"total_amount"`
	Currency    string    `db:"currency"`

	Status    Status         `db:"status"`
	Message   sql.NullString `db:"message"`
	DecidedAt sql.NullTime   `db:"decided_at"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`

	// Joined from properties for list views
	PropertyTitle string    `db:"property_title"`
	HostID        uuid.UUID `db:"host_id"`
}

// EndDate is the scheduled lease end derived from the term
func (l *Lease) EndDate() time.Time {
	return l.MoveIn.AddDate(0, l.Months, 0)
}
