package booking

import "errors"

// Validation failures, each a distinct error so handlers can map them to
// stable messages.
var (
	ErrCheckOutBeforeCheckIn = errors.New("check-out must be after check-in")
	ErrCheckInNotFuture      = errors.New("check-in must be in the future")
	ErrPropertyUnavailable   = errors.New("property unavailable")
	ErrGuestLimitExceeded    = errors.New("guest count exceeds limit")
	ErrDatesUnavailable      = errors.New("dates unavailable")
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrAccessDenied       = errors.New("you do not have access to this booking")
	ErrAlreadyFinal       = errors.New("booking is already cancelled or completed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotShortTermRental = errors.New("property is not available for nightly booking")
)
