package lease

import "errors"

var (
	ErrLeaseNotFound       = errors.New("lease application not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrPropertyUnavailable = errors.New("property unavailable")
	ErrNotLongTermRental   = errors.New("property is not listed for long-term rental")
	ErrMoveInNotFuture     = errors.New("move-in must be in the future")
	ErrInvalidTerm         = errors.New("lease term must be at least one month")
	ErrDuplicateOpen       = errors.New("you already have an open application for this property")
	ErrInvalidTransition   = errors.New("invalid status transition")
)
