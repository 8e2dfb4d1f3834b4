package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNotPayable      = errors.New("payment is not in a payable state")
	ErrAccessDenied    = errors.New("you do not have access to this payment")
)
