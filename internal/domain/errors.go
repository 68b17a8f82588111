package domain

import "errors"

// Error kinds. Every domain error wraps exactly one of these so callers can
// branch on the kind with errors.Is without knowing the concrete sentinel.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidState     = errors.New("invalid state")
)

var (
	ErrEventNotFound  = newError(ErrNotFound, "event not found")
	ErrOrderNotFound  = newError(ErrNotFound, "order not found")
	ErrTicketNotFound = newError(ErrNotFound, "ticket not found")

	ErrInvalidID            = newError(ErrInvalidArgument, "invalid id")
	ErrUserIDRequired       = newError(ErrInvalidArgument, "user id is required")
	ErrEventIDRequired      = newError(ErrInvalidArgument, "event id is required")
	ErrInvalidQuantity      = newError(ErrInvalidArgument, "quantity must be greater than zero")
	ErrInvalidUnitPrice     = newError(ErrInvalidArgument, "unit price must be between 0 and 9999999999.99 with at most two decimals")
	ErrOrderAmountTooLarge  = newError(ErrInvalidArgument, "order total exceeds 999999999999.99")
	ErrAmountOutOfRange     = newError(ErrInvalidArgument, "amount out of range")
	ErrInvalidTicketType    = newError(ErrInvalidArgument, "invalid ticket type")
	ErrInvalidOrderStatus   = newError(ErrInvalidArgument, "invalid order status")
	ErrEventTitleRequired   = newError(ErrInvalidArgument, "event title is required")
	ErrInvalidTotalSeats    = newError(ErrInvalidArgument, "total seats must be greater than zero")
	ErrInvalidBasePrice     = newError(ErrInvalidArgument, "base price must be between 0 and 9999999999.99 with at most two decimals")
	ErrInvalidEventSchedule = newError(ErrInvalidArgument, "event must not end before it starts")

	ErrNotEnoughSeats = newError(ErrCapacityExceeded, "not enough seats available")

	ErrOrderNotCompleted = newError(ErrInvalidState, "cannot cancel a non-completed order")
	ErrEventHasOrders    = newError(ErrInvalidState, "event has orders and cannot be deleted")

	// ErrTicketNumberTaken is reported by ticket stores on a number collision.
	// The issuer retries with fresh numbers and only surfaces it once the
	// retries run out.
	ErrTicketNumberTaken = errors.New("ticket number already taken")
)

type kindError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
