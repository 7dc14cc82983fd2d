package domain

import "errors"

// Domain errors
var (
	// Order errors
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyFulfilled = errors.New("order already fulfilled")

	// Cancellation validation errors
	ErrCancellationWindowExpired = errors.New("booking older than 30 minutes cannot be cancelled")
	ErrInvalidQuantity           = errors.New("cancel quantity must be 1 or more")
	ErrQuantityExceedsOrder      = errors.New("cancel quantity cannot be greater than total booked quantity")
	ErrQuantityExceedsRemaining  = errors.New("cancel quantity cannot be greater than remaining quantity")

	// Validation errors
	ErrInvalidUserID       = errors.New("invalid user id")
	ErrInvalidOrderID      = errors.New("invalid order id")
	ErrInvalidEventID      = errors.New("invalid event id")
	ErrInvalidTicketTypeID = errors.New("invalid ticket type id")
	ErrInvalidPoolSize     = errors.New("ticket type quantity must be 1 or more")

	// Not found errors
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")

	// Internal invariant errors
	ErrReleaseShortfall = errors.New("released fewer tickets than the order holds")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketTypeNotFound)
}

// IsValidationError checks if the error is a user-facing validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrCancellationWindowExpired) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrQuantityExceedsOrder) ||
		errors.Is(err, ErrQuantityExceedsRemaining) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidOrderID) ||
		errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidTicketTypeID) ||
		errors.Is(err, ErrInvalidPoolSize)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrOrderAlreadyFulfilled)
}
