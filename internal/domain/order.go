package domain

import "time"

// Order represents a user's request for tickets of one ticket type.
// Fulfilled is true only when exactly Quantity tickets were claimed in
// a single atomic step; it is never partially true.
type Order struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	Quantity     int       `json:"quantity"`
	Fulfilled    bool      `json:"fulfilled"`
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`
}

// BelongsToUser checks if the order belongs to the given user
func (o *Order) BelongsToUser(userID string) bool {
	return o.UserID == userID
}

// BookingResult is the outcome of an allocation attempt. Losing a race
// or running out of free tickets is an expected outcome, not an error:
// callers branch on the result instead of inspecting Fulfilled.
type BookingResult string

const (
	ResultFulfilled                BookingResult = "fulfilled"
	ResultInsufficientAvailability BookingResult = "insufficient_availability"
)

// String returns the string representation of BookingResult
func (r BookingResult) String() string {
	return string(r)
}
