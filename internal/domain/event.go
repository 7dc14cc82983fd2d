package domain

import "time"

// Event represents an event entity. Ticket inventory hangs off its
// ticket types, not off the event itself.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TicketType represents a class of fungible tickets within an event.
// Quantity is fixed at creation time: the ticket pool is bulk-created
// in the same transaction and never resized afterwards.
type TicketType struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// EventSummary holds derived reporting statistics for an event.
// Computed on demand by scanning orders and the cancellation ledger.
type EventSummary struct {
	EventID                  string     `json:"event_id"`
	TotalOrders              int        `json:"total_orders"`
	TotalBookedQuantity      int        `json:"total_booked_quantity"`
	TotalCancelledQuantity   int        `json:"total_cancelled_quantity"`
	CancellationRate         float64    `json:"cancellation_rate"`
	DateWithMaxCancellations *time.Time `json:"date_with_max_cancellations"`
}
