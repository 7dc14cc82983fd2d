package domain

import "time"

// CancellationWindow is how long after creation an order may still be
// cancelled.
const CancellationWindow = 30 * time.Minute

// Cancellation is an immutable ledger entry recording a partial or full
// return of an order's tickets. Entries are append-only history: they
// are never merged, edited or deleted, and the sum of an order's entry
// quantities never exceeds the order's quantity.
type Cancellation struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Quantity  int       `json:"quantity"`
	CreatedOn time.Time `json:"created_on"`
}

// CancellationsByDate is a per-calendar-date total of cancelled
// quantities, used by the event aggregator.
type CancellationsByDate struct {
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
}
