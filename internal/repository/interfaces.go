package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ticketforge/ticketing/internal/domain"
)

// EventRepository defines the interface for event and ticket type data access
type EventRepository interface {
	// CreateEvent creates a new event record
	CreateEvent(ctx context.Context, event *domain.Event) error

	// GetEventByID retrieves an event by its ID
	GetEventByID(ctx context.Context, id string) (*domain.Event, error)

	// ListEvents retrieves events ordered by creation time
	ListEvents(ctx context.Context, limit, offset int) ([]*domain.Event, error)

	// CreateTicketType creates a ticket type and bulk-creates its ticket
	// pool (quantity rows, all free) in a single transaction
	CreateTicketType(ctx context.Context, tt *domain.TicketType) error

	// GetTicketTypeByID retrieves a ticket type by its ID
	GetTicketTypeByID(ctx context.Context, id string) (*domain.TicketType, error)

	// ListTicketTypes retrieves the ticket types belonging to an event
	ListTicketTypes(ctx context.Context, eventID string) ([]*domain.TicketType, error)

	// CountOrders counts all orders whose ticket type belongs to the event
	CountOrders(ctx context.Context, eventID string) (int, error)

	// BookedQuantity sums order quantities over the event (0 if none)
	BookedQuantity(ctx context.Context, eventID string) (int, error)

	// CancelledQuantity sums ledger-entry quantities over the event (0 if none)
	CancelledQuantity(ctx context.Context, eventID string) (int, error)

	// PeakCancellationDate returns the calendar date with the largest
	// cancelled quantity for the event, or nil when there are none.
	// Ties resolve to the earliest date.
	PeakCancellationDate(ctx context.Context, eventID string) (*time.Time, error)
}

// TicketRepository defines the interface for the ticket pool
type TicketRepository interface {
	// CountAvailable counts the free tickets of a ticket type
	CountAvailable(ctx context.Context, ticketTypeID string) (int, error)

	// Available returns the free tickets of a ticket type. Read-only
	// snapshot, tolerant of staleness under concurrency.
	Available(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error)

	// CountByOrder counts the tickets currently held by an order
	CountByOrder(ctx context.Context, orderID string) (int, error)

	// ClaimForOrder locks up to quantity free tickets of the ticket type,
	// skipping rows locked by concurrent claims, and assigns them to the
	// order. Returns the number of tickets actually claimed. Must run
	// inside the caller's transaction so a shortfall can be rolled back.
	ClaimForOrder(ctx context.Context, tx pgx.Tx, ticketTypeID, orderID string, quantity int) (int, error)

	// ReleaseFromOrder clears the order reference on up to quantity of
	// the order's tickets, returning them to the pool. Returns the number
	// of tickets actually released.
	ReleaseFromOrder(ctx context.Context, tx pgx.Tx, orderID string, quantity int) (int, error)
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create creates a new order record (unfulfilled)
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its ID
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetByUserID retrieves all orders for a user
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)

	// Delete deletes an order by its ID. The transport layer uses this to
	// discard orders that could not be fulfilled.
	Delete(ctx context.Context, id string) error

	// MarkFulfilled sets fulfilled = true within the caller's transaction
	MarkFulfilled(ctx context.Context, tx pgx.Tx, id string) error
}

// CancellationRepository defines the interface for the cancellation ledger
type CancellationRepository interface {
	// CreateTx appends a ledger entry within the caller's transaction
	CreateTx(ctx context.Context, tx pgx.Tx, c *domain.Cancellation) error

	// SumByOrder sums the cancelled quantities recorded for an order
	SumByOrder(ctx context.Context, orderID string) (int, error)

	// ListByOrder retrieves the ledger entries for an order, oldest first
	ListByOrder(ctx context.Context, orderID string) ([]*domain.Cancellation, error)
}

// OutboxRepository defines the interface for the transactional outbox
type OutboxRepository interface {
	// CreateTx inserts an outbox message within the caller's transaction
	CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error

	// GetPendingMessages gets pending messages to be published, oldest first
	GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)

	// GetFailedMessages gets failed messages still under the retry budget
	GetFailedMessages(ctx context.Context, limit, maxRetries int) ([]*domain.OutboxMessage, error)

	// MarkAsPublished marks a message as successfully published
	MarkAsPublished(ctx context.Context, id string) error

	// MarkAsFailed records a publish failure and bumps the retry count
	MarkAsFailed(ctx context.Context, id, lastError string) error
}
