package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// CreateEvent creates a new event record
func (r *PostgresEventRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	query := `
		INSERT INTO events (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetEventByID retrieves an event by its ID
func (r *PostgresEventRepository) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	event := &domain.Event{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// ListEvents retrieves events ordered by creation time
func (r *PostgresEventRepository) ListEvents(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM events
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event := &domain.Event{}
		if err := rows.Scan(&event.ID, &event.Name, &event.Description, &event.CreatedAt, &event.UpdatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// CreateTicketType creates a ticket type and bulk-creates its ticket
// pool in a single transaction. The pool rows are the ticket type's
// entire inventory for its lifetime; no resize path exists.
func (r *PostgresEventRepository) CreateTicketType(ctx context.Context, tt *domain.TicketType) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create_ticket_type")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_type_id", tt.ID),
		attribute.String("event_id", tt.EventID),
		attribute.Int("quantity", tt.Quantity),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertType := `
		INSERT INTO ticket_types (id, event_id, name, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertType, tt.ID, tt.EventID, tt.Name, tt.Quantity, tt.CreatedAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create ticket type: %w", err)
	}

	insertPool := `
		INSERT INTO tickets (id, ticket_type_id, order_id)
		SELECT gen_random_uuid(), $1, NULL
		FROM generate_series(1, $2)
	`
	result, err := tx.Exec(ctx, insertPool, tt.ID, tt.Quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create ticket pool: %w", err)
	}
	if int(result.RowsAffected()) != tt.Quantity {
		span.SetStatus(codes.Error, "pool size mismatch")
		return fmt.Errorf("created %d tickets, expected %d", result.RowsAffected(), tt.Quantity)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetTicketTypeByID retrieves a ticket type by its ID
func (r *PostgresEventRepository) GetTicketTypeByID(ctx context.Context, id string) (*domain.TicketType, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_ticket_type")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	query := `
		SELECT id, event_id, name, quantity, created_at
		FROM ticket_types
		WHERE id = $1
	`

	tt := &domain.TicketType{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Quantity, &tt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTicketTypeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return tt, nil
}

// ListTicketTypes retrieves the ticket types belonging to an event
func (r *PostgresEventRepository) ListTicketTypes(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_ticket_types")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT id, event_id, name, quantity, created_at
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list ticket types: %w", err)
	}
	defer rows.Close()

	var types []*domain.TicketType
	for rows.Next() {
		tt := &domain.TicketType{}
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Quantity, &tt.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		types = append(types, tt)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating ticket types: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(types)))
	span.SetStatus(codes.Ok, "")
	return types, nil
}

// CountOrders counts all orders whose ticket type belongs to the event
func (r *PostgresEventRepository) CountOrders(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.count_orders")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT COUNT(*)
		FROM orders o
		JOIN ticket_types tt ON o.ticket_type_id = tt.id
		WHERE tt.event_id = $1
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// BookedQuantity sums order quantities over the event
func (r *PostgresEventRepository) BookedQuantity(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.booked_quantity")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT COALESCE(SUM(o.quantity), 0)
		FROM orders o
		JOIN ticket_types tt ON o.ticket_type_id = tt.id
		WHERE tt.event_id = $1
	`

	var total int
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to sum booked quantity: %w", err)
	}

	span.SetAttributes(attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return total, nil
}

// CancelledQuantity sums ledger-entry quantities over the event
func (r *PostgresEventRepository) CancelledQuantity(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.cancelled_quantity")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT COALESCE(SUM(c.quantity), 0)
		FROM cancellations c
		JOIN orders o ON c.order_id = o.id
		JOIN ticket_types tt ON o.ticket_type_id = tt.id
		WHERE tt.event_id = $1
	`

	var total int
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to sum cancelled quantity: %w", err)
	}

	span.SetAttributes(attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return total, nil
}

// PeakCancellationDate returns the calendar date with the largest
// cancelled quantity for the event. Ties resolve to the earliest date.
func (r *PostgresEventRepository) PeakCancellationDate(ctx context.Context, eventID string) (*time.Time, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.peak_cancellation_date")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT c.created_on::date AS day, SUM(c.quantity) AS total
		FROM cancellations c
		JOIN orders o ON c.order_id = o.id
		JOIN ticket_types tt ON o.ticket_type_id = tt.id
		WHERE tt.event_id = $1
		GROUP BY day
		ORDER BY total DESC, day ASC
		LIMIT 1
	`

	var day time.Time
	var total int
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&day, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "no cancellations")
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get peak cancellation date: %w", err)
	}

	span.SetAttributes(attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return &day, nil
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
