package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// CountAvailable counts the free tickets of a ticket type
func (r *PostgresTicketRepository) CountAvailable(ctx context.Context, ticketTypeID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.count_available")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	query := `
		SELECT COUNT(*) FROM tickets
		WHERE ticket_type_id = $1 AND order_id IS NULL
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, ticketTypeID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count available tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// Available returns the free tickets of a ticket type
func (r *PostgresTicketRepository) Available(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.available")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	query := `
		SELECT id, ticket_type_id, order_id FROM tickets
		WHERE ticket_type_id = $1 AND order_id IS NULL
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, ticketTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get available tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t := &domain.Ticket{}
		if err := rows.Scan(&t.ID, &t.TicketTypeID, &t.OrderID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

// CountByOrder counts the tickets currently held by an order
func (r *PostgresTicketRepository) CountByOrder(ctx context.Context, orderID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.count_by_order")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	query := `SELECT COUNT(*) FROM tickets WHERE order_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count tickets by order: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// ClaimForOrder locks up to quantity free tickets with SKIP LOCKED and
// assigns them to the order. Rows locked by a concurrent claim are
// excluded from the candidate set instead of waited on, so contending
// allocations on the same ticket type never queue behind each other.
func (r *PostgresTicketRepository) ClaimForOrder(ctx context.Context, tx pgx.Tx, ticketTypeID, orderID string, quantity int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.claim_for_order")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_type_id", ticketTypeID),
		attribute.String("order_id", orderID),
		attribute.Int("quantity", quantity),
	)

	query := `
		WITH picked AS (
			SELECT id FROM tickets
			WHERE ticket_type_id = $1 AND order_id IS NULL
			ORDER BY id
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE tickets t SET order_id = $3
		FROM picked
		WHERE t.id = picked.id
	`

	result, err := tx.Exec(ctx, query, ticketTypeID, quantity, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to claim tickets: %w", err)
	}

	claimed := int(result.RowsAffected())
	span.SetAttributes(attribute.Int("claimed", claimed))
	span.SetStatus(codes.Ok, "")
	return claimed, nil
}

// ReleaseFromOrder clears the order reference on up to quantity of the
// order's tickets. Selection among the order's tickets is arbitrary;
// the rows are locked plainly (no SKIP LOCKED) because only this
// order's cancellation path ever touches them.
func (r *PostgresTicketRepository) ReleaseFromOrder(ctx context.Context, tx pgx.Tx, orderID string, quantity int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.release_from_order")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.Int("quantity", quantity),
	)

	query := `
		WITH held AS (
			SELECT id FROM tickets
			WHERE order_id = $1
			ORDER BY id
			LIMIT $2
			FOR UPDATE
		)
		UPDATE tickets t SET order_id = NULL
		FROM held
		WHERE t.id = held.id
	`

	result, err := tx.Exec(ctx, query, orderID, quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to release tickets: %w", err)
	}

	released := int(result.RowsAffected())
	span.SetAttributes(attribute.Int("released", released))
	span.SetStatus(codes.Ok, "")
	return released, nil
}

// Ensure PostgresTicketRepository implements TicketRepository
var _ TicketRepository = (*PostgresTicketRepository)(nil)
