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

// PostgresOrderRepository implements OrderRepository using PostgreSQL with pgxpool
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

// Create creates a new order record
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", order.ID),
		attribute.String("user_id", order.UserID),
		attribute.String("ticket_type_id", order.TicketTypeID),
		attribute.Int("quantity", order.Quantity),
	)

	query := `
		INSERT INTO orders (id, user_id, ticket_type_id, quantity, fulfilled, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.TicketTypeID,
		order.Quantity,
		order.Fulfilled,
		order.CreatedOn,
		order.UpdatedOn,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create order: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an order by its ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", id))

	query := `
		SELECT id, user_id, ticket_type_id, quantity, fulfilled, created_on, updated_on
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.TicketTypeID,
		&order.Quantity,
		&order.Fulfilled,
		&order.CreatedOn,
		&order.UpdatedOn,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrOrderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return order, nil
}

// GetByUserID retrieves all orders for a user
func (r *PostgresOrderRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.get_by_user_id")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT id, user_id, ticket_type_id, quantity, fulfilled, created_on, updated_on
		FROM orders
		WHERE user_id = $1
		ORDER BY created_on DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get orders by user ID: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TicketTypeID,
			&order.Quantity,
			&order.Fulfilled,
			&order.CreatedOn,
			&order.UpdatedOn,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(orders)))
	span.SetStatus(codes.Ok, "")
	return orders, nil
}

// Delete deletes an order by its ID
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.delete")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", id))

	query := `DELETE FROM orders WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrOrderNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// MarkFulfilled sets fulfilled = true within the caller's transaction.
// The WHERE clause is the fulfillment lock: a concurrent booking that
// already flipped the flag makes this a zero-row update, and the caller
// must roll back.
func (r *PostgresOrderRepository) MarkFulfilled(ctx context.Context, tx pgx.Tx, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.mark_fulfilled")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", id))

	query := `
		UPDATE orders SET
			fulfilled = TRUE,
			updated_on = $2
		WHERE id = $1 AND fulfilled = FALSE
	`

	result, err := tx.Exec(ctx, query, id, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to mark order fulfilled: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "already fulfilled")
		return domain.ErrOrderAlreadyFulfilled
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresOrderRepository implements OrderRepository
var _ OrderRepository = (*PostgresOrderRepository)(nil)
