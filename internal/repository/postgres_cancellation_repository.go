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

// PostgresCancellationRepository implements CancellationRepository using
// PostgreSQL with pgxpool. The ledger is append-only: there is no update
// or delete path.
type PostgresCancellationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCancellationRepository creates a new PostgresCancellationRepository
func NewPostgresCancellationRepository(pool *pgxpool.Pool) *PostgresCancellationRepository {
	return &PostgresCancellationRepository{pool: pool}
}

// CreateTx appends a ledger entry within the caller's transaction
func (r *PostgresCancellationRepository) CreateTx(ctx context.Context, tx pgx.Tx, c *domain.Cancellation) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cancellation.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("cancellation_id", c.ID),
		attribute.String("order_id", c.OrderID),
		attribute.Int("quantity", c.Quantity),
	)

	query := `
		INSERT INTO cancellations (id, order_id, user_id, quantity, created_on)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query,
		c.ID,
		c.OrderID,
		c.UserID,
		c.Quantity,
		c.CreatedOn,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create cancellation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// SumByOrder sums the cancelled quantities recorded for an order
func (r *PostgresCancellationRepository) SumByOrder(ctx context.Context, orderID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cancellation.sum_by_order")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	query := `
		SELECT COALESCE(SUM(quantity), 0) FROM cancellations
		WHERE order_id = $1
	`

	var total int
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to sum cancellations: %w", err)
	}

	span.SetAttributes(attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return total, nil
}

// ListByOrder retrieves the ledger entries for an order, oldest first
func (r *PostgresCancellationRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.Cancellation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cancellation.list_by_order")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	query := `
		SELECT id, order_id, user_id, quantity, created_on
		FROM cancellations
		WHERE order_id = $1
		ORDER BY created_on ASC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list cancellations: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Cancellation
	for rows.Next() {
		c := &domain.Cancellation{}
		if err := rows.Scan(&c.ID, &c.OrderID, &c.UserID, &c.Quantity, &c.CreatedOn); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan cancellation: %w", err)
		}
		entries = append(entries, c)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating cancellations: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(entries)))
	span.SetStatus(codes.Ok, "")
	return entries, nil
}

// Ensure PostgresCancellationRepository implements CancellationRepository
var _ CancellationRepository = (*PostgresCancellationRepository)(nil)
