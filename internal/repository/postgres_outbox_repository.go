package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketforge/ticketing/internal/domain"
)

// PostgresOutboxRepository implements OutboxRepository using PostgreSQL
type PostgresOutboxRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool}
}

// CreateTx inserts an outbox message within the caller's transaction
func (r *PostgresOutboxRepository) CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	query := `
		INSERT INTO outbox (
			id, aggregate_id, event_type, payload,
			topic, partition_key, status, retry_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		msg.ID,
		msg.AggregateID,
		msg.EventType,
		msg.Payload,
		msg.Topic,
		msg.PartitionKey,
		msg.Status.String(),
		msg.RetryCount,
		msg.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create outbox message: %w", err)
	}

	return nil
}

// GetPendingMessages gets pending messages to be published, oldest first
func (r *PostgresOutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	query := `
		SELECT
			id, aggregate_id, event_type, payload,
			topic, partition_key, status, retry_count,
			COALESCE(last_error, ''), created_at, published_at
		FROM outbox
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg := &domain.OutboxMessage{}
		var status string
		if err := rows.Scan(
			&msg.ID,
			&msg.AggregateID,
			&msg.EventType,
			&msg.Payload,
			&msg.Topic,
			&msg.PartitionKey,
			&status,
			&msg.RetryCount,
			&msg.LastError,
			&msg.CreatedAt,
			&msg.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.Status = domain.OutboxStatus(status)
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}

	return messages, nil
}

// GetFailedMessages gets failed messages still under the retry budget
func (r *PostgresOutboxRepository) GetFailedMessages(ctx context.Context, limit, maxRetries int) ([]*domain.OutboxMessage, error) {
	query := `
		SELECT
			id, aggregate_id, event_type, payload,
			topic, partition_key, status, retry_count,
			COALESCE(last_error, ''), created_at, published_at
		FROM outbox
		WHERE status = 'failed' AND retry_count < $2
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg := &domain.OutboxMessage{}
		var status string
		if err := rows.Scan(
			&msg.ID,
			&msg.AggregateID,
			&msg.EventType,
			&msg.Payload,
			&msg.Topic,
			&msg.PartitionKey,
			&status,
			&msg.RetryCount,
			&msg.LastError,
			&msg.CreatedAt,
			&msg.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.Status = domain.OutboxStatus(status)
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}

	return messages, nil
}

// MarkAsPublished marks a message as successfully published
func (r *PostgresOutboxRepository) MarkAsPublished(ctx context.Context, id string) error {
	query := `
		UPDATE outbox SET
			status = $2,
			published_at = $3
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, domain.OutboxStatusPublished.String(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark message as published: %w", err)
	}

	return nil
}

// MarkAsFailed records a publish failure and bumps the retry count
func (r *PostgresOutboxRepository) MarkAsFailed(ctx context.Context, id, lastError string) error {
	query := `
		UPDATE outbox SET
			status = $2,
			last_error = $3,
			retry_count = retry_count + 1
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, domain.OutboxStatusFailed.String(), lastError)
	if err != nil {
		return fmt.Errorf("failed to mark message as failed: %w", err)
	}

	return nil
}

// Ensure PostgresOutboxRepository implements OutboxRepository
var _ OutboxRepository = (*PostgresOutboxRepository)(nil)
