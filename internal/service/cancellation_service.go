package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ticketforge/ticketing/internal/clock"
	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/internal/dto"
	"github.com/ticketforge/ticketing/internal/metrics"
	"github.com/ticketforge/ticketing/internal/repository"
	"github.com/ticketforge/ticketing/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CancellationService defines the interface for the cancellation engine
type CancellationService interface {
	// Cancel cancels part of a fulfilled order, releasing the tickets
	// back to the pool and recording an immutable ledger entry.
	// Validations run in order: cancellation window, quantity floor,
	// quantity vs order size, quantity vs remaining uncancelled units.
	Cancel(ctx context.Context, orderID, userID string, quantity int) (*dto.CancelOrderResponse, error)
}

// cancellationService implements CancellationService
type cancellationService struct {
	pool             TxBeginner
	orderRepo        repository.OrderRepository
	ticketRepo       repository.TicketRepository
	cancellationRepo repository.CancellationRepository
	outboxRepo       repository.OutboxRepository
	clk              clock.Clock
}

// NewCancellationService creates a new cancellation service
func NewCancellationService(
	pool TxBeginner,
	orderRepo repository.OrderRepository,
	ticketRepo repository.TicketRepository,
	cancellationRepo repository.CancellationRepository,
	outboxRepo repository.OutboxRepository,
	clk clock.Clock,
) CancellationService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &cancellationService{
		pool:             pool,
		orderRepo:        orderRepo,
		ticketRepo:       ticketRepo,
		cancellationRepo: cancellationRepo,
		outboxRepo:       outboxRepo,
		clk:              clk,
	}
}

// Cancel cancels part of a fulfilled order
func (s *cancellationService) Cancel(ctx context.Context, orderID, userID string, quantity int) (*dto.CancelOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.cancellation.cancel")
	defer span.End()

	if orderID == "" {
		span.SetStatus(codes.Error, "invalid order_id")
		return nil, domain.ErrInvalidOrderID
	}
	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.String("user_id", userID),
		attribute.Int("quantity", quantity),
	)

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get order")
		return nil, err
	}

	// Never reveal another user's order
	if !order.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "order owned by another user")
		return nil, domain.ErrOrderNotFound
	}

	if s.clk.Now().Sub(order.CreatedOn) > domain.CancellationWindow {
		span.SetStatus(codes.Error, "cancellation window expired")
		metrics.RecordCancellationDenied(ctx, "window_expired")
		return nil, domain.ErrCancellationWindowExpired
	}

	if quantity < 1 {
		span.SetStatus(codes.Error, "invalid quantity")
		metrics.RecordCancellationDenied(ctx, "invalid_quantity")
		return nil, domain.ErrInvalidQuantity
	}

	if quantity > order.Quantity {
		span.SetStatus(codes.Error, "quantity exceeds order")
		metrics.RecordCancellationDenied(ctx, "exceeds_order")
		return nil, domain.ErrQuantityExceedsOrder
	}

	alreadyCancelled, err := s.cancellationRepo.SumByOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to sum cancellations")
		return nil, err
	}

	remaining := order.Quantity - alreadyCancelled
	if quantity > remaining {
		span.SetStatus(codes.Error, "quantity exceeds remaining")
		metrics.RecordCancellationDenied(ctx, "exceeds_remaining")
		return nil, domain.ErrQuantityExceedsRemaining
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cancellation := &domain.Cancellation{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		UserID:    userID,
		Quantity:  quantity,
		CreatedOn: s.clk.Now(),
	}
	if err := s.cancellationRepo.CreateTx(ctx, tx, cancellation); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create ledger entry")
		return nil, err
	}

	released, err := s.ticketRepo.ReleaseFromOrder(ctx, tx, orderID, quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to release tickets")
		return nil, err
	}

	// The ledger check above guarantees the order still holds enough
	// tickets, so a shortfall here is an invariant violation.
	if released != quantity {
		span.SetStatus(codes.Error, "release shortfall")
		return nil, fmt.Errorf("released %d of %d tickets for order %s: %w",
			released, quantity, orderID, domain.ErrReleaseShortfall)
	}

	msg, err := domain.NewOutboxMessage(orderID, domain.EventOrderCancelled, &domain.OrderCancelledEvent{
		OrderID:        orderID,
		CancellationID: cancellation.ID,
		UserID:         userID,
		Quantity:       quantity,
		CancelledAt:    time.Now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build outbox message")
		return nil, fmt.Errorf("failed to build outbox message: %w", err)
	}

	if err := s.outboxRepo.CreateTx(ctx, tx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write outbox message")
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.RecordCancellation(ctx, orderID, quantity)
	span.SetStatus(codes.Ok, "cancellation accepted")

	return &dto.CancelOrderResponse{
		OrderID:           orderID,
		CancelledQuantity: quantity,
		RemainingQuantity: remaining - quantity,
	}, nil
}

// Ensure cancellationService implements CancellationService
var _ CancellationService = (*cancellationService)(nil)
