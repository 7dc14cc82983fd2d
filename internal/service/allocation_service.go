package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/internal/metrics"
	"github.com/ticketforge/ticketing/internal/repository"
	"github.com/ticketforge/ticketing/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AllocationService defines the interface for the ticket allocation engine
type AllocationService interface {
	// Book attempts to allocate an order's full quantity from the ticket
	// pool. The outcome distinguishes contention loss from errors: a
	// partial claim rolls back and reports ResultInsufficientAvailability
	// with a nil error.
	Book(ctx context.Context, orderID string) (domain.BookingResult, error)
}

// allocationService implements AllocationService
type allocationService struct {
	pool       TxBeginner
	orderRepo  repository.OrderRepository
	ticketRepo repository.TicketRepository
	outboxRepo repository.OutboxRepository
}

// NewAllocationService creates a new allocation service
func NewAllocationService(
	pool TxBeginner,
	orderRepo repository.OrderRepository,
	ticketRepo repository.TicketRepository,
	outboxRepo repository.OutboxRepository,
) AllocationService {
	return &allocationService{
		pool:       pool,
		orderRepo:  orderRepo,
		ticketRepo: ticketRepo,
		outboxRepo: outboxRepo,
	}
}

// Book attempts to allocate an order's full quantity from the ticket pool
func (s *allocationService) Book(ctx context.Context, orderID string) (domain.BookingResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.allocation.book")
	defer span.End()

	if orderID == "" {
		span.SetStatus(codes.Error, "invalid order_id")
		return "", domain.ErrInvalidOrderID
	}

	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get order")
		return "", err
	}

	if order.Fulfilled {
		span.SetStatus(codes.Error, "order already fulfilled")
		return "", domain.ErrOrderAlreadyFulfilled
	}

	span.SetAttributes(
		attribute.String("ticket_type_id", order.TicketTypeID),
		attribute.Int("quantity", order.Quantity),
	)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin transaction")
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	claimed, err := s.ticketRepo.ClaimForOrder(ctx, tx, order.TicketTypeID, order.ID, order.Quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to claim tickets")
		return "", err
	}

	// Fewer rows than requested means a concurrent booking won the race.
	// The rollback releases whatever was claimed.
	if claimed != order.Quantity {
		span.SetAttributes(attribute.Int("claimed", claimed))
		span.SetStatus(codes.Ok, "insufficient availability")
		metrics.RecordRejected(ctx, order.TicketTypeID)
		return domain.ResultInsufficientAvailability, nil
	}

	if err := s.orderRepo.MarkFulfilled(ctx, tx, order.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to mark order fulfilled")
		return "", err
	}

	msg, err := domain.NewOutboxMessage(order.ID, domain.EventOrderBooked, &domain.OrderBookedEvent{
		OrderID:      order.ID,
		UserID:       order.UserID,
		TicketTypeID: order.TicketTypeID,
		Quantity:     order.Quantity,
		BookedAt:     time.Now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build outbox message")
		return "", fmt.Errorf("failed to build outbox message: %w", err)
	}

	if err := s.outboxRepo.CreateTx(ctx, tx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write outbox message")
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to commit transaction")
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.RecordFulfilled(ctx, order.TicketTypeID, order.Quantity)
	span.SetStatus(codes.Ok, "order fulfilled")

	return domain.ResultFulfilled, nil
}

// Ensure allocationService implements AllocationService
var _ AllocationService = (*allocationService)(nil)
