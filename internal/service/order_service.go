package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/internal/dto"
	"github.com/ticketforge/ticketing/internal/repository"
	"github.com/ticketforge/ticketing/pkg/logger"
	"github.com/ticketforge/ticketing/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// OrderService defines the interface for the order flow
type OrderService interface {
	// CreateOrder creates an order and runs it through the allocation
	// engine. When the pool cannot cover the quantity the order row is
	// discarded and the insufficient-availability result is returned
	// with a nil response.
	CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, domain.BookingResult, error)

	// GetOrder retrieves an order owned by the user
	GetOrder(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error)

	// GetUserOrders retrieves the user's orders, newest first
	GetUserOrders(ctx context.Context, userID string, page, pageSize int) ([]*dto.OrderResponse, error)
}

// orderService implements OrderService
type orderService struct {
	orderRepo        repository.OrderRepository
	cancellationRepo repository.CancellationRepository
	ticketTypeRepo   repository.EventRepository
	allocation       AllocationService
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	cancellationRepo repository.CancellationRepository,
	ticketTypeRepo repository.EventRepository,
	allocation AllocationService,
) OrderService {
	return &orderService{
		orderRepo:        orderRepo,
		cancellationRepo: cancellationRepo,
		ticketTypeRepo:   ticketTypeRepo,
		allocation:       allocation,
	}
}

// CreateOrder creates an order and runs it through the allocation engine
func (s *orderService) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, domain.BookingResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.create")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, "", domain.ErrInvalidUserID
	}
	if req == nil || req.TicketTypeID == "" {
		span.SetStatus(codes.Error, "invalid ticket_type_id")
		return nil, "", domain.ErrInvalidTicketTypeID
	}
	if req.Quantity < 1 {
		span.SetStatus(codes.Error, "invalid quantity")
		return nil, "", domain.ErrInvalidQuantity
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("ticket_type_id", req.TicketTypeID),
		attribute.Int("quantity", req.Quantity),
	)

	// Reject unknown ticket types before creating the order row
	if _, err := s.ticketTypeRepo.GetTicketTypeByID(ctx, req.TicketTypeID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ticket type lookup failed")
		return nil, "", err
	}

	now := time.Now()
	order := &domain.Order{
		ID:           uuid.New().String(),
		UserID:       userID,
		TicketTypeID: req.TicketTypeID,
		Quantity:     req.Quantity,
		Fulfilled:    false,
		CreatedOn:    now,
		UpdatedOn:    now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create order")
		return nil, "", err
	}

	result, err := s.allocation.Book(ctx, order.ID)
	if err != nil {
		// Keep no half-made orders around on engine errors either
		s.discardOrder(ctx, order.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocation failed")
		return nil, "", err
	}

	if result == domain.ResultInsufficientAvailability {
		s.discardOrder(ctx, order.ID)
		span.SetStatus(codes.Ok, "insufficient availability")
		return nil, result, nil
	}

	order.Fulfilled = true
	span.SetStatus(codes.Ok, "order fulfilled")

	return dto.OrderFromDomain(order, 0), result, nil
}

// discardOrder removes an order that could not be fulfilled
func (s *orderService) discardOrder(ctx context.Context, orderID string) {
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		logger.Get().Warn("failed to discard unfulfilled order",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

// GetOrder retrieves an order owned by the user
func (s *orderService) GetOrder(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.get")
	defer span.End()

	if orderID == "" {
		span.SetStatus(codes.Error, "invalid order_id")
		return nil, domain.ErrInvalidOrderID
	}

	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.String("user_id", userID),
	)

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get order")
		return nil, err
	}

	if !order.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "order owned by another user")
		return nil, domain.ErrOrderNotFound
	}

	cancelled, err := s.cancellationRepo.SumByOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to sum cancellations")
		return nil, err
	}

	span.SetStatus(codes.Ok, "order retrieved")
	return dto.OrderFromDomain(order, cancelled), nil
}

// GetUserOrders retrieves the user's orders, newest first
func (s *orderService) GetUserOrders(ctx context.Context, userID string, page, pageSize int) ([]*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.get_user_orders")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	orders, err := s.orderRepo.GetByUserID(ctx, userID, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get orders")
		return nil, err
	}

	responses := make([]*dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		cancelled, err := s.cancellationRepo.SumByOrder(ctx, order.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to sum cancellations")
			return nil, err
		}
		responses = append(responses, dto.OrderFromDomain(order, cancelled))
	}

	span.SetStatus(codes.Ok, "orders retrieved")
	return responses, nil
}

// Ensure orderService implements OrderService
var _ OrderService = (*orderService)(nil)
