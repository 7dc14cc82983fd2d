package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/internal/dto"
	"github.com/ticketforge/ticketing/internal/service"
	"github.com/ticketforge/ticketing/pkg/response"
	"github.com/ticketforge/ticketing/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	orderService        service.OrderService
	cancellationService service.CancellationService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService, cancellationService service.CancellationService) *OrderHandler {
	return &OrderHandler{
		orderService:        orderService,
		cancellationService: cancellationService,
	}
}

// CreateOrder handles POST /orders. An order the pool cannot cover is
// discarded and answered with 422 rather than left half-made.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "missing user identity")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("ticket_type_id", req.TicketTypeID),
		attribute.Int("quantity", req.Quantity),
	)

	order, result, err := h.orderService.CreateOrder(ctx, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	if result == domain.ResultInsufficientAvailability {
		span.SetStatus(codes.Ok, "insufficient availability")
		response.UnprocessableEntity(c, "not enough tickets available")
		return
	}

	span.SetAttributes(attribute.String("order_id", order.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "missing user identity")
		return
	}

	orderID := c.Param("id")
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("order_id", orderID),
	)

	order, err := h.orderService.GetOrder(ctx, orderID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, order)
}

// GetUserOrders handles GET /orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "missing user identity")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)

	orders, err := h.orderService.GetUserOrders(ctx, userID, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.SuccessWithMeta(c, orders, gin.H{
		"page":      page,
		"page_size": pageSize,
		"count":     len(orders),
	})
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	if userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "missing user identity")
		return
	}

	orderID := c.Param("id")

	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("order_id", orderID),
		attribute.Int("quantity", req.Quantity),
	)

	result, err := h.cancellationService.Cancel(ctx, orderID, userID, req.Quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// handleError maps domain errors to HTTP status codes
func (h *OrderHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrTicketTypeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrOrderAlreadyFulfilled):
		response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrCancellationWindowExpired):
		response.Error(c, http.StatusConflict, "CANCELLATION_WINDOW_EXPIRED", err.Error(), "")
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrQuantityExceedsOrder),
		errors.Is(err, domain.ErrQuantityExceedsRemaining),
		errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrInvalidOrderID),
		errors.Is(err, domain.ErrInvalidTicketTypeID):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
