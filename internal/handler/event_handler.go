package handler

import (
	"errors"
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

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, event)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, event)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	events, err := h.eventService.ListEvents(ctx, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.SuccessWithMeta(c, events, gin.H{
		"page":      page,
		"page_size": pageSize,
		"count":     len(events),
	})
}

// CreateTicketType handles POST /events/:id/ticket-types
func (h *EventHandler) CreateTicketType(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create_ticket_type")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")

	var req dto.CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("quantity", req.Quantity),
	)

	tt, err := h.eventService.CreateTicketType(ctx, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("ticket_type_id", tt.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, tt)
}

// GetSummary handles GET /events/:id/summary
func (h *EventHandler) GetSummary(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.summary")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	summary, err := h.eventService.Summary(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, summary)
}

// handleError maps domain errors to HTTP status codes
func (h *EventHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrTicketTypeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidEventID),
		errors.Is(err, domain.ErrInvalidPoolSize):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
