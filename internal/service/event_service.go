package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/internal/dto"
	"github.com/ticketforge/ticketing/internal/repository"
	"github.com/ticketforge/ticketing/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventService defines the interface for event catalogue and reporting
type EventService interface {
	// CreateEvent creates a new event
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// GetEvent retrieves an event with its ticket types and availability
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// ListEvents retrieves events, newest first
	ListEvents(ctx context.Context, page, pageSize int) ([]*dto.EventResponse, error)

	// CreateTicketType creates a ticket type and its ticket pool
	CreateTicketType(ctx context.Context, eventID string, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error)

	// Summary aggregates orders and cancellations for an event
	Summary(ctx context.Context, eventID string) (*dto.EventSummaryResponse, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo  repository.EventRepository
	ticketRepo repository.TicketRepository
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository, ticketRepo repository.TicketRepository) EventService {
	return &eventService{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
	}
}

// CreateEvent creates a new event
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if req == nil || req.Name == "" {
		span.SetStatus(codes.Error, "invalid event name")
		return nil, domain.ErrInvalidEventID
	}

	now := time.Now()
	event := &domain.Event{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	span.SetAttributes(attribute.String("event_id", event.ID))

	if err := s.eventRepo.CreateEvent(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create event")
		return nil, err
	}

	span.SetStatus(codes.Ok, "event created")
	return dto.EventFromDomain(event), nil
}

// GetEvent retrieves an event with its ticket types and availability
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get event")
		return nil, err
	}

	ticketTypes, err := s.eventRepo.ListTicketTypes(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list ticket types")
		return nil, err
	}

	resp := dto.EventFromDomain(event)
	for _, tt := range ticketTypes {
		available, err := s.ticketRepo.CountAvailable(ctx, tt.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to count availability")
			return nil, err
		}
		resp.TicketTypes = append(resp.TicketTypes, dto.TicketTypeFromDomain(tt, available))
	}

	span.SetStatus(codes.Ok, "event retrieved")
	return resp, nil
}

// ListEvents retrieves events, newest first
func (s *eventService) ListEvents(ctx context.Context, page, pageSize int) ([]*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	events, err := s.eventRepo.ListEvents(ctx, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list events")
		return nil, err
	}

	responses := make([]*dto.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.EventFromDomain(event))
	}

	span.SetStatus(codes.Ok, "events listed")
	return responses, nil
}

// CreateTicketType creates a ticket type and its ticket pool
func (s *eventService) CreateTicketType(ctx context.Context, eventID string, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create_ticket_type")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if req == nil || req.Quantity < 1 {
		span.SetStatus(codes.Error, "invalid pool size")
		return nil, domain.ErrInvalidPoolSize
	}

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("quantity", req.Quantity),
	)

	// The event must exist before a pool can hang off it
	if _, err := s.eventRepo.GetEventByID(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event lookup failed")
		return nil, err
	}

	tt := &domain.TicketType{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		CreatedAt: time.Now(),
	}

	if err := s.eventRepo.CreateTicketType(ctx, tt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create ticket type")
		return nil, err
	}

	span.SetStatus(codes.Ok, "ticket type created")
	return dto.TicketTypeFromDomain(tt, tt.Quantity), nil
}

// Summary aggregates orders and cancellations for an event
func (s *eventService) Summary(ctx context.Context, eventID string) (*dto.EventSummaryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.summary")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.String("event_id", eventID))

	if _, err := s.eventRepo.GetEventByID(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event lookup failed")
		return nil, err
	}

	totalOrders, err := s.eventRepo.CountOrders(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to count orders")
		return nil, err
	}

	booked, err := s.eventRepo.BookedQuantity(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to sum booked quantity")
		return nil, err
	}

	cancelled, err := s.eventRepo.CancelledQuantity(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to sum cancelled quantity")
		return nil, err
	}

	peakDate, err := s.eventRepo.PeakCancellationDate(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find peak cancellation date")
		return nil, err
	}

	// Rate is the cancelled percentage of booked, rounded to two
	// decimals; an event with no booked tickets has a rate of zero.
	rate := 0.0
	if booked > 0 {
		pct := float64(cancelled) / float64(booked) * 100
		rate = math.Round(pct*100) / 100
	}

	summary := &domain.EventSummary{
		EventID:                  eventID,
		TotalOrders:              totalOrders,
		TotalBookedQuantity:      booked,
		TotalCancelledQuantity:   cancelled,
		CancellationRate:         rate,
		DateWithMaxCancellations: peakDate,
	}

	span.SetStatus(codes.Ok, "summary computed")
	return dto.SummaryFromDomain(summary), nil
}

// Ensure eventService implements EventService
var _ EventService = (*eventService)(nil)
