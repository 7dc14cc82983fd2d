package dto

import (
	"time"

	"github.com/ticketforge/ticketing/internal/domain"
)

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

// CreateTicketTypeRequest represents a request to create a ticket type
// and its ticket pool
type CreateTicketTypeRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	TicketTypes []*TicketTypeResponse `json:"ticket_types,omitempty"`
}

// TicketTypeResponse represents a ticket type with its availability
type TicketTypeResponse struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
}

// EventSummaryResponse represents the aggregated summary of an event
type EventSummaryResponse struct {
	EventID                  string  `json:"event_id"`
	TotalOrders              int     `json:"total_orders"`
	TotalBookedQuantity      int     `json:"total_booked_quantity"`
	TotalCancelledQuantity   int     `json:"total_cancelled_quantity"`
	CancellationRate         float64 `json:"cancellation_rate"`
	DateWithMaxCancellations *string `json:"date_with_max_cancellations"`
}

// EventFromDomain converts a domain Event to an EventResponse
func EventFromDomain(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// TicketTypeFromDomain converts a domain TicketType to a TicketTypeResponse
func TicketTypeFromDomain(tt *domain.TicketType, available int) *TicketTypeResponse {
	return &TicketTypeResponse{
		ID:        tt.ID,
		EventID:   tt.EventID,
		Name:      tt.Name,
		Quantity:  tt.Quantity,
		Available: available,
	}
}

// SummaryFromDomain converts a domain EventSummary to an EventSummaryResponse
func SummaryFromDomain(s *domain.EventSummary) *EventSummaryResponse {
	resp := &EventSummaryResponse{
		EventID:                s.EventID,
		TotalOrders:            s.TotalOrders,
		TotalBookedQuantity:    s.TotalBookedQuantity,
		TotalCancelledQuantity: s.TotalCancelledQuantity,
		CancellationRate:       s.CancellationRate,
	}
	if s.DateWithMaxCancellations != nil {
		d := s.DateWithMaxCancellations.Format("2006-01-02")
		resp.DateWithMaxCancellations = &d
	}
	return resp
}
