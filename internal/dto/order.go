package dto

import (
	"time"

	"github.com/ticketforge/ticketing/internal/domain"
)

// CreateOrderRequest represents a request to book tickets
type CreateOrderRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// CancelOrderRequest represents a request to cancel part of an order
type CancelOrderRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	TicketTypeID      string    `json:"ticket_type_id"`
	Quantity          int       `json:"quantity"`
	Fulfilled         bool      `json:"fulfilled"`
	CancelledQuantity int       `json:"cancelled_quantity"`
	CreatedOn         time.Time `json:"created_on"`
}

// CancelOrderResponse represents the result of a cancellation
type CancelOrderResponse struct {
	OrderID           string `json:"order_id"`
	CancelledQuantity int    `json:"cancelled_quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
}

// OrderFromDomain converts a domain Order to an OrderResponse
func OrderFromDomain(o *domain.Order, cancelledQuantity int) *OrderResponse {
	return &OrderResponse{
		ID:                o.ID,
		UserID:            o.UserID,
		TicketTypeID:      o.TicketTypeID,
		Quantity:          o.Quantity,
		Fulfilled:         o.Fulfilled,
		CancelledQuantity: cancelledQuantity,
		CreatedOn:         o.CreatedOn,
	}
}
