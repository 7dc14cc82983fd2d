package domain

import (
	"encoding/json"
	"time"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// String returns the string representation of OutboxStatus
func (s OutboxStatus) String() string {
	return string(s)
}

// Inventory event types published through the outbox
const (
	EventOrderBooked    = "order.booked"
	EventOrderCancelled = "order.cancelled"
)

// InventoryEventTopic is the Kafka topic inventory events are relayed to.
const InventoryEventTopic = "inventory-events"

// OutboxMessage is a row in the outbox table. Messages are written in
// the same transaction as the inventory change they describe and
// relayed to Kafka by the outbox worker.
type OutboxMessage struct {
	ID           string       `json:"id"`
	AggregateID  string       `json:"aggregate_id"`
	EventType    string       `json:"event_type"`
	Payload      []byte       `json:"payload"`
	Topic        string       `json:"topic"`
	PartitionKey string       `json:"partition_key"`
	Status       OutboxStatus `json:"status"`
	RetryCount   int          `json:"retry_count"`
	LastError    string       `json:"last_error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	PublishedAt  *time.Time   `json:"published_at,omitempty"`
}

// NewOutboxMessage creates a pending outbox message with a JSON payload
func NewOutboxMessage(aggregateID, eventType string, payload interface{}) (*OutboxMessage, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		AggregateID:  aggregateID,
		EventType:    eventType,
		Payload:      payloadBytes,
		Topic:        InventoryEventTopic,
		PartitionKey: aggregateID,
		Status:       OutboxStatusPending,
		CreatedAt:    time.Now(),
	}, nil
}

// OrderBookedEvent is the payload for an order.booked message
type OrderBookedEvent struct {
	OrderID      string    `json:"order_id"`
	UserID       string    `json:"user_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	Quantity     int       `json:"quantity"`
	BookedAt     time.Time `json:"booked_at"`
}

// OrderCancelledEvent is the payload for an order.cancelled message
type OrderCancelledEvent struct {
	OrderID        string    `json:"order_id"`
	CancellationID string    `json:"cancellation_id"`
	UserID         string    `json:"user_id"`
	Quantity       int       `json:"quantity"`
	CancelledAt    time.Time `json:"cancelled_at"`
}
