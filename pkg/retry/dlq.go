package retry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DLQMessage describes a relay that exhausted its retry budget.
type DLQMessage struct {
	// ID is the outbox message identifier
	ID string `json:"id"`
	// OriginalTopic is the topic the message was destined for
	OriginalTopic string `json:"original_topic"`
	// OriginalKey is the original partition key
	OriginalKey string `json:"original_key"`
	// Payload is the original message payload
	Payload json.RawMessage `json:"payload"`
	// Error is the last publish error
	Error string `json:"error"`
	// Attempts is the number of relay attempts made
	Attempts int `json:"attempts"`
	// ParkedAt is when the message was moved to the DLQ
	ParkedAt time.Time `json:"parked_at"`
	// Source is the service that parked the message
	Source string `json:"source"`
}

// DLQPublisher parks exhausted messages on a dead letter topic.
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg *DLQMessage) error
	// DLQTopic returns the dead letter topic for an original topic
	DLQTopic(originalTopic string) string
}

// JSONProducer is the producer surface the DLQ publisher needs.
type JSONProducer interface {
	ProduceJSON(ctx context.Context, topic string, key string, payload interface{}, headers map[string]string) error
}

// KafkaDLQPublisher publishes exhausted messages to a ".dlq" sibling
// of the original topic.
type KafkaDLQPublisher struct {
	producer JSONProducer
	source   string
}

var _ DLQPublisher = (*KafkaDLQPublisher)(nil)

// NewKafkaDLQPublisher creates a new Kafka DLQ publisher
func NewKafkaDLQPublisher(producer JSONProducer, source string) *KafkaDLQPublisher {
	return &KafkaDLQPublisher{
		producer: producer,
		source:   source,
	}
}

// PublishToDLQ publishes a message to the dead letter topic
func (p *KafkaDLQPublisher) PublishToDLQ(ctx context.Context, msg *DLQMessage) error {
	if msg == nil {
		return fmt.Errorf("DLQ message cannot be nil")
	}

	msg.ParkedAt = time.Now()
	msg.Source = p.source

	headers := map[string]string{
		"content_type":   "application/json",
		"original_topic": msg.OriginalTopic,
		"error":          msg.Error,
		"attempts":       fmt.Sprintf("%d", msg.Attempts),
		"parked_at":      msg.ParkedAt.Format(time.RFC3339),
		"source":         msg.Source,
	}

	return p.producer.ProduceJSON(ctx, p.DLQTopic(msg.OriginalTopic), msg.OriginalKey, msg, headers)
}

// DLQTopic returns the dead letter topic for an original topic
func (p *KafkaDLQPublisher) DLQTopic(originalTopic string) string {
	return originalTopic + ".dlq"
}
