package retry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type mockJSONProducer struct {
	published []struct {
		Topic   string
		Key     string
		Payload interface{}
		Headers map[string]string
	}
	shouldFail bool
}

func (m *mockJSONProducer) ProduceJSON(ctx context.Context, topic string, key string, payload interface{}, headers map[string]string) error {
	if m.shouldFail {
		return errors.New("mock produce failed")
	}

	m.published = append(m.published, struct {
		Topic   string
		Key     string
		Payload interface{}
		Headers map[string]string
	}{
		Topic:   topic,
		Key:     key,
		Payload: payload,
		Headers: headers,
	})

	return nil
}

func TestKafkaDLQPublisher_DLQTopic(t *testing.T) {
	publisher := NewKafkaDLQPublisher(&mockJSONProducer{}, "outbox-worker")

	if got := publisher.DLQTopic("inventory-events"); got != "inventory-events.dlq" {
		t.Errorf("DLQTopic(inventory-events) = %s, want inventory-events.dlq", got)
	}
}

func TestKafkaDLQPublisher_PublishToDLQ(t *testing.T) {
	mock := &mockJSONProducer{}
	publisher := NewKafkaDLQPublisher(mock, "outbox-worker")

	msg := &DLQMessage{
		ID:            "msg-123",
		OriginalTopic: "inventory-events",
		OriginalKey:   "order-456",
		Payload:       json.RawMessage(`{"order_id": "order-456"}`),
		Error:         "kafka connection failed",
		Attempts:      5,
	}

	err := publisher.PublishToDLQ(context.Background(), msg)
	if err != nil {
		t.Fatalf("PublishToDLQ failed: %v", err)
	}

	if len(mock.published) != 1 {
		t.Fatalf("Expected 1 published message, got %d", len(mock.published))
	}

	published := mock.published[0]

	if published.Topic != "inventory-events.dlq" {
		t.Errorf("Topic = %s, want inventory-events.dlq", published.Topic)
	}

	if published.Key != "order-456" {
		t.Errorf("Key = %s, want order-456", published.Key)
	}

	if published.Headers["original_topic"] != "inventory-events" {
		t.Errorf("Header original_topic = %s, want inventory-events", published.Headers["original_topic"])
	}

	if published.Headers["error"] != "kafka connection failed" {
		t.Errorf("Header error = %s, want 'kafka connection failed'", published.Headers["error"])
	}

	if published.Headers["attempts"] != "5" {
		t.Errorf("Header attempts = %s, want 5", published.Headers["attempts"])
	}

	if published.Headers["source"] != "outbox-worker" {
		t.Errorf("Header source = %s, want outbox-worker", published.Headers["source"])
	}

	publishedMsg, ok := published.Payload.(*DLQMessage)
	if !ok {
		t.Fatal("Published payload is not a DLQMessage")
	}

	if publishedMsg.ParkedAt.IsZero() {
		t.Error("ParkedAt should be set")
	}

	if publishedMsg.Source != "outbox-worker" {
		t.Errorf("Source = %s, want outbox-worker", publishedMsg.Source)
	}
}

func TestKafkaDLQPublisher_PublishToDLQ_NilMessage(t *testing.T) {
	publisher := NewKafkaDLQPublisher(&mockJSONProducer{}, "outbox-worker")

	if err := publisher.PublishToDLQ(context.Background(), nil); err == nil {
		t.Error("Expected error for nil message, got nil")
	}
}

func TestKafkaDLQPublisher_PublishToDLQ_ProduceFails(t *testing.T) {
	mock := &mockJSONProducer{shouldFail: true}
	publisher := NewKafkaDLQPublisher(mock, "outbox-worker")

	msg := &DLQMessage{
		ID:            "msg-123",
		OriginalTopic: "inventory-events",
		Error:         "broker unreachable",
		Attempts:      5,
	}

	if err := publisher.PublishToDLQ(context.Background(), msg); err == nil {
		t.Error("Expected error when produce fails, got nil")
	}
}
