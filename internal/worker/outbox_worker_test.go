package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/pkg/retry"
)

// mockOutboxRepo is a mock OutboxRepository for the poll loops
type mockOutboxRepo struct {
	pendingCalls int64
	failedCalls  int64
}

func (m *mockOutboxRepo) CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error {
	return nil
}

func (m *mockOutboxRepo) GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	atomic.AddInt64(&m.pendingCalls, 1)
	return nil, nil
}

func (m *mockOutboxRepo) GetFailedMessages(ctx context.Context, limit, maxRetries int) ([]*domain.OutboxMessage, error) {
	atomic.AddInt64(&m.failedCalls, 1)
	return nil, nil
}

func (m *mockOutboxRepo) MarkAsPublished(ctx context.Context, id string) error {
	return nil
}

func (m *mockOutboxRepo) MarkAsFailed(ctx context.Context, id, lastError string) error {
	return nil
}

func TestDefaultOutboxWorkerConfig(t *testing.T) {
	config := DefaultOutboxWorkerConfig()

	if config.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want %v", config.PollInterval, time.Second)
	}

	if config.BatchSize != 100 {
		t.Errorf("BatchSize = %v, want %v", config.BatchSize, 100)
	}

	if config.RetryInterval != 5*time.Second {
		t.Errorf("RetryInterval = %v, want %v", config.RetryInterval, 5*time.Second)
	}

	if config.MaxRetries != 5 {
		t.Errorf("MaxRetries = %v, want %v", config.MaxRetries, 5)
	}
}

func TestNewOutboxWorker_WithDefaultConfig(t *testing.T) {
	worker := NewOutboxWorker(nil, nil, nil)

	if worker == nil {
		t.Fatal("NewOutboxWorker() returned nil")
	}

	if worker.config == nil {
		t.Fatal("Worker config should not be nil")
	}

	if worker.config.PollInterval != time.Second {
		t.Errorf("Default PollInterval = %v, want %v", worker.config.PollInterval, time.Second)
	}

	if worker.running {
		t.Error("Worker should not be running initially")
	}
}

func TestNewOutboxWorker_WithCustomConfig(t *testing.T) {
	customConfig := &OutboxWorkerConfig{
		PollInterval:  200 * time.Millisecond,
		BatchSize:     200,
		RetryInterval: 15 * time.Second,
		MaxRetries:    10,
	}

	worker := NewOutboxWorker(nil, nil, customConfig)

	if worker.config.PollInterval != 200*time.Millisecond {
		t.Errorf("PollInterval = %v, want %v", worker.config.PollInterval, 200*time.Millisecond)
	}

	if worker.config.BatchSize != 200 {
		t.Errorf("BatchSize = %v, want %v", worker.config.BatchSize, 200)
	}
}

func TestOutboxWorker_StartStop(t *testing.T) {
	repo := &mockOutboxRepo{}
	worker := NewOutboxWorker(repo, nil, &OutboxWorkerConfig{
		PollInterval:  5 * time.Millisecond,
		BatchSize:     10,
		RetryInterval: 5 * time.Millisecond,
		MaxRetries:    5,
	})

	ctx := context.Background()
	if err := worker.Start(ctx); err != nil {
		t.Fatalf("Start() unexpected error = %v", err)
	}

	// Starting twice must fail
	if err := worker.Start(ctx); err == nil {
		t.Error("second Start() expected an error")
	}

	// Both poll loops should have fired at least once
	deadline := time.After(time.Second)
	for atomic.LoadInt64(&repo.pendingCalls) == 0 || atomic.LoadInt64(&repo.failedCalls) == 0 {
		select {
		case <-deadline:
			t.Fatalf("poll loops did not run: pending=%d failed=%d",
				atomic.LoadInt64(&repo.pendingCalls), atomic.LoadInt64(&repo.failedCalls))
		case <-time.After(time.Millisecond):
		}
	}

	worker.Stop()

	if worker.running {
		t.Error("Worker should not be running after Stop")
	}

	// Stop is safe to call again
	worker.Stop()
}

// stubDLQ records parked messages
type stubDLQ struct {
	parked     []*retry.DLQMessage
	publishErr error
}

func (s *stubDLQ) PublishToDLQ(ctx context.Context, msg *retry.DLQMessage) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.parked = append(s.parked, msg)
	return nil
}

func (s *stubDLQ) DLQTopic(originalTopic string) string {
	return originalTopic + ".dlq"
}

func TestOutboxWorker_ParkMessage(t *testing.T) {
	dlq := &stubDLQ{}
	worker := NewOutboxWorker(&mockOutboxRepo{}, nil, &OutboxWorkerConfig{
		PollInterval:  time.Second,
		BatchSize:     10,
		RetryInterval: time.Second,
		MaxRetries:    5,
		DLQ:           dlq,
	})

	msg := &domain.OutboxMessage{
		ID:           "msg-1",
		AggregateID:  "order-1",
		EventType:    domain.EventOrderBooked,
		Topic:        domain.InventoryEventTopic,
		PartitionKey: "order-1",
		Payload:      []byte(`{"order_id":"order-1"}`),
		RetryCount:   4,
	}

	worker.parkMessage(context.Background(), msg, errors.New("broker unreachable"))

	if len(dlq.parked) != 1 {
		t.Fatalf("Expected 1 parked message, got %d", len(dlq.parked))
	}

	parked := dlq.parked[0]
	if parked.ID != "msg-1" {
		t.Errorf("ID = %s, want msg-1", parked.ID)
	}
	if parked.OriginalTopic != domain.InventoryEventTopic {
		t.Errorf("OriginalTopic = %s, want %s", parked.OriginalTopic, domain.InventoryEventTopic)
	}
	if parked.OriginalKey != "order-1" {
		t.Errorf("OriginalKey = %s, want order-1", parked.OriginalKey)
	}
	if parked.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", parked.Attempts)
	}
	if parked.Error != "broker unreachable" {
		t.Errorf("Error = %s, want 'broker unreachable'", parked.Error)
	}
}

func TestOutboxWorker_ParkMessage_PublishFails(t *testing.T) {
	dlq := &stubDLQ{publishErr: errors.New("dlq unavailable")}
	worker := NewOutboxWorker(&mockOutboxRepo{}, nil, &OutboxWorkerConfig{
		PollInterval:  time.Second,
		BatchSize:     10,
		RetryInterval: time.Second,
		MaxRetries:    5,
		DLQ:           dlq,
	})

	msg := &domain.OutboxMessage{
		ID:         "msg-1",
		Topic:      domain.InventoryEventTopic,
		RetryCount: 4,
	}

	// The outbox row stays parked as failed; a DLQ publish error only logs.
	worker.parkMessage(context.Background(), msg, errors.New("broker unreachable"))

	if len(dlq.parked) != 0 {
		t.Errorf("Expected no parked messages, got %d", len(dlq.parked))
	}
}
