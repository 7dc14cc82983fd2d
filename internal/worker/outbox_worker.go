package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/internal/metrics"
	"github.com/ticketforge/ticketing/internal/repository"
	"github.com/ticketforge/ticketing/pkg/kafka"
	"github.com/ticketforge/ticketing/pkg/logger"
	"github.com/ticketforge/ticketing/pkg/retry"
	"go.uber.org/zap"
)

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polls for pending messages
	PollInterval time.Duration
	// BatchSize is the number of messages fetched per poll
	BatchSize int
	// RetryInterval is the interval between retries of failed messages
	RetryInterval time.Duration
	// MaxRetries is the attempt budget per message before it is parked
	MaxRetries int
	// DLQ, when set, receives messages that exhausted their retry budget
	DLQ retry.DLQPublisher
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval:  time.Second,
		BatchSize:     100,
		RetryInterval: 5 * time.Second,
		MaxRetries:    5,
	}
}

// OutboxWorker polls the outbox table and relays inventory events to
// Kafka. Publishing is at-least-once: a crash between produce and
// mark-published redelivers on restart.
type OutboxWorker struct {
	outboxRepo repository.OutboxRepository
	producer   *kafka.Producer
	config     *OutboxWorkerConfig
	log        *zap.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(
	outboxRepo repository.OutboxRepository,
	producer *kafka.Producer,
	config *OutboxWorkerConfig,
) *OutboxWorker {
	if config == nil {
		config = DefaultOutboxWorkerConfig()
	}

	return &OutboxWorker{
		outboxRepo: outboxRepo,
		producer:   producer,
		config:     config,
		log:        logger.Get(),
		stopCh:     make(chan struct{}),
	}
}

// Start starts the outbox worker
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting outbox worker")

	w.wg.Add(1)
	go w.pollPendingMessages(ctx)

	w.wg.Add(1)
	go w.retryFailedMessages(ctx)

	return nil
}

// Stop stops the outbox worker and waits for in-flight work
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping outbox worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Outbox worker stopped")
}

// pollPendingMessages polls for pending messages and publishes them
func (w *OutboxWorker) pollPendingMessages(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processPendingMessages(ctx)
		}
	}
}

// processPendingMessages fetches and processes pending messages
func (w *OutboxWorker) processPendingMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error("Failed to get pending messages", zap.Error(err))
		return
	}

	for _, msg := range messages {
		w.relay(ctx, msg)
	}
}

// retryFailedMessages periodically retries failed messages
func (w *OutboxWorker) retryFailedMessages(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processFailedMessages(ctx)
		}
	}
}

// processFailedMessages fetches and retries failed messages
func (w *OutboxWorker) processFailedMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetFailedMessages(ctx, w.config.BatchSize, w.config.MaxRetries)
	if err != nil {
		w.log.Error("Failed to get failed messages", zap.Error(err))
		return
	}

	for _, msg := range messages {
		w.relay(ctx, msg)
	}
}

// relay publishes one message and records the outcome
func (w *OutboxWorker) relay(ctx context.Context, msg *domain.OutboxMessage) {
	if err := w.publishMessage(ctx, msg); err != nil {
		w.log.Error("Failed to publish outbox message",
			zap.String("message_id", msg.ID),
			zap.String("event_type", msg.EventType),
			zap.Int("retry_count", msg.RetryCount),
			zap.Error(err),
		)
		metrics.RecordOutboxFailed(ctx, msg.EventType)
		if markErr := w.outboxRepo.MarkAsFailed(ctx, msg.ID, err.Error()); markErr != nil {
			w.log.Error("Failed to mark message as failed",
				zap.String("message_id", msg.ID),
				zap.Error(markErr),
			)
		}
		// MarkAsFailed bumped the count; the message leaves the retry
		// window once it reaches the budget.
		if w.config.DLQ != nil && msg.RetryCount+1 >= w.config.MaxRetries {
			w.parkMessage(ctx, msg, err)
		}
		return
	}

	metrics.RecordOutboxPublished(ctx, msg.EventType)
	if markErr := w.outboxRepo.MarkAsPublished(ctx, msg.ID); markErr != nil {
		w.log.Error("Failed to mark message as published",
			zap.String("message_id", msg.ID),
			zap.Error(markErr),
		)
	}
}

// parkMessage hands an exhausted message to the dead letter topic. The
// outbox row stays parked as failed either way, so a DLQ error only logs.
func (w *OutboxWorker) parkMessage(ctx context.Context, msg *domain.OutboxMessage, pubErr error) {
	dlqMsg := &retry.DLQMessage{
		ID:            msg.ID,
		OriginalTopic: msg.Topic,
		OriginalKey:   msg.PartitionKey,
		Payload:       msg.Payload,
		Error:         pubErr.Error(),
		Attempts:      msg.RetryCount + 1,
	}
	if err := w.config.DLQ.PublishToDLQ(ctx, dlqMsg); err != nil {
		w.log.Error("Failed to publish message to DLQ",
			zap.String("message_id", msg.ID),
			zap.String("dlq_topic", w.config.DLQ.DLQTopic(msg.Topic)),
			zap.Error(err),
		)
		return
	}
	w.log.Warn("Outbox message moved to DLQ",
		zap.String("message_id", msg.ID),
		zap.String("event_type", msg.EventType),
		zap.Int("attempts", msg.RetryCount+1),
	)
}

// publishMessage publishes a message to Kafka with bounded backoff
func (w *OutboxWorker) publishMessage(ctx context.Context, msg *domain.OutboxMessage) error {
	kafkaMsg := &kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.PartitionKey),
		Value: msg.Payload,
		Headers: map[string]string{
			"event_type":   msg.EventType,
			"aggregate_id": msg.AggregateID,
			"content_type": "application/json",
			"source":       "outbox-worker",
		},
		Timestamp: time.Now(),
	}

	result := retry.Do(ctx, &retry.Config{
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}, func(ctx context.Context) error {
		return w.producer.Produce(ctx, kafkaMsg)
	})

	if result.Err != nil {
		if result.LastError != nil {
			return result.LastError
		}
		return result.Err
	}
	return nil
}
