package metrics

import (
	"context"
	"sync"

	"github.com/ticketforge/ticketing/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Allocation counters
	BookingsFulfilled *telemetry.Counter
	BookingsRejected  *telemetry.Counter

	// Cancellation counters
	OrdersCancelled     *telemetry.Counter
	TicketsCancelled    *telemetry.Counter
	CancellationsDenied *telemetry.Counter

	// Outbox counters
	OutboxPublished *telemetry.Counter
	OutboxFailed    *telemetry.Counter

	// Histograms
	RequestDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all inventory metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	BookingsFulfilled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "inventory_bookings_fulfilled_total",
		Description: "Total number of orders fulfilled by the allocation engine",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "inventory_bookings_rejected_total",
		Description: "Total number of orders rejected for insufficient availability",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OrdersCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "inventory_cancellations_total",
		Description: "Total number of cancellation requests accepted",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "inventory_tickets_cancelled_total",
		Description: "Total number of ticket units returned to the pool",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CancellationsDenied, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "inventory_cancellations_denied_total",
		Description: "Total number of cancellation requests denied by validation",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OutboxPublished, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "outbox_messages_published_total",
		Description: "Total number of outbox messages relayed to Kafka",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OutboxFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "outbox_messages_failed_total",
		Description: "Total number of outbox messages that failed to publish",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "inventory_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	return nil
}

// RecordFulfilled records a fulfilled booking
func RecordFulfilled(ctx context.Context, ticketTypeID string, quantity int) {
	if BookingsFulfilled != nil {
		BookingsFulfilled.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
			attribute.Int("quantity", quantity),
		)
	}
}

// RecordRejected records a booking rejected for insufficient availability
func RecordRejected(ctx context.Context, ticketTypeID string) {
	if BookingsRejected != nil {
		BookingsRejected.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
}

// RecordCancellation records an accepted cancellation
func RecordCancellation(ctx context.Context, orderID string, quantity int) {
	if OrdersCancelled != nil {
		OrdersCancelled.Inc(ctx,
			attribute.String("order_id", orderID),
		)
	}
	if TicketsCancelled != nil {
		TicketsCancelled.Add(ctx, int64(quantity),
			attribute.String("order_id", orderID),
		)
	}
}

// RecordCancellationDenied records a cancellation denied by validation
func RecordCancellationDenied(ctx context.Context, reason string) {
	if CancellationsDenied != nil {
		CancellationsDenied.Inc(ctx,
			attribute.String("reason", reason),
		)
	}
}

// RecordOutboxPublished records a relayed outbox message
func RecordOutboxPublished(ctx context.Context, eventType string) {
	if OutboxPublished != nil {
		OutboxPublished.Inc(ctx,
			attribute.String("event_type", eventType),
		)
	}
}

// RecordOutboxFailed records a failed outbox publish
func RecordOutboxFailed(ctx context.Context, eventType string) {
	if OutboxFailed != nil {
		OutboxFailed.Inc(ctx,
			attribute.String("event_type", eventType),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
