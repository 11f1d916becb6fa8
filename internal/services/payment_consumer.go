package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=payment_consumer.go -destination=mock_payment_consumer.go -package=services

// KafkaReader defines a Kafka reader abstraction.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PaymentEventApplier applies a payment outcome to a booking.
type PaymentEventApplier interface {
	ApplyPaymentEvent(ctx context.Context, ev models.PaymentEvent) error
}

const (
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultMaxRetryBackoff = 30 * time.Second
)

// PaymentEventConsumer feeds payment events from Kafka into the booking lifecycle.
type PaymentEventConsumer struct {
	reader     KafkaReader
	applier    PaymentEventApplier
	backoff    time.Duration
	maxBackoff time.Duration
}

// PaymentConsumerOpt configures a PaymentEventConsumer.
type PaymentConsumerOpt func(*PaymentEventConsumer)

// WithRetryBackoff sets the first and the largest delay between retries of a failed message.
func WithRetryBackoff(initial, maxDelay time.Duration) PaymentConsumerOpt {
	return func(c *PaymentEventConsumer) {
		if initial > 0 {
			c.backoff = initial
		}
		c.maxBackoff = max(maxDelay, c.backoff)
	}
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(reader KafkaReader, applier PaymentEventApplier, opts ...PaymentConsumerOpt) *PaymentEventConsumer {
	c := &PaymentEventConsumer{
		reader:     reader,
		applier:    applier,
		backoff:    defaultRetryBackoff,
		maxBackoff: defaultMaxRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes messages until ctx is done or the reader fails.
//
// Messages that can never succeed (bad JSON, unknown booking, impossible transition)
// are logged and committed. Other failures retry the same message with a doubling
// delay; the reader never moves past a message that has not been applied, since
// committing a later offset would also commit it.
func (c *PaymentEventConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Log.Errorw("failed to fetch payment event", "error", err)
			return err
		}

		if !c.handleWithRetry(ctx, msg) {
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Log.Errorw("failed to commit payment event", "offset", msg.Offset, "error", err)
		}
	}
}

// handleWithRetry applies msg until it succeeds. It reports false when ctx ends first.
func (c *PaymentEventConsumer) handleWithRetry(ctx context.Context, msg kafka.Message) bool {
	delay := c.backoff
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, msg)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		logger.Log.Errorw("payment event failed, retrying",
			"offset", msg.Offset, "attempt", attempt, "retry_in", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}

		if delay *= 2; delay > c.maxBackoff {
			delay = c.maxBackoff
		}
	}
}

func (c *PaymentEventConsumer) handle(ctx context.Context, msg kafka.Message) error {
	var ev models.PaymentEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		logger.Log.Errorw("skipping malformed payment event", "offset", msg.Offset, "error", err)
		return nil
	}

	err := c.applier.ApplyPaymentEvent(ctx, ev)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidPaymentEvent),
		errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrInvalidBookingTransition):
		logger.Log.Warnw("skipping payment event", "booking_id", ev.BookingID, "type", ev.Type, "error", err)
		return nil
	default:
		return err
	}
}
