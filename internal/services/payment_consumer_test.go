package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func paymentMessage(t *testing.T, offset int64, ev models.PaymentEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(ev)
	assert.NoError(t, err)
	return kafka.Message{Offset: offset, Key: []byte(ev.BookingID), Value: data}
}

func TestPaymentEventConsumer_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := NewMockKafkaReader(ctrl)
	applier := NewMockPaymentEventApplier(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ok := paymentMessage(t, 1, models.PaymentEvent{BookingID: "b-1", Type: models.PaymentIntentSucceeded})
	malformed := kafka.Message{Offset: 2, Value: []byte("{not json")}
	stale := paymentMessage(t, 3, models.PaymentEvent{BookingID: "b-3", Type: models.PaymentIntentFailed})
	transient := paymentMessage(t, 4, models.PaymentEvent{BookingID: "b-4", Type: models.PaymentIntentSucceeded})
	next := paymentMessage(t, 5, models.PaymentEvent{BookingID: "b-5", Type: models.PaymentIntentFailed})

	gomock.InOrder(
		reader.EXPECT().FetchMessage(gomock.Any()).Return(ok, nil),
		applier.EXPECT().ApplyPaymentEvent(gomock.Any(), models.PaymentEvent{BookingID: "b-1", Type: models.PaymentIntentSucceeded}).Return(nil),
		reader.EXPECT().CommitMessages(gomock.Any(), ok).Return(nil),

		// Poison message: committed without reaching the applier.
		reader.EXPECT().FetchMessage(gomock.Any()).Return(malformed, nil),
		reader.EXPECT().CommitMessages(gomock.Any(), malformed).Return(nil),

		// A transition that can never succeed is committed.
		reader.EXPECT().FetchMessage(gomock.Any()).Return(stale, nil),
		applier.EXPECT().ApplyPaymentEvent(gomock.Any(), gomock.Any()).Return(ErrInvalidBookingTransition),
		reader.EXPECT().CommitMessages(gomock.Any(), stale).Return(nil),

		// A transient failure is retried on the same message; the next offset
		// is fetched only once this one is applied and committed.
		reader.EXPECT().FetchMessage(gomock.Any()).Return(transient, nil),
		applier.EXPECT().ApplyPaymentEvent(gomock.Any(), models.PaymentEvent{BookingID: "b-4", Type: models.PaymentIntentSucceeded}).
			Return(errors.New("db down")).Times(2),
		applier.EXPECT().ApplyPaymentEvent(gomock.Any(), models.PaymentEvent{BookingID: "b-4", Type: models.PaymentIntentSucceeded}).Return(nil),
		reader.EXPECT().CommitMessages(gomock.Any(), transient).Return(nil),

		reader.EXPECT().FetchMessage(gomock.Any()).Return(next, nil),
		applier.EXPECT().ApplyPaymentEvent(gomock.Any(), models.PaymentEvent{BookingID: "b-5", Type: models.PaymentIntentFailed}).Return(nil),
		reader.EXPECT().CommitMessages(gomock.Any(), next).Return(nil),

		reader.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(func(context.Context) (kafka.Message, error) {
			cancel()
			return kafka.Message{}, context.Canceled
		}),
	)

	err := NewPaymentEventConsumer(reader, applier, WithRetryBackoff(time.Millisecond, 2*time.Millisecond)).Run(ctx)
	assert.NoError(t, err)
}

func TestPaymentEventConsumer_Run_StopsWhileRetrying(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := NewMockKafkaReader(ctrl)
	applier := NewMockPaymentEventApplier(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := paymentMessage(t, 7, models.PaymentEvent{BookingID: "b-7", Type: models.PaymentIntentSucceeded})

	gomock.InOrder(
		reader.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil),
		applier.EXPECT().ApplyPaymentEvent(gomock.Any(), gomock.Any()).Return(errors.New("db down")),
		applier.EXPECT().ApplyPaymentEvent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, models.PaymentEvent) error {
				cancel()
				return errors.New("db down")
			}),
	)

	// Shutdown leaves the failed offset uncommitted and fetches nothing past it.
	err := NewPaymentEventConsumer(reader, applier, WithRetryBackoff(time.Millisecond, time.Millisecond)).Run(ctx)
	assert.NoError(t, err)
}

func TestPaymentEventConsumer_Run_FetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := NewMockKafkaReader(ctrl)
	reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, errors.New("broker unreachable"))

	err := NewPaymentEventConsumer(reader, NewMockPaymentEventApplier(ctrl)).Run(context.Background())
	assert.EqualError(t, err, "broker unreachable")
}
