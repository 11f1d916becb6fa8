package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/calculator"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=booking.go -destination=mock_booking.go -package=services

var (
	ErrBookingNotFound          = errors.New("booking not found")
	ErrInvalidBookingTransition = errors.New("invalid booking status transition")
	ErrInvalidPaymentEvent      = errors.New("invalid payment event")
)

// DefaultRefundReason is stored when a refund is requested without a reason.
const DefaultRefundReason = "requested_by_customer"

// DefaultPendingTTL is how long a booking waits for payment when no TTL is configured.
const DefaultPendingTTL = 30 * time.Minute

// BookingReader defines read operations for bookings.
type BookingReader interface {
	GetByID(ctx context.Context, bookingID uuid.UUID) (*models.BookingDB, error)
}

// BookingWriter defines write operations for bookings.
type BookingWriter interface {
	Save(ctx context.Context, booking *models.BookingDB) (*models.BookingDB, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, from []models.BookingStatus, to models.BookingStatus, refundReason *string) (*models.BookingDB, error)
	ExpireStale(ctx context.Context, now time.Time) ([]models.BookingDB, error)
}

// Quoter prices a request, converting it when a target currency is set.
type Quoter interface {
	Quote(ctx context.Context, req models.PricingRequest) (*models.PricingBreakdown, error)
}

// IdempotencyStore remembers which booking a client key produced.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Remember(ctx context.Context, key, value string) (string, error)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// CreateBookingInput is a booking intent submitted by a user.
type CreateBookingInput struct {
	ListingID      uuid.UUID
	CheckIn        time.Time
	CheckOut       time.Time
	Guests         int
	Quantity       int    // Units to price; 0 means the number of nights between CheckIn and CheckOut
	TargetCurrency string // Optional charge currency
	IdempotencyKey string // Optional client key; retries with the same key return the first booking
}

// BookingIntent is the outcome of CreateIntent.
type BookingIntent struct {
	Booking  *models.BookingDB
	Pricing  *models.PricingBreakdown // nil when Replayed
	Replayed bool                     // true when an earlier booking was returned for the idempotency key
}

// BookingService handles the booking lifecycle and publishes booking events to Kafka.
type BookingService struct {
	listings    ListingReader
	reader      BookingReader
	writer      BookingWriter
	quoter      Quoter
	idempotency IdempotencyStore
	kafkaWriter KafkaWriter
	pendingTTL  time.Duration
	now         func() time.Time
	afterCommit func(ctx context.Context, fn func(ctx context.Context))
}

// BookingOpt configures a BookingService.
type BookingOpt func(*BookingService)

// WithIdempotencyStore enables Idempotency-Key handling.
func WithIdempotencyStore(store IdempotencyStore) BookingOpt {
	return func(s *BookingService) {
		s.idempotency = store
	}
}

// WithKafkaWriter enables booking event publishing.
func WithKafkaWriter(w KafkaWriter) BookingOpt {
	return func(s *BookingService) {
		s.kafkaWriter = w
	}
}

// WithPendingTTL sets how long a new booking may wait for payment.
func WithPendingTTL(ttl time.Duration) BookingOpt {
	return func(s *BookingService) {
		if ttl > 0 {
			s.pendingTTL = ttl
		}
	}
}

// WithAfterCommit defers event publishing through register, which should run
// fn once the surrounding transaction has committed.
func WithAfterCommit(register func(ctx context.Context, fn func(ctx context.Context))) BookingOpt {
	return func(s *BookingService) {
		s.afterCommit = register
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BookingOpt {
	return func(s *BookingService) {
		s.now = now
	}
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	listings ListingReader,
	reader BookingReader,
	writer BookingWriter,
	quoter Quoter,
	opts ...BookingOpt,
) *BookingService {
	s := &BookingService{
		listings:   listings,
		reader:     reader,
		writer:     writer,
		quoter:     quoter,
		pendingTTL: DefaultPendingTTL,
		now:        time.Now,
		afterCommit: func(ctx context.Context, fn func(ctx context.Context)) {
			fn(ctx)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIntent prices an approved listing and stores a booking awaiting payment.
func (s *BookingService) CreateIntent(ctx context.Context, actor models.Actor, in CreateBookingInput) (*BookingIntent, error) {
	idemKey := ""
	if in.IdempotencyKey != "" && s.idempotency != nil {
		idemKey = actor.UserID.String() + ":" + in.IdempotencyKey
		if existing, err := s.replay(ctx, idemKey); err != nil || existing != nil {
			return existing, err
		}
	}

	quantity, err := bookingQuantity(in)
	if err != nil {
		return nil, err
	}
	guests := in.Guests
	if guests == 0 {
		guests = 1
	}
	if guests < 0 {
		return nil, fmt.Errorf("%w: guests must be positive", calculator.ErrInvalidInput)
	}

	listing, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		logger.Log.Errorw("failed to get listing", "listing_id", in.ListingID, "error", err)
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.Status != models.ListingStatusApproved {
		return nil, ErrListingNotAvailable
	}

	pricing, err := s.quoter.Quote(ctx, listing.PricingRequest(quantity, in.TargetCurrency))
	if err != nil {
		return nil, err
	}

	now := s.now()
	booking, err := s.writer.Save(ctx, &models.BookingDB{
		BookingID:  uuid.New(),
		ListingID:  listing.ListingID,
		UserID:     actor.UserID,
		PartnerID:  listing.PartnerID,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		Guests:     guests,
		Quantity:   quantity,
		TotalPrice: pricing.Total.Round(2),
		Currency:   pricing.Currency,
		Status:     models.BookingStatusPendingPayment,
		ExpiresAt:  now.Add(s.pendingTTL),
	})
	if err != nil {
		logger.Log.Errorw("failed to save booking", "listing_id", listing.ListingID, "user_id", actor.UserID, "error", err)
		return nil, err
	}

	if idemKey != "" {
		winner, err := s.idempotency.Remember(ctx, idemKey, booking.BookingID.String())
		if err != nil {
			logger.Log.Errorw("failed to remember idempotency key", "key", idemKey, "error", err)
		} else if winner != booking.BookingID.String() {
			// A concurrent retry stored its booking first; withdraw ours and answer with theirs.
			if replayed, err := s.replay(ctx, idemKey); err != nil || replayed != nil {
				s.withdrawDuplicate(ctx, booking.BookingID)
				return replayed, err
			}
		}
	}

	s.publishEvent(ctx, models.BookingEventCreated, booking, actor.UserID)

	return &BookingIntent{Booking: booking, Pricing: pricing}, nil
}

func (s *BookingService) replay(ctx context.Context, idemKey string) (*BookingIntent, error) {
	value, ok, err := s.idempotency.Get(ctx, idemKey)
	if err != nil {
		logger.Log.Errorw("failed to read idempotency key", "key", idemKey, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	bookingID, err := uuid.Parse(value)
	if err != nil {
		logger.Log.Errorw("corrupt idempotency value", "key", idemKey, "value", value, "error", err)
		return nil, nil
	}
	booking, err := s.reader.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, nil
	}
	return &BookingIntent{Booking: booking, Replayed: true}, nil
}

func (s *BookingService) withdrawDuplicate(ctx context.Context, bookingID uuid.UUID) {
	_, err := s.writer.UpdateStatus(ctx, bookingID,
		[]models.BookingStatus{models.BookingStatusPendingPayment}, models.BookingStatusCancelled, nil)
	if err != nil {
		logger.Log.Errorw("failed to cancel duplicate booking", "booking_id", bookingID, "error", err)
	}
}

func bookingQuantity(in CreateBookingInput) (int, error) {
	if in.CheckIn.IsZero() || in.CheckOut.IsZero() {
		return 0, fmt.Errorf("%w: check_in and check_out are required", calculator.ErrInvalidInput)
	}
	if in.CheckOut.Before(in.CheckIn) {
		return 0, fmt.Errorf("%w: check_out must not be before check_in", calculator.ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", calculator.ErrInvalidInput)
	}
	if in.Quantity > 0 {
		return in.Quantity, nil
	}
	nights := int(in.CheckOut.Sub(in.CheckIn).Hours() / 24)
	if nights <= 0 {
		return 0, fmt.Errorf("%w: stay must last at least one night", calculator.ErrInvalidInput)
	}
	return nights, nil
}

// Get returns a booking visible to actor: its guest, the listing partner, or staff and above.
func (s *BookingService) Get(ctx context.Context, actor models.Actor, bookingID uuid.UUID) (*models.BookingDB, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID && booking.PartnerID != actor.UserID && !actor.Role.AtLeast(models.RoleStaff) {
		return nil, ErrForbidden
	}
	return booking, nil
}

// Cancel cancels a pending or confirmed booking. Allowed for the guest and admins.
func (s *BookingService) Cancel(ctx context.Context, actor models.Actor, bookingID uuid.UUID) (*models.BookingDB, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID && !actor.Role.AtLeast(models.RoleAdmin) {
		return nil, ErrForbidden
	}

	return s.transition(ctx, actor.UserID, bookingID,
		[]models.BookingStatus{models.BookingStatusPendingPayment, models.BookingStatusConfirmed},
		models.BookingStatusCancelled, nil, models.BookingEventCancelled)
}

// Refund marks a confirmed booking refunded. Admins only.
func (s *BookingService) Refund(ctx context.Context, actor models.Actor, bookingID uuid.UUID, reason string) (*models.BookingDB, error) {
	if !actor.Role.AtLeast(models.RoleAdmin) {
		return nil, ErrForbidden
	}
	if reason == "" {
		reason = DefaultRefundReason
	}
	if _, err := s.load(ctx, bookingID); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor.UserID, bookingID,
		[]models.BookingStatus{models.BookingStatusConfirmed},
		models.BookingStatusRefunded, &reason, models.BookingEventRefunded)
}

// ApplyPaymentEvent settles a pending booking from a payment outcome.
// Redelivered events for an already settled booking are accepted; unknown event types are skipped.
func (s *BookingService) ApplyPaymentEvent(ctx context.Context, ev models.PaymentEvent) error {
	bookingID, err := uuid.Parse(ev.BookingID)
	if err != nil {
		return fmt.Errorf("%w: booking_id %q", ErrInvalidPaymentEvent, ev.BookingID)
	}

	var (
		to        models.BookingStatus
		eventType string
	)
	switch ev.Type {
	case models.PaymentIntentSucceeded:
		to, eventType = models.BookingStatusConfirmed, models.BookingEventConfirmed
	case models.PaymentIntentFailed:
		to, eventType = models.BookingStatusFailed, models.BookingEventFailed
	default:
		logger.Log.Warnw("skipping unknown payment event", "type", ev.Type, "booking_id", ev.BookingID)
		return nil
	}

	booking, err := s.writer.UpdateStatus(ctx, bookingID,
		[]models.BookingStatus{models.BookingStatusPendingPayment}, to, nil)
	if err != nil {
		logger.Log.Errorw("failed to apply payment event", "booking_id", bookingID, "type", ev.Type, "error", err)
		return err
	}
	if booking == nil {
		current, err := s.load(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.Status == to {
			return nil
		}
		logger.Log.Warnw("payment event does not match booking status",
			"booking_id", bookingID, "type", ev.Type, "status", current.Status)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidBookingTransition, current.Status, to)
	}

	logger.Log.Infow("payment event applied", "booking_id", bookingID, "type", ev.Type, "reason", ev.FailureReason)
	s.publishEvent(ctx, eventType, booking, booking.UserID)
	return nil
}

// ExpireStale expires every pending booking past its payment deadline and returns how many were expired.
func (s *BookingService) ExpireStale(ctx context.Context) (int, error) {
	expired, err := s.writer.ExpireStale(ctx, s.now())
	if err != nil {
		logger.Log.Errorw("failed to expire stale bookings", "error", err)
		return 0, err
	}
	for i := range expired {
		s.publishEvent(ctx, models.BookingEventExpired, &expired[i], expired[i].UserID)
	}
	if len(expired) > 0 {
		logger.Log.Infow("stale bookings expired", "count", len(expired))
	}
	return len(expired), nil
}

// DefaultSweepInterval is used by RunExpirySweep when the interval is not positive.
const DefaultSweepInterval = time.Minute

// RunExpirySweep calls ExpireStale every interval until ctx is done.
func (s *BookingService) RunExpirySweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		logger.Log.Warnw("invalid sweep interval, using default", "interval", interval, "default", DefaultSweepInterval)
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.ExpireStale(ctx)
		}
	}
}

func (s *BookingService) load(ctx context.Context, bookingID uuid.UUID) (*models.BookingDB, error) {
	booking, err := s.reader.GetByID(ctx, bookingID)
	if err != nil {
		logger.Log.Errorw("failed to get booking", "booking_id", bookingID, "error", err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) transition(
	ctx context.Context,
	actorID uuid.UUID,
	bookingID uuid.UUID,
	from []models.BookingStatus,
	to models.BookingStatus,
	reason *string,
	eventType string,
) (*models.BookingDB, error) {
	booking, err := s.writer.UpdateStatus(ctx, bookingID, from, to, reason)
	if err != nil {
		logger.Log.Errorw("failed to update booking status", "booking_id", bookingID, "to", to, "error", err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrInvalidBookingTransition
	}
	s.publishEvent(ctx, eventType, booking, actorID)
	return booking, nil
}

// publishEvent publishes a booking event to Kafka once the booking change is committed.
func (s *BookingService) publishEvent(ctx context.Context, eventType string, booking *models.BookingDB, actorID uuid.UUID) {
	s.afterCommit(ctx, func(ctx context.Context) {
		s.writeEvent(ctx, eventType, booking, actorID)
	})
}

func (s *BookingService) writeEvent(ctx context.Context, eventType string, booking *models.BookingDB, actorID uuid.UUID) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "booking_id", booking.BookingID, "type", eventType)
		return
	}

	ev := models.BookingEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		Timestamp: s.now().Unix(),
		BookingID: booking.BookingID.String(),
		UserID:    actorID.String(),
		Status:    booking.Status,
		Amount:    booking.TotalPrice.StringFixed(2),
		Currency:  booking.Currency,
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Errorw("Failed to marshal booking event for Kafka", "booking_id", ev.BookingID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(ev.BookingID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish booking event to Kafka", "booking_id", ev.BookingID, "type", eventType, "error", err)
	} else {
		logger.Log.Infow("Booking event published to Kafka", "booking_id", ev.BookingID, "type", eventType, "amount", ev.Amount)
	}
}
