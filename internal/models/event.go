package models

// Booking event types published to Kafka
const (
	BookingEventCreated   = "booking.created"
	BookingEventConfirmed = "booking.confirmed"
	BookingEventFailed    = "booking.failed"
	BookingEventCancelled = "booking.cancelled"
	BookingEventRefunded  = "booking.refunded"
	BookingEventExpired   = "booking.expired"
)

// Payment event types consumed from Kafka
const (
	PaymentIntentSucceeded = "payment_intent.succeeded"
	PaymentIntentFailed    = "payment_intent.payment_failed"
)

// BookingEvent describes a booking state change, including the amount and the actor.
type BookingEvent struct {
	EventID   string        `json:"event_id"`   // EventID is a unique identifier for the event.
	Type      string        `json:"type"`       // Type is one of the BookingEvent* constants.
	Timestamp int64         `json:"timestamp"`  // Timestamp is the Unix timestamp (in seconds) of the change.
	BookingID string        `json:"booking_id"` // BookingID identifies the booking.
	UserID    string        `json:"user_id"`    // UserID is the identifier of the user who caused the change.
	Status    BookingStatus `json:"status"`     // Status is the booking status after the change.
	Amount    string        `json:"amount"`     // Amount is the booking total as a decimal string.
	Currency  string        `json:"currency"`   // Currency of Amount.
}

// PaymentEvent is a payment outcome reported for a booking.
type PaymentEvent struct {
	BookingID     string `json:"booking_id"`
	Type          string `json:"type"`
	FailureReason string `json:"failure_reason,omitempty"`
}
