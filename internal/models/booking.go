package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusFailed         BookingStatus = "failed"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusRefunded       BookingStatus = "refunded"
	BookingStatusExpired        BookingStatus = "expired"
)

// BookingDB represents a booking row in the database.
// TotalPrice and Currency snapshot the pricing breakdown at creation time.
type BookingDB struct {
	BookingID    uuid.UUID       `json:"booking_id" db:"booking_id"`
	ListingID    uuid.UUID       `json:"listing_id" db:"listing_id"`
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	PartnerID    uuid.UUID       `json:"partner_id" db:"partner_id"`
	CheckIn      time.Time       `json:"check_in" db:"check_in"`
	CheckOut     time.Time       `json:"check_out" db:"check_out"`
	Guests       int             `json:"guests" db:"guests"`
	Quantity     int             `json:"quantity" db:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price" db:"total_price"`
	Currency     string          `json:"currency" db:"currency"`
	Status       BookingStatus   `json:"status" db:"status"`
	RefundReason *string         `json:"refund_reason,omitempty" db:"refund_reason"`
	ExpiresAt    time.Time       `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}
