package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/sbilibin2017/gw-booking-pricing/internal/services"
)

//go:generate mockgen -source=booking.go -destination=mock_booking.go -package=handlers

const dateLayout = "2006-01-02"

// BookingCreator defines the interface for creating booking intents.
type BookingCreator interface {
	CreateIntent(ctx context.Context, actor models.Actor, in services.CreateBookingInput) (*services.BookingIntent, error)
}

// BookingGetter defines the interface for reading a booking.
type BookingGetter interface {
	Get(ctx context.Context, actor models.Actor, bookingID uuid.UUID) (*models.BookingDB, error)
}

// BookingCanceller defines the interface for cancelling a booking.
type BookingCanceller interface {
	Cancel(ctx context.Context, actor models.Actor, bookingID uuid.UUID) (*models.BookingDB, error)
}

// BookingRefunder defines the interface for refunding a booking.
type BookingRefunder interface {
	Refund(ctx context.Context, actor models.Actor, bookingID uuid.UUID, reason string) (*models.BookingDB, error)
}

// CreateBookingRequest represents the JSON body for a booking intent
// swagger:model CreateBookingRequest
type CreateBookingRequest struct {
	// Approved listing to book
	// required: true
	ListingID string `json:"listing_id"`

	// Check-in date, YYYY-MM-DD
	// required: true
	// default: 2026-07-01
	CheckIn string `json:"check_in"`

	// Check-out date, YYYY-MM-DD
	// required: true
	// default: 2026-07-04
	CheckOut string `json:"check_out"`

	// Number of guests
	// default: 2
	Guests int `json:"guests"`

	// Units to price, defaults to the number of nights
	// default: 0
	Quantity int `json:"quantity"`

	// Optional charge currency
	// default: EUR
	TargetCurrency string `json:"target_currency"`
}

// BookingResponse represents a created or replayed booking
// swagger:model BookingResponse
type BookingResponse struct {
	Booking *models.BookingDB `json:"booking"`

	// Price breakdown, omitted when the booking is replayed for an Idempotency-Key
	Pricing *models.PricingBreakdown `json:"pricing,omitempty"`

	// True when an earlier booking was returned for the Idempotency-Key
	Replayed bool `json:"replayed"`
}

// RefundRequest represents the optional JSON body of a refund
// swagger:model RefundRequest
type RefundRequest struct {
	// Refund reason
	// default: requested_by_customer
	Reason string `json:"reason"`
}

// NewCreateBookingHandler returns an HTTP handler that creates a booking awaiting payment.
// @Summary Create booking
// @Description Quotes an approved listing and stores a pending_payment booking. Retries with the same Idempotency-Key return the first booking with status 200.
// @Tags bookings
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client retry key"
// @Param request body handlers.CreateBookingRequest true "Booking"
// @Success 201 {object} handlers.BookingResponse "Booking created"
// @Success 200 {object} handlers.BookingResponse "Booking replayed"
// @Failure 400 {object} handlers.ErrorResponse "Invalid booking"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Listing not found"
// @Failure 409 {object} handlers.ErrorResponse "Listing is not available"
// @Failure 502 {object} handlers.ErrorResponse "Exchange rate unavailable"
// @Router /bookings [post]
// @Security BearerAuth
func NewCreateBookingHandler(svc BookingCreator, getActor ActorGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, getActor)
		if !ok {
			return
		}

		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		listingID, err := uuid.Parse(req.ListingID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid listing_id"})
			return
		}
		checkIn, err := time.Parse(dateLayout, req.CheckIn)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "check_in must be a YYYY-MM-DD date"})
			return
		}
		checkOut, err := time.Parse(dateLayout, req.CheckOut)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "check_out must be a YYYY-MM-DD date"})
			return
		}

		intent, err := svc.CreateIntent(r.Context(), actor, services.CreateBookingInput{
			ListingID:      listingID,
			CheckIn:        checkIn,
			CheckOut:       checkOut,
			Guests:         req.Guests,
			Quantity:       req.Quantity,
			TargetCurrency: req.TargetCurrency,
			IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		})
		if err != nil {
			writeServiceError(w, "create booking", err)
			return
		}

		status := http.StatusCreated
		if intent.Replayed {
			status = http.StatusOK
		}
		writeJSON(w, status, BookingResponse{
			Booking:  intent.Booking,
			Pricing:  intent.Pricing,
			Replayed: intent.Replayed,
		})
	}
}

// NewGetBookingHandler returns an HTTP handler that fetches a booking.
// @Summary Get booking
// @Description Visible to the booking owner, the listing partner and staff and above.
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.BookingDB "Booking"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Booking not found"
// @Router /bookings/{id} [get]
// @Security BearerAuth
func NewGetBookingHandler(svc BookingGetter, getActor ActorGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, getActor)
		if !ok {
			return
		}
		bookingID, ok := idParam(w, r)
		if !ok {
			return
		}

		booking, err := svc.Get(r.Context(), actor, bookingID)
		if err != nil {
			writeServiceError(w, "get booking", err)
			return
		}

		writeJSON(w, http.StatusOK, booking)
	}
}

// NewCancelBookingHandler returns an HTTP handler that cancels a booking.
// @Summary Cancel booking
// @Description The owner or an admin cancels a pending_payment or confirmed booking.
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.BookingDB "Cancelled booking"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Booking not found"
// @Failure 409 {object} handlers.ErrorResponse "Booking status does not allow this action"
// @Router /bookings/{id}/cancel [post]
// @Security BearerAuth
func NewCancelBookingHandler(svc BookingCanceller, getActor ActorGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, getActor)
		if !ok {
			return
		}
		bookingID, ok := idParam(w, r)
		if !ok {
			return
		}

		booking, err := svc.Cancel(r.Context(), actor, bookingID)
		if err != nil {
			writeServiceError(w, "cancel booking", err)
			return
		}

		writeJSON(w, http.StatusOK, booking)
	}
}

// NewRefundBookingHandler returns an HTTP handler that refunds a confirmed booking.
// @Summary Refund booking
// @Description Admins refund confirmed bookings. The body is optional.
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body handlers.RefundRequest false "Refund reason"
// @Success 200 {object} models.BookingDB "Refunded booking"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Booking not found"
// @Failure 409 {object} handlers.ErrorResponse "Booking status does not allow this action"
// @Router /bookings/{id}/refund [post]
// @Security BearerAuth
func NewRefundBookingHandler(svc BookingRefunder, getActor ActorGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, getActor)
		if !ok {
			return
		}
		bookingID, ok := idParam(w, r)
		if !ok {
			return
		}

		var req RefundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		booking, err := svc.Refund(r.Context(), actor, bookingID, strings.TrimSpace(req.Reason))
		if err != nil {
			writeServiceError(w, "refund booking", err)
			return
		}

		writeJSON(w, http.StatusOK, booking)
	}
}
