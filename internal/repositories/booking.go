package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
)

const bookingColumns = `booking_id, listing_id, user_id, partner_id, check_in, check_out, guests, quantity,
	total_price, currency, status, refund_reason, expires_at, created_at, updated_at`

// BookingWriteRepository handles booking write operations.
// When a transaction is present in the context it is used instead of the pool.
type BookingWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewBookingWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *BookingWriteRepository {
	return &BookingWriteRepository{db: db, txGetter: txGetter}
}

func (r *BookingWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a booking and returns the stored row.
func (r *BookingWriteRepository) Save(ctx context.Context, b *models.BookingDB) (*models.BookingDB, error) {
	const query = `
		INSERT INTO bookings (booking_id, listing_id, user_id, partner_id, check_in, check_out, guests, quantity,
			total_price, currency, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING ` + bookingColumns

	args := []any{
		b.BookingID, b.ListingID, b.UserID, b.PartnerID, b.CheckIn, b.CheckOut, b.Guests, b.Quantity,
		b.TotalPrice, b.Currency, b.Status, b.ExpiresAt,
	}

	var saved models.BookingDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &saved, query, args...)

	// Log query, args, result, error
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", saved.BookingID,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateStatus moves a booking into status to, but only while its current status is one of from.
// refundReason is stored when non-nil. It returns nil when no row matched.
func (r *BookingWriteRepository) UpdateStatus(
	ctx context.Context,
	bookingID uuid.UUID,
	from []models.BookingStatus,
	to models.BookingStatus,
	refundReason *string,
) (*models.BookingDB, error) {
	const query = `
		UPDATE bookings
		SET status = $3, refund_reason = COALESCE($4, refund_reason), updated_at = NOW()
		WHERE booking_id = $1 AND status = ANY($2)
		RETURNING ` + bookingColumns

	args := []any{bookingID, statusStrings(from), to, refundReason}

	var booking models.BookingDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &booking, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", booking.Status,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ExpireStale marks every pending_payment booking whose expires_at is before now as expired
// and returns the affected rows.
func (r *BookingWriteRepository) ExpireStale(ctx context.Context, now time.Time) ([]models.BookingDB, error) {
	const query = `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at < $3
		RETURNING ` + bookingColumns

	args := []any{models.BookingStatusExpired, models.BookingStatusPendingPayment, now}

	var expired []models.BookingDB
	err := sqlx.SelectContext(ctx, r.executor(ctx), &expired, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", len(expired),
		"error", err,
	)

	return expired, err
}

func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// BookingReadRepository handles booking read operations
type BookingReadRepository struct {
	db *sqlx.DB
}

func NewBookingReadRepository(db *sqlx.DB) *BookingReadRepository {
	return &BookingReadRepository{db: db}
}

// GetByID returns the booking with the given id, or nil when it does not exist.
func (r *BookingReadRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*models.BookingDB, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	var booking models.BookingDB
	err := r.db.GetContext(ctx, &booking, query, bookingID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{bookingID},
		"result", booking.Status,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
