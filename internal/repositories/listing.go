package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
)

const listingColumns = `listing_id, partner_id, title, kind, base_price, cleaning_fee, service_fee,
	tax_rate_percent, discount_rate_percent, currency, status, created_at, updated_at`

// ListingReadRepository handles listing read operations
type ListingReadRepository struct {
	db *sqlx.DB
}

func NewListingReadRepository(db *sqlx.DB) *ListingReadRepository {
	return &ListingReadRepository{db: db}
}

// GetByID returns the listing with the given id, or nil when it does not exist.
func (r *ListingReadRepository) GetByID(ctx context.Context, listingID uuid.UUID) (*models.ListingDB, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings WHERE listing_id = $1`

	var listing models.ListingDB
	err := r.db.GetContext(ctx, &listing, query, listingID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{listingID},
		"result", listing.Status,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListingWriteRepository handles listing write operations
type ListingWriteRepository struct {
	db *sqlx.DB
}

func NewListingWriteRepository(db *sqlx.DB) *ListingWriteRepository {
	return &ListingWriteRepository{db: db}
}

// Save inserts a listing and returns the stored row.
func (r *ListingWriteRepository) Save(ctx context.Context, l *models.ListingDB) (*models.ListingDB, error) {
	const query = `
		INSERT INTO listings (listing_id, partner_id, title, kind, base_price, cleaning_fee, service_fee,
			tax_rate_percent, discount_rate_percent, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING ` + listingColumns

	args := []any{
		l.ListingID, l.PartnerID, l.Title, l.Kind, l.BasePrice, l.CleaningFee, l.ServiceFee,
		l.TaxRatePercent, l.DiscountRatePercent, l.Currency, l.Status,
	}

	var saved models.ListingDB
	err := r.db.GetContext(ctx, &saved, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", saved.ListingID,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateStatus moves a listing from status from to status to.
// It returns nil when the listing does not exist or is not in status from.
func (r *ListingWriteRepository) UpdateStatus(ctx context.Context, listingID uuid.UUID, from, to models.ListingStatus) (*models.ListingDB, error) {
	const query = `
		UPDATE listings
		SET status = $3, updated_at = NOW()
		WHERE listing_id = $1 AND status = $2
		RETURNING ` + listingColumns

	var listing models.ListingDB
	err := r.db.GetContext(ctx, &listing, query, listingID, from, to)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{listingID, from, to},
		"result", listing.Status,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}
