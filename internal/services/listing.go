package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/calculator"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
)

//go:generate mockgen -source=listing.go -destination=mock_listing.go -package=services

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrListingNotPending   = errors.New("listing is not pending moderation")
	ErrListingNotAvailable = errors.New("listing is not available for booking")
)

// ListingReader defines read operations for listings.
type ListingReader interface {
	GetByID(ctx context.Context, listingID uuid.UUID) (*models.ListingDB, error)
}

// ListingWriter defines write operations for listings.
type ListingWriter interface {
	Save(ctx context.Context, listing *models.ListingDB) (*models.ListingDB, error)
	UpdateStatus(ctx context.Context, listingID uuid.UUID, from, to models.ListingStatus) (*models.ListingDB, error)
}

// ListingService manages partner listings and their moderation.
type ListingService struct {
	reader ListingReader
	writer ListingWriter
}

// NewListingService creates a new ListingService.
func NewListingService(reader ListingReader, writer ListingWriter) *ListingService {
	return &ListingService{reader: reader, writer: writer}
}

// Create stores a new listing owned by actor, pending moderation.
// The pricing fields go through the same validation as a quote.
func (s *ListingService) Create(ctx context.Context, actor models.Actor, listing models.ListingDB) (*models.ListingDB, error) {
	if !actor.Role.AtLeast(models.RolePartner) {
		return nil, ErrForbidden
	}

	listing.Title = strings.TrimSpace(listing.Title)
	if listing.Title == "" {
		return nil, fmt.Errorf("%w: title is required", calculator.ErrInvalidInput)
	}
	if !listing.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", calculator.ErrInvalidInput, listing.Kind)
	}
	currency, err := calculator.NormalizeCurrency(listing.Currency, models.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	listing.Currency = currency
	if err := calculator.ValidateRequest(listing.PricingRequest(1, "")); err != nil {
		return nil, err
	}

	listing.ListingID = uuid.New()
	listing.PartnerID = actor.UserID
	listing.Status = models.ListingStatusPending

	saved, err := s.writer.Save(ctx, &listing)
	if err != nil {
		logger.Log.Errorw("failed to save listing", "partner_id", actor.UserID, "error", err)
		return nil, err
	}
	return saved, nil
}

// Get returns a listing by id.
func (s *ListingService) Get(ctx context.Context, listingID uuid.UUID) (*models.ListingDB, error) {
	listing, err := s.reader.GetByID(ctx, listingID)
	if err != nil {
		logger.Log.Errorw("failed to get listing", "listing_id", listingID, "error", err)
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// Approve publishes a pending listing.
func (s *ListingService) Approve(ctx context.Context, actor models.Actor, listingID uuid.UUID) (*models.ListingDB, error) {
	return s.moderate(ctx, actor, listingID, models.ListingStatusApproved)
}

// Reject declines a pending listing.
func (s *ListingService) Reject(ctx context.Context, actor models.Actor, listingID uuid.UUID) (*models.ListingDB, error) {
	return s.moderate(ctx, actor, listingID, models.ListingStatusRejected)
}

func (s *ListingService) moderate(ctx context.Context, actor models.Actor, listingID uuid.UUID, to models.ListingStatus) (*models.ListingDB, error) {
	if !actor.Role.AtLeast(models.RoleAdmin) {
		return nil, ErrForbidden
	}

	listing, err := s.writer.UpdateStatus(ctx, listingID, models.ListingStatusPending, to)
	if err != nil {
		logger.Log.Errorw("failed to moderate listing", "listing_id", listingID, "to", to, "error", err)
		return nil, err
	}
	if listing != nil {
		logger.Log.Infow("listing moderated", "listing_id", listingID, "status", to, "actor", actor.UserID)
		return listing, nil
	}

	// Nothing matched: tell a missing listing apart from one already moderated.
	if _, err := s.Get(ctx, listingID); err != nil {
		return nil, err
	}
	return nil, ErrListingNotPending
}
