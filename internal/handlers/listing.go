package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=listing.go -destination=mock_listing.go -package=handlers

// ListingCreator defines the interface for creating listings.
type ListingCreator interface {
	Create(ctx context.Context, actor models.Actor, listing models.ListingDB) (*models.ListingDB, error)
}

// ListingModerator defines the interface for approving and rejecting listings.
type ListingModerator interface {
	Approve(ctx context.Context, actor models.Actor, listingID uuid.UUID) (*models.ListingDB, error)
	Reject(ctx context.Context, actor models.Actor, listingID uuid.UUID) (*models.ListingDB, error)
}

// CreateListingRequest represents the JSON body for a new listing
// swagger:model CreateListingRequest
type CreateListingRequest struct {
	// Title
	// required: true
	// default: Sea view room
	Title string `json:"title"`

	// Kind: hotel, restaurant or experience
	// required: true
	// default: hotel
	Kind string `json:"kind"`

	// Price per unit
	// required: true
	// default: 200
	BasePrice decimal.Decimal `json:"base_price" swaggertype:"string"`

	// Flat cleaning fee
	// default: 40
	CleaningFee decimal.Decimal `json:"cleaning_fee" swaggertype:"string"`

	// Flat service fee
	// default: 25
	ServiceFee decimal.Decimal `json:"service_fee" swaggertype:"string"`

	// Tax rate in percent
	// default: 10
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent" swaggertype:"string"`

	// Discount rate in percent, clamped to [0,100]
	// default: 5
	DiscountRatePercent decimal.Decimal `json:"discount_rate_percent" swaggertype:"string"`

	// ISO 4217 code of the prices
	// default: USD
	Currency string `json:"currency"`
}

// NewCreateListingHandler returns an HTTP handler that creates a listing pending moderation.
// @Summary Create listing
// @Description Partners and above create listings. New listings start in the pending status.
// @Tags listings
// @Accept json
// @Produce json
// @Param request body handlers.CreateListingRequest true "Listing"
// @Success 201 {object} models.ListingDB "Created listing"
// @Failure 400 {object} handlers.ErrorResponse "Invalid listing"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Router /listings [post]
// @Security BearerAuth
func NewCreateListingHandler(svc ListingCreator, getActor ActorGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, getActor)
		if !ok {
			return
		}

		var req CreateListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		listing, err := svc.Create(r.Context(), actor, models.ListingDB{
			Title:               req.Title,
			Kind:                models.ListingKind(req.Kind),
			BasePrice:           req.BasePrice,
			CleaningFee:         req.CleaningFee,
			ServiceFee:          req.ServiceFee,
			TaxRatePercent:      req.TaxRatePercent,
			DiscountRatePercent: req.DiscountRatePercent,
			Currency:            req.Currency,
		})
		if err != nil {
			writeServiceError(w, "create listing", err)
			return
		}

		writeJSON(w, http.StatusCreated, listing)
	}
}

// NewGetListingHandler returns an HTTP handler that fetches a listing.
// @Summary Get listing
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} models.ListingDB "Listing"
// @Failure 400 {object} handlers.ErrorResponse "Invalid id"
// @Failure 404 {object} handlers.ErrorResponse "Listing not found"
// @Router /listings/{id} [get]
func NewGetListingHandler(svc ListingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, ok := idParam(w, r)
		if !ok {
			return
		}

		listing, err := svc.Get(r.Context(), listingID)
		if err != nil {
			writeServiceError(w, "get listing", err)
			return
		}

		writeJSON(w, http.StatusOK, listing)
	}
}

// NewApproveListingHandler returns an HTTP handler that approves a pending listing.
// @Summary Approve listing
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} models.ListingDB "Approved listing"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Listing not found"
// @Failure 409 {object} handlers.ErrorResponse "Listing is not pending moderation"
// @Router /listings/{id}/approve [post]
// @Security BearerAuth
func NewApproveListingHandler(svc ListingModerator, getActor ActorGetter) http.HandlerFunc {
	return newModerationHandler(svc.Approve, "approve listing", getActor)
}

// NewRejectListingHandler returns an HTTP handler that rejects a pending listing.
// @Summary Reject listing
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} models.ListingDB "Rejected listing"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Listing not found"
// @Failure 409 {object} handlers.ErrorResponse "Listing is not pending moderation"
// @Router /listings/{id}/reject [post]
// @Security BearerAuth
func NewRejectListingHandler(svc ListingModerator, getActor ActorGetter) http.HandlerFunc {
	return newModerationHandler(svc.Reject, "reject listing", getActor)
}

func newModerationHandler(
	moderate func(ctx context.Context, actor models.Actor, listingID uuid.UUID) (*models.ListingDB, error),
	op string,
	getActor ActorGetter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, getActor)
		if !ok {
			return
		}
		listingID, ok := idParam(w, r)
		if !ok {
			return
		}

		listing, err := moderate(r.Context(), actor, listingID)
		if err != nil {
			writeServiceError(w, op, err)
			return
		}

		writeJSON(w, http.StatusOK, listing)
	}
}
