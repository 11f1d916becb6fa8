package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/sbilibin2017/gw-booking-pricing/internal/services"
)

//go:generate mockgen -source=quote.go -destination=mock_quote.go -package=handlers

// Quoter defines the interface that the pricing service must implement.
type Quoter interface {
	Quote(ctx context.Context, req models.PricingRequest) (*models.PricingBreakdown, error)
}

// ListingGetter loads a listing by ID.
type ListingGetter interface {
	Get(ctx context.Context, listingID uuid.UUID) (*models.ListingDB, error)
}

// QuoteRequest is either a full pricing request, or a listing ID with a
// quantity and an optional target currency. With a listing ID the price
// fields come from the listing and any sent in the body are ignored.
// swagger:model QuoteRequest
type QuoteRequest struct {
	// Approved listing to price
	// default: 8c0d6a4e-55a7-4a55-9d55-4b4b7f1f1a11
	ListingID string `json:"listing_id,omitempty"`

	models.PricingRequest
}

// NewQuoteHandler returns an HTTP handler that previews a price.
// @Summary Price quote
// @Description Itemized price for a raw pricing request or for an approved listing, optionally converted to a target currency.
// @Description When no rate is available and the service runs with the "source" fallback, amounts stay in the source currency and conversion_unavailable is true.
// @Tags pricing
// @Accept json
// @Produce json
// @Param request body handlers.QuoteRequest true "Quote request"
// @Success 200 {object} models.PricingBreakdown "Price breakdown"
// @Failure 400 {object} handlers.ErrorResponse "Invalid pricing input"
// @Failure 404 {object} handlers.ErrorResponse "Listing not found"
// @Failure 409 {object} handlers.ErrorResponse "Listing is not available"
// @Failure 429 {object} middlewares.RateLimitErrorResponse "Too many requests"
// @Failure 502 {object} handlers.ErrorResponse "Exchange rate unavailable"
// @Router /pricing/quote [post]
func NewQuoteHandler(svc Quoter, listings ListingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QuoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}

		pricing := req.PricingRequest
		if req.ListingID != "" {
			listingID, err := uuid.Parse(req.ListingID)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid listing_id"})
				return
			}
			listing, err := listings.Get(r.Context(), listingID)
			if err != nil {
				writeServiceError(w, "quote listing", err)
				return
			}
			if listing.Status != models.ListingStatusApproved {
				writeServiceError(w, "quote listing", services.ErrListingNotAvailable)
				return
			}
			pricing = listing.PricingRequest(req.Quantity, req.TargetCurrency)
		}

		breakdown, err := svc.Quote(r.Context(), pricing)
		if err != nil {
			writeServiceError(w, "quote", err)
			return
		}

		writeJSON(w, http.StatusOK, breakdown)
	}
}
