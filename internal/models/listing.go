package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingKind is the type of offer a partner lists.
type ListingKind string

const (
	ListingKindHotel      ListingKind = "hotel"
	ListingKindRestaurant ListingKind = "restaurant"
	ListingKindExperience ListingKind = "experience"
)

// Valid reports whether k is a known listing kind.
func (k ListingKind) Valid() bool {
	switch k {
	case ListingKindHotel, ListingKindRestaurant, ListingKindExperience:
		return true
	}
	return false
}

// ListingStatus is the moderation state of a listing.
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
)

// ListingDB represents a listing row in the database
type ListingDB struct {
	ListingID           uuid.UUID       `json:"listing_id" db:"listing_id"`
	PartnerID           uuid.UUID       `json:"partner_id" db:"partner_id"`
	Title               string          `json:"title" db:"title"`
	Kind                ListingKind     `json:"kind" db:"kind"`
	BasePrice           decimal.Decimal `json:"base_price" db:"base_price"`
	CleaningFee         decimal.Decimal `json:"cleaning_fee" db:"cleaning_fee"`
	ServiceFee          decimal.Decimal `json:"service_fee" db:"service_fee"`
	TaxRatePercent      decimal.Decimal `json:"tax_rate_percent" db:"tax_rate_percent"`
	DiscountRatePercent decimal.Decimal `json:"discount_rate_percent" db:"discount_rate_percent"`
	Currency            string          `json:"currency" db:"currency"`
	Status              ListingStatus   `json:"status" db:"status"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// PricingRequest builds the pricing input for quantity units of the listing.
func (l *ListingDB) PricingRequest(quantity int, targetCurrency string) PricingRequest {
	return PricingRequest{
		BasePrice:           l.BasePrice,
		Quantity:            quantity,
		CleaningFee:         l.CleaningFee,
		ServiceFee:          l.ServiceFee,
		TaxRatePercent:      l.TaxRatePercent,
		DiscountRatePercent: l.DiscountRatePercent,
		SourceCurrency:      l.Currency,
		TargetCurrency:      targetCurrency,
	}
}
