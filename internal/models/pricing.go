package models

import "github.com/shopspring/decimal"

// PricingRequest is the input of a single price calculation.
// Zero values of the optional fields mean "not set": fees and rates default to 0,
// SourceCurrency defaults to DefaultCurrency and an empty TargetCurrency disables conversion.
type PricingRequest struct {
	BasePrice           decimal.Decimal `json:"base_price"`            // Price per unit (night, person, item)
	Quantity            int             `json:"quantity"`              // Number of units, pre-multiplied by the caller
	CleaningFee         decimal.Decimal `json:"cleaning_fee"`          // Flat fee
	ServiceFee          decimal.Decimal `json:"service_fee"`           // Flat fee
	TaxRatePercent      decimal.Decimal `json:"tax_rate_percent"`      // Applied to the discounted subtotal
	DiscountRatePercent decimal.Decimal `json:"discount_rate_percent"` // Clamped to [0,100]
	SourceCurrency      string          `json:"source_currency"`       // Currency of BasePrice and the fees
	TargetCurrency      string          `json:"target_currency"`       // Optional display/charge currency
}

// PricingBreakdown is the itemized result of a price calculation.
// Every monetary field is expressed in Currency.
type PricingBreakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	CleaningFee    decimal.Decimal `json:"cleaning_fee"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`

	// Rate is the multiplier applied to the source-currency amounts, 1 when nothing was converted.
	Rate decimal.Decimal `json:"rate"`
	// RequestedCurrency echoes the target currency the caller asked for, if any.
	RequestedCurrency string `json:"requested_currency,omitempty"`
	// ConversionUnavailable is set when a conversion was requested but no rate could be
	// resolved and the amounts were left in the source currency.
	ConversionUnavailable bool `json:"conversion_unavailable"`
}
