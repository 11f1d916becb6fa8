package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for malformed pricing requests.
var ErrInvalidInput = errors.New("invalid pricing input")

var (
	one        = decimal.NewFromInt(1)
	maxPercent = decimal.NewFromInt(100)
)

// CalculatePricing computes the cost breakdown of req in its source currency.
//
// Tax is charged on the discounted subtotal:
//
//	subtotal = basePrice × quantity
//	discount = subtotal × discount% / 100
//	tax      = (subtotal − discount) × tax% / 100
//	total    = subtotal − discount + cleaningFee + serviceFee + tax
//
// The discount rate is clamped to [0,100]; every other invalid field fails with ErrInvalidInput.
func CalculatePricing(req models.PricingRequest) (models.PricingBreakdown, error) {
	if err := ValidateRequest(req); err != nil {
		return models.PricingBreakdown{}, err
	}
	currency, _ := NormalizeCurrency(req.SourceCurrency, models.DefaultCurrency)

	subtotal := req.BasePrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

	discountAmount := decimal.Zero
	if discount := ClampDiscount(req.DiscountRatePercent); discount.IsPositive() {
		discountAmount = subtotal.Mul(discount).Shift(-2)
	}

	taxableBase := subtotal.Sub(discountAmount)

	taxAmount := decimal.Zero
	if req.TaxRatePercent.IsPositive() {
		taxAmount = taxableBase.Mul(req.TaxRatePercent).Shift(-2)
	}

	total := taxableBase.Add(req.CleaningFee).Add(req.ServiceFee).Add(taxAmount)

	return models.PricingBreakdown{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		CleaningFee:    req.CleaningFee,
		ServiceFee:     req.ServiceFee,
		Total:          total,
		Currency:       currency,
		Rate:           one,
	}, nil
}

// ValidateRequest checks every field of req except the discount rate, which is clamped instead.
func ValidateRequest(req models.PricingRequest) error {
	switch {
	case req.BasePrice.IsNegative():
		return fmt.Errorf("%w: base_price must not be negative", ErrInvalidInput)
	case req.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	case req.CleaningFee.IsNegative():
		return fmt.Errorf("%w: cleaning_fee must not be negative", ErrInvalidInput)
	case req.ServiceFee.IsNegative():
		return fmt.Errorf("%w: service_fee must not be negative", ErrInvalidInput)
	case req.TaxRatePercent.IsNegative():
		return fmt.Errorf("%w: tax_rate_percent must not be negative", ErrInvalidInput)
	}
	if _, err := NormalizeCurrency(req.SourceCurrency, models.DefaultCurrency); err != nil {
		return fmt.Errorf("source_currency: %w", err)
	}
	if _, err := NormalizeCurrency(req.TargetCurrency, ""); err != nil {
		return fmt.Errorf("target_currency: %w", err)
	}
	return nil
}

// ClampDiscount limits a discount percentage to [0,100].
func ClampDiscount(percent decimal.Decimal) decimal.Decimal {
	if percent.IsNegative() {
		return decimal.Zero
	}
	if percent.GreaterThan(maxPercent) {
		return maxPercent
	}
	return percent
}

// NormalizeCurrency upper-cases a three-letter currency code.
// An empty code yields fallback.
func NormalizeCurrency(code, fallback string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fallback, nil
	}
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency %q must be a 3-letter code", ErrInvalidInput, code)
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", fmt.Errorf("%w: currency %q must be a 3-letter code", ErrInvalidInput, code)
		}
	}
	return code, nil
}

// Convert scales every monetary field of b by rate and relabels it with currency.
// The result is a new breakdown; b is left untouched.
func Convert(b models.PricingBreakdown, rate decimal.Decimal, currency string) models.PricingBreakdown {
	return models.PricingBreakdown{
		Subtotal:          b.Subtotal.Mul(rate),
		DiscountAmount:    b.DiscountAmount.Mul(rate),
		TaxAmount:         b.TaxAmount.Mul(rate),
		CleaningFee:       b.CleaningFee.Mul(rate),
		ServiceFee:        b.ServiceFee.Mul(rate),
		Total:             b.Total.Mul(rate),
		Currency:          currency,
		Rate:              rate,
		RequestedCurrency: currency,
	}
}
