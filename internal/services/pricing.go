package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sbilibin2017/gw-booking-pricing/internal/calculator"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=pricing.go -destination=mock_pricing.go -package=services

// RateFallbackPolicy decides what a quote does when the conversion rate is unavailable.
type RateFallbackPolicy string

const (
	// RateFallbackSource returns the breakdown in the source currency, flagged as unconverted.
	RateFallbackSource RateFallbackPolicy = "source"
	// RateFallbackFail fails the quote with ErrRateUnavailable.
	RateFallbackFail RateFallbackPolicy = "fail"
)

// ParseRateFallbackPolicy parses a policy name; empty means RateFallbackSource.
func ParseRateFallbackPolicy(s string) (RateFallbackPolicy, error) {
	switch p := RateFallbackPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return RateFallbackSource, nil
	case RateFallbackSource, RateFallbackFail:
		return p, nil
	default:
		return "", fmt.Errorf("unknown rate fallback policy %q", s)
	}
}

// ConversionRater supplies conversion rates between currencies
type ConversionRater interface {
	GetConversionRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
}

// PricingService prices requests and converts the result into the requested currency.
type PricingService struct {
	rater  ConversionRater
	policy RateFallbackPolicy
}

// NewPricingService creates a new PricingService.
func NewPricingService(rater ConversionRater, policy RateFallbackPolicy) *PricingService {
	if policy == "" {
		policy = RateFallbackSource
	}
	return &PricingService{
		rater:  rater,
		policy: policy,
	}
}

// Quote calculates the breakdown of req in its source currency and, when a different
// target currency is requested, converts every monetary field with a single rate.
// Invalid input is rejected before any rate lookup.
func (s *PricingService) Quote(ctx context.Context, req models.PricingRequest) (*models.PricingBreakdown, error) {
	breakdown, err := calculator.CalculatePricing(req)
	if err != nil {
		return nil, err
	}

	target, _ := calculator.NormalizeCurrency(req.TargetCurrency, "")
	if target == "" {
		return &breakdown, nil
	}
	breakdown.RequestedCurrency = target
	if target == breakdown.Currency {
		return &breakdown, nil
	}

	rate, err := s.rater.GetConversionRate(ctx, breakdown.Currency, target)
	if err != nil {
		if !errors.Is(err, ErrRateUnavailable) || s.policy == RateFallbackFail {
			logger.Log.Errorw("failed to convert quote", "from", breakdown.Currency, "to", target, "error", err)
			return nil, err
		}
		logger.Log.Warnw("conversion unavailable, quoting in source currency",
			"from", breakdown.Currency, "to", target, "error", err)
		breakdown.ConversionUnavailable = true
		return &breakdown, nil
	}

	converted := calculator.Convert(breakdown, rate, target)
	return &converted, nil
}
