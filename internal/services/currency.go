package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=currency.go -destination=mock_currency.go -package=services

// ErrRateUnavailable is returned when no usable rate exists for a currency pair.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

var identityRate = decimal.NewFromInt(1)

// ExchangeRateReader fetches current exchange rates from an external service
type ExchangeRateReader interface {
	GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
}

// ExchangeRateCache stores exchange rates between upstream lookups
type ExchangeRateCache interface {
	GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
	SetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string, rate decimal.Decimal) error
}

// CurrencyConverter resolves multiplicative conversion rates:
// amount_in_target = amount_in_source × rate.
type CurrencyConverter struct {
	reader ExchangeRateReader
	cache  ExchangeRateCache
}

// NewCurrencyConverter creates a converter backed by reader. cache may be nil.
func NewCurrencyConverter(reader ExchangeRateReader, cache ExchangeRateCache) *CurrencyConverter {
	return &CurrencyConverter{
		reader: reader,
		cache:  cache,
	}
}

// GetConversionRate returns the rate converting fromCurrency amounts into toCurrency.
// Equal currencies yield 1 without any lookup. A missing, non-positive or unreachable
// rate fails with ErrRateUnavailable; context cancellation is returned as is.
func (c *CurrencyConverter) GetConversionRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	from := strings.ToUpper(strings.TrimSpace(fromCurrency))
	to := strings.ToUpper(strings.TrimSpace(toCurrency))
	if from == to {
		return identityRate, nil
	}

	if c.cache != nil {
		rate, err := c.cache.GetExchangeRateForCurrency(ctx, from, to)
		if err == nil && rate.IsPositive() {
			return rate, nil
		}
		if err != nil {
			logger.Log.Debugw("exchange rate cache lookup failed", "from", from, "to", to, "error", err)
		}
	}

	if c.reader == nil {
		return decimal.Zero, fmt.Errorf("%w: %s->%s: no rate provider configured", ErrRateUnavailable, from, to)
	}

	rate, err := c.reader.GetExchangeRateForCurrency(ctx, from, to)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return decimal.Zero, ctxErr
		}
		logger.Log.Errorw("failed to get exchange rate", "from", from, "to", to, "error", err)
		return decimal.Zero, fmt.Errorf("%w: %s->%s: %w", ErrRateUnavailable, from, to, err)
	}
	if !rate.IsPositive() {
		logger.Log.Errorw("exchange rate is not positive", "from", from, "to", to, "rate", rate)
		return decimal.Zero, fmt.Errorf("%w: %s->%s: rate %s", ErrRateUnavailable, from, to, rate)
	}

	if c.cache != nil {
		if err := c.cache.SetExchangeRateForCurrency(ctx, from, to, rate); err != nil {
			logger.Log.Errorw("failed to cache exchange rate", "from", from, "to", to, "rate", rate, "error", err)
		}
	}

	return rate, nil
}
