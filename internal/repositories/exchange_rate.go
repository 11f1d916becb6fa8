package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/shopspring/decimal"
)

// ErrCacheMiss is returned when no cached value exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ExchangeRateCacheRepository provides cached exchange rates using Redis
type ExchangeRateCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached rates
}

// NewExchangeRateCacheRepository creates a new repository instance with optional TTL
func NewExchangeRateCacheRepository(client *redis.Client, expiration time.Duration) *ExchangeRateCacheRepository {
	return &ExchangeRateCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func exchangeRateKey(fromCurrency, toCurrency string) string {
	return fmt.Sprintf("exchange_rate:%s:%s", fromCurrency, toCurrency)
}

// GetExchangeRateForCurrency fetches a cached exchange rate between two currencies.
// A missing key yields ErrCacheMiss.
func (r *ExchangeRateCacheRepository) GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	key := exchangeRateKey(fromCurrency, toCurrency)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", val,
			"error", err,
		)
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, fmt.Errorf("%w: exchange rate %s->%s", ErrCacheMiss, fromCurrency, toCurrency)
		}
		return decimal.Zero, err
	}

	rate, err := decimal.NewFromString(val)

	logger.Log.Infow(
		"key", key,
		"value", val,
		"result", rate,
		"error", err,
	)

	if err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

// SetExchangeRateForCurrency caches a new exchange rate in Redis with expiration.
// The rate is stored as its exact decimal string.
func (r *ExchangeRateCacheRepository) SetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string, rate decimal.Decimal) error {
	key := exchangeRateKey(fromCurrency, toCurrency)
	err := r.client.Set(ctx, key, rate.String(), r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"rate", rate.String(),
		"result", "ok",
		"error", err,
	)

	return err
}
