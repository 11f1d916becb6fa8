package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { redisC.Terminate(ctx) })

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestExchangeRateCacheRepository(t *testing.T) {
	ctx := context.Background()
	rdb := setupRedisContainer(t)

	repo := NewExchangeRateCacheRepository(rdb, 2*time.Second)

	t.Run("Set and Get exchange rate", func(t *testing.T) {
		rate := decimal.RequireFromString("0.9123456789")

		err := repo.SetExchangeRateForCurrency(ctx, "USD", "EUR", rate)
		assert.NoError(t, err)

		got, err := repo.GetExchangeRateForCurrency(ctx, "USD", "EUR")
		assert.NoError(t, err)
		assert.True(t, rate.Equal(got), "got %s", got)

		raw, err := rdb.Get(ctx, "exchange_rate:USD:EUR").Result()
		assert.NoError(t, err)
		assert.Equal(t, "0.9123456789", raw)
	})

	t.Run("Get missing key returns cache miss", func(t *testing.T) {
		_, err := repo.GetExchangeRateForCurrency(ctx, "ABC", "XYZ")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Corrupt value returns error", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "exchange_rate:USD:BAD", "not-a-number", time.Minute).Err())

		_, err := repo.GetExchangeRateForCurrency(ctx, "USD", "BAD")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Cached value expires", func(t *testing.T) {
		err := repo.SetExchangeRateForCurrency(ctx, "GBP", "USD", decimal.RequireFromString("1.5"))
		assert.NoError(t, err)

		time.Sleep(3 * time.Second)

		_, err = repo.GetExchangeRateForCurrency(ctx, "GBP", "USD")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
