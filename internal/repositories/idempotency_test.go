package repositories

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdempotencyRepository(t *testing.T) *IdempotencyRepository {
	t.Helper()
	repo, err := NewIdempotencyRepository(filepath.Join(t.TempDir(), "idempotency.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestIdempotencyRepository_GetAndRemember(t *testing.T) {
	ctx := context.Background()
	repo := newTestIdempotencyRepository(t)

	_, ok, err := repo.Get(ctx, "user-1:key-1")
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.Remember(ctx, "user-1:key-1", "booking-a")
	require.NoError(t, err)
	assert.Equal(t, "booking-a", stored)

	// The first value wins on retries.
	stored, err = repo.Remember(ctx, "user-1:key-1", "booking-b")
	require.NoError(t, err)
	assert.Equal(t, "booking-a", stored)

	value, ok, err := repo.Get(ctx, "user-1:key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "booking-a", value)

	_, ok, err = repo.Get(ctx, "user-2:key-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyRepository_ConcurrentRemember(t *testing.T) {
	ctx := context.Background()
	repo := newTestIdempotencyRepository(t)

	const workers = 8
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := repo.Remember(ctx, "shared", string(rune('a'+i)))
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestIdempotencyRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "idempotency.db")

	repo, err := NewIdempotencyRepository(path)
	require.NoError(t, err)
	_, err = repo.Remember(ctx, "k", "v")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewIdempotencyRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	value, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}
