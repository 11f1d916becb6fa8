package repositories

import (
	"context"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
)

const idempotencyBucket = "booking_intents"

// IdempotencyRepository maps client Idempotency-Key values to the id of the
// resource the first request created. It is backed by a local BoltDB file.
type IdempotencyRepository struct {
	db *bolt.DB
}

// NewIdempotencyRepository opens (or creates) the BoltDB file at path.
func NewIdempotencyRepository(path string) (*IdempotencyRepository, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(idempotencyBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &IdempotencyRepository{db: db}, nil
}

// Close releases the database file lock.
func (r *IdempotencyRepository) Close() error {
	return r.db.Close()
}

// Get returns the value remembered for key and whether it exists.
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(idempotencyBucket)).Get([]byte(key))
		if v != nil {
			value = string(v)
		}
		return nil
	})

	logger.Log.Infow(
		"key", key,
		"result", value,
		"error", err,
	)

	if err != nil {
		return "", false, err
	}
	return value, value != "", nil
}

// Remember stores value under key unless the key is already taken.
// It returns the value that ends up stored, so a losing writer learns the winner.
func (r *IdempotencyRepository) Remember(ctx context.Context, key, value string) (string, error) {
	stored := value
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(idempotencyBucket))
		if existing := b.Get([]byte(key)); existing != nil {
			stored = string(existing)
			return nil
		}
		return b.Put([]byte(key), []byte(value))
	})

	logger.Log.Infow(
		"key", key,
		"value", value,
		"result", stored,
		"error", err,
	)

	if err != nil {
		return "", err
	}
	return stored, nil
}
