package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		user_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS listings (
		listing_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		partner_id UUID NOT NULL REFERENCES users(user_id),
		title VARCHAR(200) NOT NULL,
		kind VARCHAR(20) NOT NULL,
		base_price NUMERIC(14,2) NOT NULL CHECK (base_price >= 0),
		cleaning_fee NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (cleaning_fee >= 0),
		service_fee NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (service_fee >= 0),
		tax_rate_percent NUMERIC(7,4) NOT NULL DEFAULT 0 CHECK (tax_rate_percent >= 0),
		discount_rate_percent NUMERIC(7,4) NOT NULL DEFAULT 0,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		booking_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		listing_id UUID NOT NULL REFERENCES listings(listing_id),
		user_id UUID NOT NULL REFERENCES users(user_id),
		partner_id UUID NOT NULL REFERENCES users(user_id),
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		guests INT NOT NULL DEFAULT 1,
		quantity INT NOT NULL CHECK (quantity > 0),
		total_price NUMERIC(14,2) NOT NULL,
		currency CHAR(3) NOT NULL,
		status VARCHAR(20) NOT NULL,
		refund_reason TEXT,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS bookings_pending_expiry_idx
		ON bookings (expires_at) WHERE status = 'pending_payment'`,
}

// Migrate creates the schema if it does not exist yet. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Log.Errorw("migration failed", "step", i, "error", err)
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Log.Infow("migrations applied", "count", len(migrations))
	return nil
}
