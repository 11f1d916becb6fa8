package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedListing(t *testing.T, db *sqlx.DB, partnerID uuid.UUID) *models.ListingDB {
	t.Helper()
	repo := NewListingWriteRepository(db)
	l, err := repo.Save(context.Background(), &models.ListingDB{
		ListingID:           uuid.New(),
		PartnerID:           partnerID,
		Title:               "Sea view room",
		Kind:                models.ListingKindHotel,
		BasePrice:           decimal.RequireFromString("200"),
		CleaningFee:         decimal.RequireFromString("50"),
		ServiceFee:          decimal.RequireFromString("15"),
		TaxRatePercent:      decimal.RequireFromString("10"),
		DiscountRatePercent: decimal.RequireFromString("5"),
		Currency:            models.USD,
		Status:              models.ListingStatusPending,
	})
	require.NoError(t, err)
	return l
}

func newBooking(listing *models.ListingDB, userID uuid.UUID, expiresAt time.Time) *models.BookingDB {
	checkIn := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	return &models.BookingDB{
		BookingID:  uuid.New(),
		ListingID:  listing.ListingID,
		UserID:     userID,
		PartnerID:  listing.PartnerID,
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, 3),
		Guests:     2,
		Quantity:   3,
		TotalPrice: decimal.RequireFromString("692.00"),
		Currency:   models.USD,
		Status:     models.BookingStatusPendingPayment,
		ExpiresAt:  expiresAt,
	}
}

func TestListingRepositories(t *testing.T) {
	db := setupPostgresContainer(t)
	ctx := context.Background()

	partnerID := createUser(t, db, "partner", models.RolePartner)
	listing := seedListing(t, db, partnerID)

	reader := NewListingReadRepository(db)
	writer := NewListingWriteRepository(db)

	got, err := reader.GetByID(ctx, listing.ListingID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sea view room", got.Title)
	assert.True(t, decimal.RequireFromString("200").Equal(got.BasePrice))
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, models.ListingStatusPending, got.Status)

	approved, err := writer.UpdateStatus(ctx, listing.ListingID, models.ListingStatusPending, models.ListingStatusApproved)
	require.NoError(t, err)
	require.NotNil(t, approved)
	assert.Equal(t, models.ListingStatusApproved, approved.Status)

	// Already approved, so a second moderation does not match.
	again, err := writer.UpdateStatus(ctx, listing.ListingID, models.ListingStatusPending, models.ListingStatusRejected)
	assert.NoError(t, err)
	assert.Nil(t, again)

	missing, err := reader.GetByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBookingRepositories_SaveAndGet(t *testing.T) {
	db := setupPostgresContainer(t)
	ctx := context.Background()

	partnerID := createUser(t, db, "partner", models.RolePartner)
	userID := createUser(t, db, "guest", models.RoleUser)
	listing := seedListing(t, db, partnerID)

	writer := NewBookingWriteRepository(db, nil)
	reader := NewBookingReadRepository(db)

	b := newBooking(listing, userID, time.Now().Add(time.Hour))
	saved, err := writer.Save(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, b.BookingID, saved.BookingID)

	got, err := reader.GetByID(ctx, b.BookingID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, decimal.RequireFromString("692").Equal(got.TotalPrice))
	assert.Equal(t, models.BookingStatusPendingPayment, got.Status)
	assert.Equal(t, 3, got.Quantity)
	assert.Nil(t, got.RefundReason)

	missing, err := reader.GetByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBookingWriteRepository_UpdateStatus(t *testing.T) {
	db := setupPostgresContainer(t)
	ctx := context.Background()

	partnerID := createUser(t, db, "partner", models.RolePartner)
	userID := createUser(t, db, "guest", models.RoleUser)
	listing := seedListing(t, db, partnerID)

	writer := NewBookingWriteRepository(db, nil)
	b, err := writer.Save(ctx, newBooking(listing, userID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	confirmed, err := writer.UpdateStatus(ctx, b.BookingID,
		[]models.BookingStatus{models.BookingStatusPendingPayment}, models.BookingStatusConfirmed, nil)
	require.NoError(t, err)
	require.NotNil(t, confirmed)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	// A confirmed booking cannot fail any more.
	failed, err := writer.UpdateStatus(ctx, b.BookingID,
		[]models.BookingStatus{models.BookingStatusPendingPayment}, models.BookingStatusFailed, nil)
	assert.NoError(t, err)
	assert.Nil(t, failed)

	reason := "requested_by_customer"
	refunded, err := writer.UpdateStatus(ctx, b.BookingID,
		[]models.BookingStatus{models.BookingStatusConfirmed}, models.BookingStatusRefunded, &reason)
	require.NoError(t, err)
	require.NotNil(t, refunded)
	assert.Equal(t, models.BookingStatusRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundReason)
	assert.Equal(t, reason, *refunded.RefundReason)
}

func TestBookingWriteRepository_UpdateStatus_ConcurrentTransitions(t *testing.T) {
	db := setupPostgresContainer(t)
	ctx := context.Background()

	partnerID := createUser(t, db, "partner", models.RolePartner)
	userID := createUser(t, db, "guest", models.RoleUser)
	listing := seedListing(t, db, partnerID)

	writer := NewBookingWriteRepository(db, nil)
	b, err := writer.Save(ctx, newBooking(listing, userID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	const workers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := models.BookingStatusConfirmed
			if i%2 == 0 {
				to = models.BookingStatusCancelled
			}
			res, err := writer.UpdateStatus(ctx, b.BookingID,
				[]models.BookingStatus{models.BookingStatusPendingPayment}, to, nil)
			assert.NoError(t, err)
			if res != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestBookingWriteRepository_ExpireStale(t *testing.T) {
	db := setupPostgresContainer(t)
	ctx := context.Background()

	partnerID := createUser(t, db, "partner", models.RolePartner)
	userID := createUser(t, db, "guest", models.RoleUser)
	listing := seedListing(t, db, partnerID)

	writer := NewBookingWriteRepository(db, nil)
	reader := NewBookingReadRepository(db)

	now := time.Now()
	stale, err := writer.Save(ctx, newBooking(listing, userID, now.Add(-time.Minute)))
	require.NoError(t, err)
	fresh, err := writer.Save(ctx, newBooking(listing, userID, now.Add(time.Hour)))
	require.NoError(t, err)
	staleConfirmed, err := writer.Save(ctx, newBooking(listing, userID, now.Add(-time.Minute)))
	require.NoError(t, err)
	_, err = writer.UpdateStatus(ctx, staleConfirmed.BookingID,
		[]models.BookingStatus{models.BookingStatusPendingPayment}, models.BookingStatusConfirmed, nil)
	require.NoError(t, err)

	expired, err := writer.ExpireStale(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.BookingID, expired[0].BookingID)
	assert.Equal(t, models.BookingStatusExpired, expired[0].Status)

	got, err := reader.GetByID(ctx, fresh.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPendingPayment, got.Status)

	got, err = reader.GetByID(ctx, staleConfirmed.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)

	// Nothing left to expire.
	expired, err = writer.ExpireStale(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestBookingWriteRepository_UsesContextTx(t *testing.T) {
	db := setupPostgresContainer(t)
	ctx := context.Background()

	partnerID := createUser(t, db, "partner", models.RolePartner)
	userID := createUser(t, db, "guest", models.RoleUser)
	listing := seedListing(t, db, partnerID)

	tx, err := db.Beginx()
	require.NoError(t, err)

	writer := NewBookingWriteRepository(db, func(context.Context) *sqlx.Tx { return tx })
	b, err := writer.Save(ctx, newBooking(listing, userID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	require.NoError(t, tx.Rollback())

	got, err := NewBookingReadRepository(db).GetByID(ctx, b.BookingID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
