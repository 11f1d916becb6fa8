package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/calculator"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/sbilibin2017/gw-booking-pricing/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	guest := models.Actor{UserID: uuid.New(), Role: models.RoleUser}
	listingID := uuid.New()
	bookingID := uuid.New()

	validBody := fmt.Sprintf(
		`{"listing_id":%q,"check_in":"2026-07-01","check_out":"2026-07-04","guests":2,"target_currency":"EUR"}`,
		listingID,
	)

	created := &services.BookingIntent{
		Booking: &models.BookingDB{
			BookingID:  bookingID,
			ListingID:  listingID,
			UserID:     guest.UserID,
			TotalPrice: dec("622.80"),
			Currency:   "EUR",
			Status:     models.BookingStatusPendingPayment,
		},
		Pricing: sampleBreakdown(),
	}

	tests := []struct {
		name         string
		getActor     ActorGetter
		body         string
		idemKey      string
		mockSetup    func(m *MockBookingCreator)
		expectedCode int
		expectedErr  string
		wantReplayed bool
	}{
		{
			name:     "created",
			getActor: staticActor(guest),
			body:     validBody,
			idemKey:  " retry-1 ",
			mockSetup: func(m *MockBookingCreator) {
				m.EXPECT().CreateIntent(gomock.Any(), guest, services.CreateBookingInput{
					ListingID:      listingID,
					CheckIn:        time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
					CheckOut:       time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
					Guests:         2,
					TargetCurrency: "EUR",
					IdempotencyKey: "retry-1",
				}).Return(created, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:     "replayed",
			getActor: staticActor(guest),
			body:     validBody,
			idemKey:  "retry-1",
			mockSetup: func(m *MockBookingCreator) {
				m.EXPECT().CreateIntent(gomock.Any(), guest, gomock.Any()).
					Return(&services.BookingIntent{Booking: created.Booking, Replayed: true}, nil)
			},
			expectedCode: http.StatusOK,
			wantReplayed: true,
		},
		{
			name:         "unauthenticated",
			getActor:     anonymous,
			body:         validBody,
			expectedCode: http.StatusUnauthorized,
			expectedErr:  "Unauthorized",
		},
		{
			name:         "bad listing id",
			getActor:     staticActor(guest),
			body:         `{"listing_id":"x","check_in":"2026-07-01","check_out":"2026-07-04"}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Invalid listing_id",
		},
		{
			name:         "bad check in",
			getActor:     staticActor(guest),
			body:         fmt.Sprintf(`{"listing_id":%q,"check_in":"01/07/2026","check_out":"2026-07-04"}`, listingID),
			expectedCode: http.StatusBadRequest,
			expectedErr:  "check_in must be a YYYY-MM-DD date",
		},
		{
			name:         "missing check out",
			getActor:     staticActor(guest),
			body:         fmt.Sprintf(`{"listing_id":%q,"check_in":"2026-07-01"}`, listingID),
			expectedCode: http.StatusBadRequest,
			expectedErr:  "check_out must be a YYYY-MM-DD date",
		},
		{
			name:     "check out before check in",
			getActor: staticActor(guest),
			body:     fmt.Sprintf(`{"listing_id":%q,"check_in":"2026-07-04","check_out":"2026-07-01"}`, listingID),
			mockSetup: func(m *MockBookingCreator) {
				m.EXPECT().CreateIntent(gomock.Any(), guest, gomock.Any()).
					Return(nil, fmt.Errorf("%w: check_out must be after check_in", calculator.ErrInvalidInput))
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "invalid pricing input: check_out must be after check_in",
		},
		{
			name:     "listing not approved",
			getActor: staticActor(guest),
			body:     validBody,
			mockSetup: func(m *MockBookingCreator) {
				m.EXPECT().CreateIntent(gomock.Any(), guest, gomock.Any()).Return(nil, services.ErrListingNotAvailable)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "Listing is not available",
		},
		{
			name:     "rate unavailable",
			getActor: staticActor(guest),
			body:     validBody,
			mockSetup: func(m *MockBookingCreator) {
				m.EXPECT().CreateIntent(gomock.Any(), guest, gomock.Any()).
					Return(nil, fmt.Errorf("%w: USD->EUR", services.ErrRateUnavailable))
			},
			expectedCode: http.StatusBadGateway,
			expectedErr:  "Exchange rate unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockBookingCreator(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(svc)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(tt.body))
			if tt.idemKey != "" {
				req.Header.Set("Idempotency-Key", tt.idemKey)
			}
			rr := httptest.NewRecorder()

			NewCreateBookingHandler(svc, tt.getActor)(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedErr != "" {
				var resp ErrorResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedErr, resp.Error)
				return
			}

			var resp BookingResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, bookingID, resp.Booking.BookingID)
			assert.True(t, dec("622.80").Equal(resp.Booking.TotalPrice))
			assert.Equal(t, tt.wantReplayed, resp.Replayed)
			assert.Equal(t, tt.wantReplayed, resp.Pricing == nil)
		})
	}
}

func TestBookingActionHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := models.Actor{UserID: uuid.New(), Role: models.RoleUser}
	admin := models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	bookingID := uuid.New()

	booking := func(status models.BookingStatus) *models.BookingDB {
		return &models.BookingDB{BookingID: bookingID, UserID: owner.UserID, Status: status}
	}

	tests := []struct {
		name         string
		handler      func() http.HandlerFunc
		body         string
		expectedCode int
		wantStatus   models.BookingStatus
	}{
		{
			name: "get",
			handler: func() http.HandlerFunc {
				m := NewMockBookingGetter(ctrl)
				m.EXPECT().Get(gomock.Any(), owner, bookingID).Return(booking(models.BookingStatusConfirmed), nil)
				return NewGetBookingHandler(m, staticActor(owner))
			},
			expectedCode: http.StatusOK,
			wantStatus:   models.BookingStatusConfirmed,
		},
		{
			name: "get foreign booking",
			handler: func() http.HandlerFunc {
				m := NewMockBookingGetter(ctrl)
				m.EXPECT().Get(gomock.Any(), owner, bookingID).Return(nil, services.ErrForbidden)
				return NewGetBookingHandler(m, staticActor(owner))
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "get missing",
			handler: func() http.HandlerFunc {
				m := NewMockBookingGetter(ctrl)
				m.EXPECT().Get(gomock.Any(), owner, bookingID).Return(nil, services.ErrBookingNotFound)
				return NewGetBookingHandler(m, staticActor(owner))
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "cancel",
			handler: func() http.HandlerFunc {
				m := NewMockBookingCanceller(ctrl)
				m.EXPECT().Cancel(gomock.Any(), owner, bookingID).Return(booking(models.BookingStatusCancelled), nil)
				return NewCancelBookingHandler(m, staticActor(owner))
			},
			expectedCode: http.StatusOK,
			wantStatus:   models.BookingStatusCancelled,
		},
		{
			name: "cancel refunded booking",
			handler: func() http.HandlerFunc {
				m := NewMockBookingCanceller(ctrl)
				m.EXPECT().Cancel(gomock.Any(), owner, bookingID).
					Return(nil, fmt.Errorf("cancel: %w", services.ErrInvalidBookingTransition))
				return NewCancelBookingHandler(m, staticActor(owner))
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "cancel anonymous",
			handler: func() http.HandlerFunc {
				return NewCancelBookingHandler(NewMockBookingCanceller(ctrl), anonymous)
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "refund with reason",
			handler: func() http.HandlerFunc {
				m := NewMockBookingRefunder(ctrl)
				m.EXPECT().Refund(gomock.Any(), admin, bookingID, "duplicate").Return(booking(models.BookingStatusRefunded), nil)
				return NewRefundBookingHandler(m, staticActor(admin))
			},
			body:         `{"reason":" duplicate "}`,
			expectedCode: http.StatusOK,
			wantStatus:   models.BookingStatusRefunded,
		},
		{
			name: "refund without body",
			handler: func() http.HandlerFunc {
				m := NewMockBookingRefunder(ctrl)
				m.EXPECT().Refund(gomock.Any(), admin, bookingID, "").Return(booking(models.BookingStatusRefunded), nil)
				return NewRefundBookingHandler(m, staticActor(admin))
			},
			expectedCode: http.StatusOK,
			wantStatus:   models.BookingStatusRefunded,
		},
		{
			name: "refund malformed body",
			handler: func() http.HandlerFunc {
				return NewRefundBookingHandler(NewMockBookingRefunder(ctrl), staticActor(admin))
			},
			body:         `{"reason":`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "refund by owner",
			handler: func() http.HandlerFunc {
				m := NewMockBookingRefunder(ctrl)
				m.EXPECT().Refund(gomock.Any(), owner, bookingID, "").Return(nil, services.ErrForbidden)
				return NewRefundBookingHandler(m, staticActor(owner))
			},
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			req = withURLParam(req, "id", bookingID.String())
			rr := httptest.NewRecorder()

			tt.handler()(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.wantStatus != "" {
				var b models.BookingDB
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
				assert.Equal(t, tt.wantStatus, b.Status)
			}
		})
	}
}

func TestBookingHandlers_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	actor := staticActor(models.Actor{UserID: uuid.New(), Role: models.RoleAdmin})
	for name, h := range map[string]http.HandlerFunc{
		"get":    NewGetBookingHandler(NewMockBookingGetter(ctrl), actor),
		"cancel": NewCancelBookingHandler(NewMockBookingCanceller(ctrl), actor),
		"refund": NewRefundBookingHandler(NewMockBookingRefunder(ctrl), actor),
	} {
		t.Run(name, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "id", "123")
			rr := httptest.NewRecorder()
			h(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}
