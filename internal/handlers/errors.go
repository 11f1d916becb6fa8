package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/calculator"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/sbilibin2017/gw-booking-pricing/internal/services"
)

// ActorGetter returns the authenticated caller stored in the request context.
type ActorGetter func(ctx context.Context) (models.Actor, bool)

// ErrorResponse represents an error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// errorStatus maps a service error to an HTTP status and a client-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, calculator.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrListingNotFound):
		return http.StatusNotFound, "Listing not found"
	case errors.Is(err, services.ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found"
	case errors.Is(err, services.ErrUserDoesNotExist):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrListingNotPending):
		return http.StatusConflict, "Listing is not pending moderation"
	case errors.Is(err, services.ErrListingNotAvailable):
		return http.StatusConflict, "Listing is not available"
	case errors.Is(err, services.ErrInvalidBookingTransition):
		return http.StatusConflict, "Booking status does not allow this action"
	case errors.Is(err, services.ErrRateUnavailable):
		return http.StatusBadGateway, "Exchange rate unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeServiceError logs err and writes the mapped status and message.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Errorw(op+" failed", "error", err)
	} else {
		logger.Log.Warnw(op+" rejected", "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireActor writes 401 and returns false when the request carries no caller.
func requireActor(w http.ResponseWriter, r *http.Request, getActor ActorGetter) (models.Actor, bool) {
	actor, ok := getActor(r.Context())
	if !ok || actor.UserID == uuid.Nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return models.Actor{}, false
	}
	return actor, true
}

// idParam parses the {id} URL parameter, writing 400 when it is not a UUID.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
