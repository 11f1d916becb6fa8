package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/jwt"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=middlewares

// Tokener defines the minimal interface needed by the middleware
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// UserGetter loads the caller's current account.
type UserGetter interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

type actorKey struct{}

// AuthMiddleware returns a middleware that validates the bearer token and
// stores the caller as a models.Actor in the request context.
// When users is set the role comes from the stored account, not the token,
// so a role change applies to tokens issued before it.
func AuthMiddleware(tokener Tokener, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Errorw("authorization failed", "err", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims, err := tokener.GetClaims(ctx, tokenString)
			if err != nil {
				logger.Log.Errorw("authorization failed", "err", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			actor := models.Actor{UserID: claims.UserID, Role: claims.Role}
			if users != nil {
				user, err := users.GetByID(ctx, claims.UserID)
				if err != nil {
					logger.Log.Errorw("failed to load caller", "user_id", claims.UserID, "err", err)
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				if user == nil {
					logger.Log.Errorw("authorization failed", "user_id", claims.UserID, "err", "user no longer exists")
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				actor.Role = user.Role
			}

			ctx = SetActorToContext(ctx, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetActorToContext stores the authenticated caller in ctx.
func SetActorToContext(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActorFromContext returns the caller stored by AuthMiddleware.
func GetActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok
}
