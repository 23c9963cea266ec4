// internal/app/system/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/tabtrail/internal/app/system/jsonutil"
	"github.com/dalemusser/tabtrail/internal/app/system/timeouts"
	"github.com/dalemusser/tabtrail/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type contextKey string

const userContextKey contextKey = "tabtrail.user"

// UserFetcher loads a user by id so each request sees fresh account state.
// Returning nil means the user no longer exists (or could not be loaded) and
// the request is rejected; a deleted account invalidates its tokens
// immediately.
type UserFetcher interface {
	FetchUser(ctx context.Context, id primitive.ObjectID) *models.User
}

// RequireUser returns middleware that validates the Authorization header
// using the Bearer scheme ("Authorization: Bearer <jwt>"), resolves the
// token's subject to a live user record, and stores it in the request
// context for handlers to read via UserFromContext.
//
// Missing, malformed, expired, or orphaned tokens all yield 401.
func RequireUser(tokens *Tokens, fetcher UserFetcher, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("request rejected: missing Authorization header",
					zap.String("path", r.URL.Path))
				jsonutil.Fail(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Debug("request rejected: invalid Authorization format",
					zap.String("path", r.URL.Path))
				jsonutil.Fail(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			userID, _, err := tokens.Verify(parts[1])
			if err != nil {
				logger.Debug("request rejected: token verification failed",
					zap.String("path", r.URL.Path))
				jsonutil.Fail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			fetchCtx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			user := fetcher.FetchUser(fetchCtx, userID)
			cancel()
			if user == nil {
				logger.Debug("request rejected: token user no longer exists",
					zap.String("path", r.URL.Path),
					zap.String("user_id", userID.Hex()))
				jsonutil.Fail(w, http.StatusUnauthorized, "User no longer exists")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user set by RequireUser, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// WithTestUser attaches a user to a request for handler tests, bypassing the
// middleware.
func WithTestUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(WithUser(r.Context(), user))
}
