package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/account-service/internal/api/response"
	"github.com/dom/account-service/internal/auth"
	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/logging"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	UserKey   contextKey = "user"
)

// AccessTokenCookie is the cookie the access token is delivered in.
const AccessTokenCookie = "accessToken"

// UserLoader resolves the user a verified access token refers to.
type UserLoader interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.PublicUser, error)
}

// Auth accepts the access token from the accessToken cookie or an
// "Authorization: Bearer" header and stores the caller in the request context.
func Auth(verifier *auth.TokenVerifier, users UserLoader, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				response.Error(w, r, log, domain.UnauthorizedError("Unauthorized request"))
				return
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				msg := "Invalid Access Token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "Access token expired"
				}
				response.Error(w, r, log, domain.UnauthorizedError(msg).Wrap(err))
				return
			}

			user, err := users.GetCurrentUser(r.Context(), claims.UserUUID())
			if err != nil {
				if domain.KindOf(err) == domain.KindNotFound {
					response.Error(w, r, log, domain.UnauthorizedError("Invalid Access Token"))
					return
				}
				response.Error(w, r, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessToken extracts the raw access token, preferring the cookie.
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetUser(ctx context.Context) (*domain.PublicUser, bool) {
	user, ok := ctx.Value(UserKey).(*domain.PublicUser)
	return user, ok
}
