package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"github.com/Lixing-Zhang/shop-backend/internal/repository"
)

// TokenVerifier resolves a bearer token to the user ID it was issued for
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder loads the user a verified token belongs to
type UserFinder interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type contextKey string

const userContextKey contextKey = "user"

// Protect middleware requires a valid "Authorization: Bearer <token>" header
// whose subject is an existing user. The user is stored in the request context.
func Protect(tokens TokenVerifier, users UserFinder, log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Not authorized, no token")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				log.Warn("rejected bearer token", "path", r.URL.Path, "error", err)
				unauthorized(w, "Not authorized, token failed")
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					log.Warn("token subject not found", "user_id", userID)
				} else {
					log.Error("token subject lookup failed", "user_id", userID, "error", err)
				}
				unauthorized(w, "Not authorized, token failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user stored by Protect
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
