package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stemcapstone/smartgoals/internal/ctxkeys"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware resolves the bearer token to a user and adds it to the
// context. Requests without a usable token continue anonymously.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				ctx := ctxkeys.WithUser(r.Context(), user)
				next.ServeHTTP(w, r.WithContext(ctx))
			case errors.Is(err, service.ErrInvalidToken), errors.Is(err, repository.ErrUserNotFound):
				slog.Debug("rejected token", "error", err, "request_id", ctxkeys.RequestID(r.Context()))
				next.ServeHTTP(w, r)
			default:
				slog.Error("failed to authenticate", "error", err, "request_id", ctxkeys.RequestID(r.Context()))
				deny(w, http.StatusServiceUnavailable, "store_unavailable", "Could not verify credentials")
			}
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth ensures the request carries an authenticated user
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			deny(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireTeacher ensures the user is a teacher or an admin
func RequireTeacher(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !ctxkeys.User(r.Context()).IsTeacher() {
			deny(w, http.StatusForbidden, "forbidden", "Only teachers can do this")
			return
		}
		next.ServeHTTP(w, r)
	})
}
