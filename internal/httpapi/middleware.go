package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bookstore/backend/internal/db"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type contextKey string

const principalKey contextKey = "principal"

// principalFrom returns the authenticated user attached by RequireAuth, or
// nil when the request never passed through it.
func principalFrom(ctx context.Context) *db.User {
	user, _ := ctx.Value(principalKey).(*db.User)
	return user
}

// RequireAuth resolves the bearer token to a user and attaches it to the
// request context. A missing or invalid token, or a token whose user no
// longer exists, rejects the request.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			respondError(w, http.StatusBadRequest, "No token found")
			return
		}

		claims, err := s.tokens.Parse(token)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid token")
			return
		}

		// A deleted user's token is invalid, not "not found"
		user, err := s.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose attached principal is not an admin.
// Must run after RequireAuth.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := principalFrom(r.Context())
		if user == nil {
			respondError(w, http.StatusBadRequest, "User not found")
			return
		}
		if !user.IsAdmin {
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with method, path, status and
// duration.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
