package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
)

type contextKey struct{}

// FromContext returns the session attached by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}

// Middleware guards routes by session.
type Middleware struct {
	service Service
}

func NewMiddleware(service Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuthenticated admits any signed-in session, including one opened
// with the shared password.
func (m *Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := m.resolve(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, sess)))
	})
}

// RequireMainAdmin admits only the main admin's session.
func (m *Middleware) RequireMainAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := m.resolve(w, r)
		if !ok {
			return
		}
		if !sess.IsMainAdmin() {
			respond(w, http.StatusForbidden, map[string]string{"error": ErrForbidden.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, sess)))
	})
}

func (m *Middleware) resolve(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	token := bearerToken(r)
	if token == "" {
		respond(w, http.StatusUnauthorized, map[string]string{"error": ErrUnauthenticated.Error()})
		return nil, false
	}
	sess, err := m.service.Authenticate(r.Context(), token)
	switch {
	case errors.Is(err, ErrUnauthenticated):
		respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return nil, false
	case err != nil:
		logger.Error("auth: resolve session", "error", err)
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return sess, true
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
