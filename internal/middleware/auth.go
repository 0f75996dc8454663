package middleware

import (
	"context"
	"net/http"
	"time"

	"claimwise-auth/internal/session"
)

// unexported, collision-proof context keys
type userIDContextKeyType struct{}
type sessionContextKeyType struct{}

var (
	userIDKey  = userIDContextKeyType{}
	sessionKey = sessionContextKeyType{}
)

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// SessionFromContext returns the server session loaded by RequireAuth.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok && s != nil
}

// WithSession attaches a session and its user to ctx.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return context.WithValue(ctx, userIDKey, s.UserID)
}

type AuthMiddleware struct {
	Store session.Store
	now   func() time.Time
}

func NewAuthMiddleware(store session.Store) *AuthMiddleware {
	return &AuthMiddleware{Store: store, now: time.Now}
}

// RequireAuth admits requests carrying a live session cookie.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := session.ReadCookie(r)
		if sessionID == "" {
			unauthorized(w)
			return
		}

		sess, err := a.Store.Get(r.Context(), sessionID)
		if err != nil || sess == nil {
			unauthorized(w)
			return
		}

		// stores may hand back a session a moment past its expiry
		if !a.now().Before(sess.ExpiresAt) {
			_ = a.Store.Delete(r.Context(), sessionID)
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
