package session

import (
	"context"
	"net/http"
)

type contextKey string

const ctxKey contextKey = "session"

// Middleware adds session data to the request context when a valid session
// cookie is present. Requests without a session pass through untouched;
// handlers decide whether identity is required.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.GetSession(r.Context(), r)
		if err == nil {
			ctx := context.WithValue(r.Context(), ctxKey, session)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext retrieves session data from the request context.
func FromContext(ctx context.Context) *Data {
	if ctx == nil {
		return nil
	}
	session, ok := ctx.Value(ctxKey).(*Data)
	if !ok {
		return nil
	}
	return session
}

// NewContext returns a context carrying the given session data. Intended for
// tests and middleware.
func NewContext(ctx context.Context, data *Data) context.Context {
	return context.WithValue(ctx, ctxKey, data)
}
