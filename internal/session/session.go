// Package session provides cookie-based session management for logged-in
// Discord users.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "nexus_session"
	ttl        = 24 * time.Hour
)

// Data represents the data stored in a session.
type Data struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt int64  `json:"created_at"`
}

// Store defines the interface for session storage.
type Store interface {
	Get(ctx context.Context, key string) (*Data, bool)
	Set(ctx context.Context, key string, data *Data, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// Manager handles session creation, validation, and storage. The cookie
// value is a signed token wrapping the session ID, so forged cookies are
// rejected before any store lookup.
type Manager struct {
	store  Store
	codec  *TokenCodec
	secure bool
}

func NewManager(store Store, codec *TokenCodec, secure bool) *Manager {
	return &Manager{
		store:  store,
		codec:  codec,
		secure: secure,
	}
}

func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// CreateSession creates a new session and sets the cookie.
func (m *Manager) CreateSession(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("context is required")
	}
	if data == nil {
		return "", fmt.Errorf("session data is required")
	}

	sessionID := uuid.NewString()

	token, err := m.codec.Sign(sessionID, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	sessionData := cloneData(data)
	sessionData.CreatedAt = time.Now().Unix()
	m.store.Set(ctx, sessionID, sessionData, ttl)

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: sameSiteMode(m.secure),
	})

	return sessionID, nil
}

// GetSession retrieves the session data for the request's cookie.
func (m *Manager) GetSession(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie found: %w", err)
	}

	if ctx == nil {
		ctx = r.Context()
	}

	sessionID, err := m.codec.Verify(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	data, ok := m.store.Get(ctx, sessionID)
	if !ok {
		return nil, fmt.Errorf("session not found or expired")
	}

	if time.Now().Unix()-data.CreatedAt > int64(ttl.Seconds()) {
		m.store.Delete(ctx, sessionID)
		return nil, fmt.Errorf("session expired")
	}

	return data, nil
}

// DestroySession removes the session and clears the cookie.
func (m *Manager) DestroySession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(cookieName)
	if ctx == nil {
		ctx = r.Context()
	}
	if err == nil {
		if sessionID, verifyErr := m.codec.Verify(cookie.Value); verifyErr == nil {
			m.store.Delete(ctx, sessionID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: sameSiteMode(m.secure),
	})

	return nil
}

// sameSiteMode picks the cookie policy. Production runs the frontend on a
// different origin, so secure deployments need SameSite=None for the
// session cookie to accompany cross-site requests.
func sameSiteMode(secure bool) http.SameSite {
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func cloneData(data *Data) *Data {
	if data == nil {
		return nil
	}
	cloned := *data
	return &cloned
}
