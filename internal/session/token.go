package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLength = 32

// TokenCodec signs and verifies session cookie tokens. The token carries
// only the session ID; the session data itself stays server-side.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) (*TokenCodec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters", minSecretLength)
	}
	return &TokenCodec{secret: []byte(secret)}, nil
}

func (c *TokenCodec) Sign(sessionID string, ttl time.Duration) (string, error) {
	if c == nil || len(c.secret) == 0 {
		return "", fmt.Errorf("token codec is not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the token signature and expiry and returns the session ID.
func (c *TokenCodec) Verify(token string) (string, error) {
	if c == nil || len(c.secret) == 0 {
		return "", fmt.Errorf("token codec is not configured")
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	if !parsed.Valid || claims.ID == "" {
		return "", fmt.Errorf("session token is invalid")
	}

	return claims.ID, nil
}
