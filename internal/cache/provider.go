// Package cache provides short-lived key storage, used for OAuth login
// state issued by /auth/login and consumed by /auth/callback.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Provider defines the interface for short-lived key/value storage.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

func LoginStateKey(state string) string {
	return fmt.Sprintf("login_state:%s", state)
}
