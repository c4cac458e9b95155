package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/nexusapp/nexus/internal/cache"
	"github.com/nexusapp/nexus/internal/config"
)

func testAuthService(t *testing.T) *AuthService {
	t.Helper()

	stateStore, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("failed to create state store: %v", err)
	}

	cfg := &config.Config{
		DiscordClientID:     "client-id",
		DiscordClientSecret: "client-secret",
		BaseURL:             "https://nexus-backend.example.com",
		FrontendURL:         "https://nexus-site.example.com",
	}

	service, err := NewAuthService(cfg, stateStore, nil)
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	return service
}

func TestAuthService_StartLogin_Unavailable(t *testing.T) {
	t.Parallel()

	service := &AuthService{}
	_, err := service.StartLogin(context.Background())
	if !errors.Is(err, ErrAuthUnavailable) {
		t.Fatalf("expected ErrAuthUnavailable, got %v", err)
	}
}

func TestAuthService_StartLogin(t *testing.T) {
	t.Parallel()

	service := testAuthService(t)

	result, err := service.StartLogin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State == "" {
		t.Fatal("expected non-empty state")
	}
	if !strings.Contains(result.AuthorizationURL, "state=") {
		t.Fatalf("authorization URL missing state: %s", result.AuthorizationURL)
	}
	if !strings.Contains(result.AuthorizationURL, "client_id=client-id") {
		t.Fatalf("authorization URL missing client id: %s", result.AuthorizationURL)
	}
}

func TestAuthService_ValidateState_SingleUse(t *testing.T) {
	t.Parallel()

	service := testAuthService(t)
	ctx := context.Background()

	result, err := service.StartLogin(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.ValidateState(ctx, result.State); err != nil {
		t.Fatalf("first validation failed: %v", err)
	}
	if err := service.ValidateState(ctx, result.State); !errors.Is(err, ErrAuthInvalidState) {
		t.Fatalf("expected ErrAuthInvalidState on reuse, got %v", err)
	}
}

func TestAuthService_ValidateState_Unknown(t *testing.T) {
	t.Parallel()

	service := testAuthService(t)

	if err := service.ValidateState(context.Background(), "never-issued"); !errors.Is(err, ErrAuthInvalidState) {
		t.Fatalf("expected ErrAuthInvalidState, got %v", err)
	}
	if err := service.ValidateState(context.Background(), "  "); !errors.Is(err, ErrAuthInvalidState) {
		t.Fatalf("expected ErrAuthInvalidState for blank state, got %v", err)
	}
}

func TestAuthService_CompleteLogin_InvalidCode(t *testing.T) {
	t.Parallel()

	service := testAuthService(t)

	_, err := service.CompleteLogin(context.Background(), "   ")
	if !errors.Is(err, ErrAuthInvalidCode) {
		t.Fatalf("expected ErrAuthInvalidCode, got %v", err)
	}
}

func TestAuthService_CompleteLogin(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-token-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-token-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1462605560","username":"nexusfan","discriminator":"0","avatar":"abc123"}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	service := testAuthService(t)
	service.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:  server.URL + "/authorize",
		TokenURL: server.URL + "/token",
	}
	service.userURL = server.URL + "/users/@me"
	service.httpClient = &http.Client{Timeout: 5 * time.Second}

	user, err := service.CompleteLogin(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "1462605560" || user.Username != "nexusfan" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_CompleteLogin_ProviderError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	service := testAuthService(t)
	service.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:  server.URL + "/authorize",
		TokenURL: server.URL + "/token",
	}

	_, err := service.CompleteLogin(context.Background(), "auth-code")
	if !errors.Is(err, ErrAuthCodeExchange) {
		t.Fatalf("expected ErrAuthCodeExchange, got %v", err)
	}
}

func TestDiscordUser_DisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user DiscordUser
		want string
	}{
		{
			name: "legacy discriminator",
			user: DiscordUser{Username: "nexusfan", Discriminator: "1234"},
			want: "nexusfan#1234",
		},
		{
			name: "migrated account",
			user: DiscordUser{Username: "nexusfan", Discriminator: "0"},
			want: "nexusfan",
		},
		{
			name: "missing discriminator",
			user: DiscordUser{Username: "nexusfan"},
			want: "nexusfan",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.user.DisplayName(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiscordUser_AvatarURL(t *testing.T) {
	t.Parallel()

	withAvatar := DiscordUser{ID: "42", Avatar: "abc123"}
	if got := withAvatar.AvatarURL(); got != "https://cdn.discordapp.com/avatars/42/abc123.png" {
		t.Fatalf("unexpected avatar URL: %s", got)
	}

	withoutAvatar := DiscordUser{ID: "42"}
	if got := withoutAvatar.AvatarURL(); got != "https://cdn.discordapp.com/embed/avatars/0.png" {
		t.Fatalf("unexpected fallback avatar URL: %s", got)
	}
}

func TestDiscordOAuthRedirectURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{name: "empty", baseURL: "", want: ""},
		{name: "plain", baseURL: "https://nexus-backend.example.com", want: "https://nexus-backend.example.com/auth/callback"},
		{name: "trailing slash", baseURL: "https://nexus-backend.example.com/", want: "https://nexus-backend.example.com/auth/callback"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := discordOAuthRedirectURL(tt.baseURL); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
