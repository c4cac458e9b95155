package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/nexusapp/nexus/internal/cache"
	"github.com/nexusapp/nexus/internal/config"
)

var (
	ErrAuthUnavailable    = errors.New("auth service unavailable")
	ErrAuthInvalidCode    = errors.New("oauth code is required")
	ErrAuthCodeExchange   = errors.New("failed to exchange oauth code")
	ErrAuthGetDiscordUser = errors.New("failed to fetch discord user")
	ErrAuthGenerateState  = errors.New("failed to generate oauth state")
	ErrAuthInvalidState   = errors.New("oauth state mismatch")
)

const (
	discordUserURL = "https://discord.com/api/users/@me"
	discordCDNURL  = "https://cdn.discordapp.com"

	loginStateTTL = 10 * time.Minute
)

// DiscordUser is the profile payload returned by the Discord users/@me
// endpoint. ID is the stable identifier everything else is keyed by.
type DiscordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
}

// DisplayName renders the legacy name#discriminator form; accounts migrated
// to unique usernames have discriminator "0" and show the bare username.
func (u DiscordUser) DisplayName() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// AvatarURL returns the CDN URL for the user's avatar, falling back to the
// default embed avatar.
func (u DiscordUser) AvatarURL() string {
	if u.Avatar == "" {
		return discordCDNURL + "/embed/avatars/0.png"
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png", discordCDNURL, u.ID, u.Avatar)
}

type StartLoginResult struct {
	State            string
	AuthorizationURL string
}

// AuthService performs the Discord OAuth2 authorization-code exchange.
// Access tokens and the client secret never reach logs or responses.
type AuthService struct {
	oauthConfig *oauth2.Config
	stateStore  cache.Provider
	httpClient  *http.Client
	userURL     string
	logger      *slog.Logger
}

func NewAuthService(cfg *config.Config, stateStore cache.Provider, logger *slog.Logger) (*AuthService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth service config is required")
	}
	if stateStore == nil {
		return nil, fmt.Errorf("auth service state store is required")
	}

	return &AuthService{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			Endpoint:     endpoints.Discord,
			Scopes:       []string{"identify"},
			RedirectURL:  discordOAuthRedirectURL(cfg.BaseURL),
		},
		stateStore: stateStore,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userURL:    discordUserURL,
		logger:     logger,
	}, nil
}

func discordOAuthRedirectURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}

	return strings.TrimRight(baseURL, "/") + "/auth/callback"
}

// StartLogin issues a fresh state value, stores it server-side for the
// callback to consume, and returns the Discord authorization URL.
func (s *AuthService) StartLogin(ctx context.Context) (StartLoginResult, error) {
	result := StartLoginResult{}
	if s == nil || s.oauthConfig == nil || s.stateStore == nil {
		return result, ErrAuthUnavailable
	}

	state, err := generateOAuthState()
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrAuthGenerateState, err)
	}

	if err := s.stateStore.Set(ctx, cache.LoginStateKey(state), "1", loginStateTTL); err != nil {
		return result, fmt.Errorf("failed to store oauth state: %w", err)
	}

	result.State = state
	result.AuthorizationURL = s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)

	return result, nil
}

// ValidateState consumes a previously issued state value. Each state is
// single-use.
func (s *AuthService) ValidateState(ctx context.Context, state string) error {
	if s == nil || s.stateStore == nil {
		return ErrAuthUnavailable
	}

	state = strings.TrimSpace(state)
	if state == "" {
		return ErrAuthInvalidState
	}

	key := cache.LoginStateKey(state)
	if _, err := s.stateStore.Get(ctx, key); err != nil {
		return ErrAuthInvalidState
	}

	if err := s.stateStore.Delete(ctx, key); err != nil && s.logger != nil {
		s.logger.Warn("failed to delete consumed oauth state", "error", err)
	}

	return nil
}

// CompleteLogin exchanges the authorization code and fetches the user's
// Discord profile.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (*DiscordUser, error) {
	if s == nil || s.oauthConfig == nil || s.httpClient == nil {
		return nil, ErrAuthUnavailable
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrAuthInvalidCode
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthCodeExchange, err)
	}

	user, err := s.getDiscordUser(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthGetDiscordUser, err)
	}

	return user, nil
}

func (s *AuthService) getDiscordUser(ctx context.Context, accessToken string) (*DiscordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && s.logger != nil {
			s.logger.Warn("failed to close discord user response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		// Drain without echoing the body; provider error details stay out
		// of logs and responses.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("discord API returned status %d", resp.StatusCode)
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}

	if user.ID == "" {
		return nil, fmt.Errorf("discord API returned a user without an id")
	}

	return &user, nil
}

func generateOAuthState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
