package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nexusapp/nexus/internal/config"
	"github.com/nexusapp/nexus/internal/ledger"
	"github.com/nexusapp/nexus/internal/logging"
	"github.com/nexusapp/nexus/internal/services"
	"github.com/nexusapp/nexus/internal/session"
)

const maxRequestBodyBytes = 64 << 10 // 64 KB

// Handlers provides the HTTP handlers for the Nexus shop API.
type Handlers struct {
	config         *config.Config
	authService    *services.AuthService
	shopService    *services.ShopService
	ledgerStore    ledger.Store
	sessionManager *session.Manager
	logger         *slog.Logger
}

type Dependencies struct {
	Config         *config.Config
	AuthService    *services.AuthService
	ShopService    *services.ShopService
	LedgerStore    ledger.Store
	SessionManager *session.Manager
	Logger         *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.AuthService == nil {
		return nil, fmt.Errorf("handlers dependencies: authService is required")
	}
	if deps.ShopService == nil {
		return nil, fmt.Errorf("handlers dependencies: shopService is required")
	}
	if deps.LedgerStore == nil {
		return nil, fmt.Errorf("handlers dependencies: ledgerStore is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}

	return &Handlers{
		config:         deps.Config,
		authService:    deps.AuthService,
		shopService:    deps.ShopService,
		ledgerStore:    deps.LedgerStore,
		sessionManager: deps.SessionManager,
		logger:         logger.With("component", "handlers"),
	}, nil
}

// Root serves the JSON service index the frontend probes on startup.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"message":   "Nexus Main Backend API",
		"version":   "5.0",
		"status":    "RUNNING",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": map[string]string{
			"health": "GET /health",
			"shop":   "GET /api/shop/pets",
			"buy":    "POST /api/shop/buy",
			"login":  "GET /auth/login",
			"oauth":  "GET /auth/callback",
			"me":     "GET /api/auth/me",
			"logout": "POST /api/auth/logout",
		},
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":       "OK",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"frontend_url": h.config.FrontendURL,
		"features":     []string{"OAuth", "Shop", "Purchase"},
	})
}

// NotFound keeps unknown routes machine-readable for the frontend.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusNotFound, map[string]any{
		"error":     "Route not found",
		"requested": fmt.Sprintf("%s %s", r.Method, r.URL.Path),
		"availableRoutes": []string{
			"GET /",
			"GET /health",
			"GET /api/shop/pets",
			"POST /api/shop/buy",
			"GET /auth/login",
			"GET /auth/callback",
			"GET /api/auth/me",
			"POST /api/auth/logout",
		},
	})
}

// SessionMiddleware adds session data to the request context.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

// RequireSession rejects requests without a resolved identity.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.sessionFromRequest(r.Context(), r) == nil {
			h.writeError(r.Context(), w, http.StatusUnauthorized, "Not logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) sessionFromRequest(ctx context.Context, r *http.Request) *session.Data {
	if ctx == nil {
		ctx = context.Background()
	}
	if sess := session.FromContext(ctx); sess != nil {
		return sess
	}
	if h == nil || h.sessionManager == nil || r == nil {
		return nil
	}
	sess, err := h.sessionManager.GetSession(ctx, r)
	if err != nil {
		return nil
	}
	return sess
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

// frontendRedirectURL appends a query marker to the frontend URL. Markers
// are fixed strings; provider error details never travel to the frontend.
func (h *Handlers) frontendRedirectURL(marker string) string {
	frontend := strings.TrimRight(strings.TrimSpace(h.config.FrontendURL), "/")
	return frontend + "?" + marker
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}
