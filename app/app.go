package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nexusapp/nexus/internal/cache"
	"github.com/nexusapp/nexus/internal/catalog"
	"github.com/nexusapp/nexus/internal/config"
	"github.com/nexusapp/nexus/internal/handlers"
	"github.com/nexusapp/nexus/internal/ledger"
	"github.com/nexusapp/nexus/internal/logging"
	"github.com/nexusapp/nexus/internal/observability"
	"github.com/nexusapp/nexus/internal/services"
	"github.com/nexusapp/nexus/internal/session"
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Registry       *prometheus.Registry
	Handlers       *handlers.Handlers

	logFile    *os.File
	sentryInit bool
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	sentryInit := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn: cfg.SentryDSN,
		}); err != nil {
			logger.Warn("failed to initialize sentry", "error", err)
		} else {
			sentryInit = true
		}
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	pools, err := loadPools(cfg)
	if err != nil {
		closeLogFile(logger, logFile)
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:      cfg.CacheProvider,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		closeLogFile(logger, logFile)
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	tokenCodec, err := session.NewTokenCodec(cfg.SessionSecret)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		closeLogFile(logger, logFile)
		return nil, fmt.Errorf("failed to initialize session token codec: %w", err)
	}

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:      cfg.SessionStoreProvider,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		closeLogFile(logger, logFile)
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessionManager := session.NewManager(sessionStore, tokenCodec, handlers.SecureCookiesFromConfig(cfg))

	ledgerStore := ledger.NewMemoryStore(cfg.StartingBalance)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	authService, err := services.NewAuthService(cfg, cacheProvider, logger.With("component", "auth_service"))
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		closeLogFile(logger, logFile)
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	shopService := services.NewShopService(*pools, ledgerStore, cfg.Location(), metrics, logger.With("component", "shop_service"))

	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		AuthService:    authService,
		ShopService:    shopService,
		LedgerStore:    ledgerStore,
		SessionManager: sessionManager,
		Logger:         logger,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		closeLogFile(logger, logFile)
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:         cfg,
		Logger:         logger,
		CacheProvider:  cacheProvider,
		SessionManager: sessionManager,
		Registry:       registry,
		Handlers:       h,
		logFile:        logFile,
		sentryInit:     sentryInit,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.sentryInit {
		sentry.Flush(2 * time.Second)
	}
	closeLogFile(a.Logger, a.logFile)
}

func loadPools(cfg *config.Config) (*catalog.Pools, error) {
	validator := catalog.NewValidator()

	if strings.TrimSpace(cfg.PetPoolsFile) == "" {
		pools := catalog.DefaultPools()
		if err := validator.Validate(&pools); err != nil {
			return nil, fmt.Errorf("invalid default pet pools: %w", err)
		}
		return &pools, nil
	}

	pools, err := catalog.NewParser().ParseFile(cfg.PetPoolsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pet pools: %w", err)
	}
	if err := validator.Validate(pools); err != nil {
		return nil, fmt.Errorf("invalid pet pools: %w", err)
	}
	return pools, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, *os.File, error) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		})
	}

	if strings.TrimSpace(cfg.LogFile) == "" {
		return slog.New(handler), nil, nil
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler = logging.MultiHandler(handler, slog.NewJSONHandler(logFile, opts))
	return slog.New(handler), logFile, nil
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}

func closeLogFile(logger *slog.Logger, logFile *os.File) {
	if logFile == nil {
		return
	}
	if err := logFile.Close(); err != nil && logger != nil {
		logger.Warn("failed to close log file", "error", err)
	}
}
