package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexusapp/nexus/internal/config"
	"github.com/nexusapp/nexus/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers, registry *prometheus.Registry) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter(registry)

	// The frontend is served from a different origin and sends the session
	// cookie with every API call, so CORS must allow credentials for it.
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{cfg.FrontendURL}),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillahandlers.AllowCredentials(),
	)

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           cors(router),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter(registry *prometheus.Registry) *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.Use(h.SessionMiddleware)
	r.Use(h.MetricsContext)

	r.HandleFunc("/", h.Root).Methods("GET").Name("root")
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET").Name("metrics")
	}

	r.HandleFunc("/auth/login", h.Login).Methods("GET").Name("auth.login")
	r.HandleFunc("/auth/callback", h.Callback).Methods("GET").Name("auth.callback")

	// The rotation is public; logout succeeds whether or not a session exists.
	r.HandleFunc("/api/shop/pets", h.ShopPets).Methods("GET").Name("shop.pets")
	r.HandleFunc("/api/auth/logout", h.Logout).Methods("POST").Name("auth.logout")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.RequireSession)
	api.HandleFunc("/shop/buy", h.BuyPet).Methods("POST").Name("shop.buy")
	api.HandleFunc("/auth/me", h.Me).Methods("GET").Name("auth.me")

	// 404 handler - must be last
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return r
}
