// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apihandler "github.com/newthinker/cryptosignals/internal/api/handler/api"
	"github.com/newthinker/cryptosignals/internal/api/handler/web"
	"github.com/newthinker/cryptosignals/internal/api/middleware"
	"github.com/newthinker/cryptosignals/internal/api/response"
	"github.com/newthinker/cryptosignals/internal/detail"
	"github.com/newthinker/cryptosignals/internal/metrics"
	"github.com/newthinker/cryptosignals/internal/presenter"
	"github.com/newthinker/cryptosignals/internal/storage/history"
	"go.uber.org/zap"
)

// Server is the local web surface for the signal list
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	router     chi.Router
	web        *web.Handler
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	APIKey       string
	TemplatesDir string
	MetricsPath  string
}

// Dependencies holds the pipeline pieces the server exposes
type Dependencies struct {
	Presenter *presenter.Presenter
	Refresher apihandler.Refresher
	Detail    *detail.Router
	Inbox     apihandler.Opener
	History   history.Store
	Metrics   *metrics.Registry
	// Banner shows refresh notices and push modals on every page.
	Banner *web.Banner
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Presenter == nil || deps.Refresher == nil {
		return nil, fmt.Errorf("presenter and refresher are required")
	}

	webHandler, err := web.NewHandler(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("creating web handler: %w", err)
	}

	s := &Server{
		logger: logger,
		router: chi.NewRouter(),
		web:    webHandler,
		deps:   deps,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg)
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	r := s.router
	r.Use(chimw.Recoverer)
	r.Use(metrics.LoggingMiddleware(s.logger))
	if s.deps.Metrics != nil {
		r.Use(metrics.HTTPMiddleware(s.deps.Metrics))
	}

	// Web UI routes
	if s.deps.Banner != nil {
		s.web.SetBanner(s.deps.Banner)
	}
	s.web.SetRowSource(s.deps.Presenter)
	s.web.SetRefresher(s.deps.Refresher)
	if s.deps.Detail != nil {
		s.web.SetChartRenderer(s.deps.Detail)
	}
	if s.deps.History != nil {
		s.web.SetHistory(s.deps.History)
	}

	r.Get("/", s.web.Signals)
	r.Get("/detail", s.web.Detail)
	r.Get("/history", s.web.History)
	// Form targets: a browser form cannot send X-API-Key.
	r.Post("/refresh", s.web.Refresh)
	r.Post("/dismiss", s.web.Dismiss)

	// JSON API
	signals := apihandler.NewSignalsHandler(s.deps.Presenter, s.deps.Refresher)
	var recorder apihandler.NotificationRecorder
	if s.deps.Metrics != nil {
		recorder = s.deps.Metrics
	}
	var store apihandler.HistoryStore
	if s.deps.History != nil {
		store = s.deps.History
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))
		r.Get("/health", s.handleHealth)
		r.Get("/signals", signals.List)
		r.Post("/refresh", signals.Refresh)
		if s.deps.Inbox != nil {
			notifications := apihandler.NewNotificationsHandler(s.deps.Inbox, store, recorder)
			r.Post("/notifications", notifications.Deliver)
			r.Get("/notifications", notifications.List)
		}
	})

	if s.deps.Metrics != nil && cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, s.deps.Metrics.Handler())
	}
}

// Banner returns the message area used for refresh notices and push modals.
func (s *Server) Banner() *web.Banner {
	return s.web.Banner()
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rows":   s.deps.Presenter.RowCount(),
		"state":  s.deps.Refresher.State(),
	})
}
