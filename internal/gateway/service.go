package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/appointments"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/chatbot"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/progress"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/respond"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/schedules"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/config"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/monitoring"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Dependencies are the feature handlers and shared infrastructure the
// gateway mounts
type Dependencies struct {
	AuthMiddleware *auth.Middleware
	Auth           *auth.Handler
	Appointments   *appointments.Handler
	Schedules      *schedules.Handler
	Progress       *progress.Handler
	Chatbot        *chatbot.Handler

	Health      *monitoring.HealthManager
	Metrics     *monitoring.MetricsCollector
	Tracing     *monitoring.TracingManager
	RateLimiter interfaces.RateLimiter
}

// Service serves the portal API
type Service struct {
	config      *config.Config
	router      *mux.Router
	server      *http.Server
	rateLimiter interfaces.RateLimiter
	metrics     *monitoring.MetricsCollector
	httpMonitor *monitoring.MonitoringMiddleware
	logger      *logger.Logger
}

// NewService assembles the router and HTTP server
func NewService(cfg *config.Config, deps *Dependencies, log *logger.Logger) *Service {
	s := &Service{
		config:      cfg,
		router:      mux.NewRouter(),
		rateLimiter: deps.RateLimiter,
		metrics:     deps.Metrics,
		logger:      log,
	}

	s.setupMiddleware(deps)
	s.setupRoutes(deps)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	return s
}

// Handler returns the root handler. CORS and security headers wrap the
// router so preflight requests and unmatched routes get them too.
func (s *Service) Handler() http.Handler {
	return s.corsMiddleware(s.securityHeadersMiddleware(s.router))
}

// Start starts the HTTP server and blocks until it stops
func (s *Service) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting portal API")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and stops the server
func (s *Service) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s.logger.Info("Stopping portal API")
	return s.server.Shutdown(ctx)
}

// setupRoutes sets up the routing
func (s *Service) setupRoutes(deps *Dependencies) {
	// Health check and metrics endpoints
	if deps.Health != nil {
		s.router.HandleFunc(s.config.Monitoring.HealthPath, deps.Health.HTTPHandler()).Methods(http.MethodGet)
	}
	if s.config.Monitoring.Enabled && deps.Metrics != nil {
		s.router.Handle(s.config.Monitoring.MetricsPath, deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api/v1").Subrouter()

	public := api.NewRoute().Subrouter()
	public.Use(s.rateLimitMiddleware)

	protected := api.NewRoute().Subrouter()
	protected.Use(deps.AuthMiddleware.Authenticate, s.rateLimitMiddleware)

	deps.Auth.RegisterRoutes(public, protected)
	deps.Appointments.RegisterRoutes(protected)
	deps.Schedules.RegisterRoutes(protected)
	deps.Progress.RegisterRoutes(protected)
	deps.Chatbot.RegisterRoutes(protected)

	// Router middleware only runs for matched routes
	s.router.NotFoundHandler = s.monitor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, s.logger, types.NewNotFoundError(types.ErrCodeNotFound, "Route not found"))
	}))
	s.router.MethodNotAllowedHandler = s.monitor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, s.logger, &types.PortalError{
			Type:    types.ErrorTypeMethodNotAllowed,
			Code:    types.ErrCodeMethodNotAllowed,
			Message: "Method not allowed",
		})
	}))
}

// setupMiddleware sets up middleware
func (s *Service) setupMiddleware(deps *Dependencies) {
	if deps.Metrics != nil && deps.Tracing != nil {
		s.httpMonitor = monitoring.NewMonitoringMiddleware(deps.Metrics, deps.Tracing, s.logger)
		s.router.Use(s.httpMonitor.HTTPMiddleware)
	}
}

func (s *Service) monitor(h http.Handler) http.Handler {
	if s.httpMonitor == nil {
		return h
	}
	return s.httpMonitor.HTTPMiddleware(h)
}
