package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/venkatchiranjeevireddy/auricare-V2/internal/appointments"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/auth"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/chatbot"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/gateway"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/progress"
	"github.com/venkatchiranjeevireddy/auricare-V2/internal/schedules"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/config"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/database"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/interfaces"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/monitoring"
)

const serviceName = "auricare-portal"

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.WithField("version", version).Info("Starting portal service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Observability
	metrics := monitoring.NewMetricsCollector(serviceName)
	tracing, err := monitoring.NewTracingManager(ctx, &monitoring.TracingConfig{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: version,
		Endpoint:       cfg.Tracing.Endpoint,
		Environment:    cfg.Tracing.Environment,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize tracing")
	}
	health := monitoring.NewHealthManager(serviceName, version)

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	db.SetQueryRecorder(metrics)

	if err := db.CreateSchema(ctx); err != nil {
		log.WithError(err).Fatal("Failed to create database schema")
	}
	health.RegisterChecker("database", monitoring.NewDatabaseHealthChecker(db.DB))

	// Session store
	sessions, closeSessions := newSessionStore(cfg, log)
	defer closeSessions()
	health.RegisterChecker("session_store", monitoring.NewPingHealthChecker(cfg.Session.Store, sessions.Ping))

	// Repositories
	users := auth.NewUserRepository(db)
	doctors := auth.NewDoctorRepository(db)

	// Services
	authService := auth.NewService(&cfg.JWT, users, doctors, sessions, metrics, log)
	authMiddleware := auth.NewMiddleware(authService, log)
	appointmentService := appointments.NewService(&cfg.Server, appointments.NewRepository(db), doctors, metrics, log)
	scheduleService := schedules.NewService(schedules.NewRepository(db), appointmentService, log)
	progressService := progress.NewService(progress.NewRepository(db), appointmentService, log)
	chatbotService := chatbot.NewService(newAssistant(cfg, log), metrics, log)

	// Rate limiting
	var rateLimiter interfaces.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter := gateway.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize)
		limiter.StartCleanup(time.Duration(cfg.RateLimit.CleanupInterval) * time.Second)
		defer limiter.Stop()
		rateLimiter = limiter
	}

	server := gateway.NewService(cfg, &gateway.Dependencies{
		AuthMiddleware: authMiddleware,
		Auth:           auth.NewHandler(authService, authMiddleware, log),
		Appointments:   appointments.NewHandler(appointmentService, authMiddleware, log),
		Schedules:      schedules.NewHandler(scheduleService, authMiddleware, log),
		Progress:       progress.NewHandler(progressService, authMiddleware, log),
		Chatbot:        chatbot.NewHandler(chatbotService, log),
		Health:         health,
		Metrics:        metrics,
		Tracing:        tracing,
		RateLimiter:    rateLimiter,
	}, log)

	// Start the server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal or a server failure
	select {
	case <-ctx.Done():
		log.Info("Shutting down portal service...")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("Server stopped unexpectedly")
		}
	}

	// Graceful shutdown
	if err := server.Stop(context.Background()); err != nil {
		log.WithError(err).Error("Failed to shutdown server gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to flush traces")
	}

	log.Info("Portal service stopped")
}

// newSessionStore selects the session store named in the configuration
func newSessionStore(cfg *config.Config, log *logger.Logger) (interfaces.SessionStore, func()) {
	if cfg.Session.Store == config.SessionStoreMemory {
		log.Warn("Using in-memory session store; sessions are lost on restart")
		store := auth.NewMemorySessionStore()
		return store, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	log.WithField("addr", cfg.Redis.Addr()).Info("Using Redis session store")

	return auth.NewRedisSessionStore(client, cfg.Session.KeyPrefix), func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Redis client")
		}
	}
}

// newAssistant returns the LLM assistant when one is configured
func newAssistant(cfg *config.Config, log *logger.Logger) interfaces.Assistant {
	if cfg.Chatbot.Provider != config.ChatbotProviderOpenAI {
		log.Info("Chatbot using scripted replies")
		return nil
	}
	log.WithField("model", cfg.Chatbot.Model).Info("Chatbot using OpenAI assistant")
	return chatbot.NewOpenAIAssistant(&cfg.Chatbot)
}
