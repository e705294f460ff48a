package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/lifeos/lifeos-api/internal/config"
	"github.com/lifeos/lifeos-api/internal/handlers"
	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/logger"
	"github.com/lifeos/lifeos-api/internal/middleware"
	"github.com/lifeos/lifeos-api/internal/queue"
	"github.com/lifeos/lifeos-api/internal/services/ai"
	"github.com/lifeos/lifeos-api/internal/services/journal"
	"github.com/lifeos/lifeos-api/internal/store"
	"github.com/lifeos/lifeos-api/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "lifeos-api"

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to the persistence backend
	kvStore, err := newKVStore(cfg)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_store", zap.Error(err))
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			zapLogger.Warn("failed_to_close_store_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_store", zap.String("backend", cfg.StorageBackend))

	// Connect to RabbitMQ for the celebration queue. The queue is optional:
	// without it, goal completions simply produce no notifications.
	// Retry connection with exponential backoff to handle RabbitMQ startup delays.
	var jobQueue queue.JobQueue
	if cfg.RabbitMQURL != "" {
		jobQueue = connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		if jobQueue != nil {
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
		}
	} else {
		zapLogger.Info("rabbitmq_not_configured_celebrations_disabled")
	}

	var notifier store.Notifier = store.NopNotifier{}
	if jobQueue != nil {
		notifier = queue.NewCelebrationNotifier(jobQueue, zapLogger)
	}

	// Initialize the AI provider. Without a key, all generated content
	// comes from the deterministic offline provider.
	var aiProvider ai.Provider
	if cfg.OpenAIKey != "" {
		live := ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
		aiProvider = ai.NewResilientProvider(live, zapLogger)
		zapLogger.Info("initialized_ai_provider", zap.String("model", cfg.AIModel))
	} else {
		aiProvider = ai.NewFallbackProvider()
		zapLogger.Info("ai_key_not_configured_using_offline_content")
	}

	// Load every collection from the store
	session, err := store.NewSession(context.Background(), kvStore, aiProvider, notifier, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_load_session", zap.Error(err))
	}

	// Start the journal sync loop
	syncer := journal.NewSyncer(cfg.JournalFeedURL, cfg.JournalSyncInterval, zapLogger)
	syncCtx, syncCancel := context.WithCancel(context.Background())
	defer syncCancel()
	go syncer.Run(syncCtx)

	// Initialize handlers
	goalHandler := handlers.NewGoalHandler(session.Goals)
	templateHandler := handlers.NewTemplateHandler(session.Goals)
	habitHandler := handlers.NewHabitHandler(session.Habits)
	todoHandler := handlers.NewTodoHandler(session.Todos)
	weeklyHandler := handlers.NewWeeklyGoalHandler(session.WeeklyGoals)
	eventHandler := handlers.NewEventHandler(session.Events)
	journalHandler := handlers.NewJournalHandler(syncer)
	aiHandler := handlers.NewAIHandler(aiProvider, session, syncer, kvStore)
	healthChecker := handlers.NewHealthChecker(kvStore, jobQueue)

	// Setup router
	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Rate limit middleware, applied to the AI routes only
	rateLimitMW, err := middleware.RateLimit(redisClientOf(kvStore), cfg.RateLimitRate)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// API v1 routes (protected)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.Auth([]byte(cfg.AuthTokenSecret)))

	goalHandler.RegisterRoutes(apiRouter.PathPrefix("/goals").Subrouter())
	templateHandler.RegisterRoutes(apiRouter.PathPrefix("/templates").Subrouter())
	habitHandler.RegisterRoutes(apiRouter.PathPrefix("/habits").Subrouter())
	todoHandler.RegisterRoutes(apiRouter.PathPrefix("/todos").Subrouter())
	weeklyHandler.RegisterRoutes(apiRouter.PathPrefix("/weekly-goals").Subrouter())
	eventHandler.RegisterRoutes(apiRouter.PathPrefix("/events").Subrouter())
	journalHandler.RegisterRoutes(apiRouter.PathPrefix("/journal").Subrouter())

	aiRouter := apiRouter.PathPrefix("/ai").Subrouter()
	aiRouter.Use(rateLimitMW)
	aiHandler.RegisterRoutes(aiRouter)

	// Catch-all OPTIONS handler for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	syncCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info (sanitized for security)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		// Use standard log here since we don't have logger in this context
		// This is a fallback for a simple version endpoint
		_ = err
	}
}

// newKVStore opens the configured persistence backend
func newKVStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		return kv.NewPostgresStore(cfg.DatabaseURL)
	default:
		return kv.NewRedisStore(cfg.RedisURL)
	}
}

// redisClientOf extracts the Redis client when the store is Redis-backed,
// so the rate limiter can share the connection. Other backends fall back
// to the in-memory limiter store.
func redisClientOf(s kv.Store) *redis.Client {
	if rs, ok := s.(*kv.RedisStore); ok {
		return rs.Client()
	}
	return nil
}

// connectRabbitMQ dials the queue with exponential backoff. Returns nil
// when the queue stays unreachable, leaving celebrations disabled.
func connectRabbitMQ(url string, zapLogger *zap.Logger) queue.JobQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(url)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue
		}

		delay := initialDelay * time.Duration(1<<uint(attempt)) // Exponential backoff
		if delay > 30*time.Second {
			delay = 30 * time.Second // Cap at 30 seconds
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Error("failed_to_connect_to_rabbitmq_celebrations_disabled")
	return nil
}
