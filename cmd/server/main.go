package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/taskly/dashboard/internal/config"
	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/database"
	"github.com/taskly/dashboard/internal/fixtures"
	"github.com/taskly/dashboard/internal/handlers"
	"github.com/taskly/dashboard/internal/logger"
	"github.com/taskly/dashboard/internal/middleware"
	"github.com/taskly/dashboard/internal/models"
	"github.com/taskly/dashboard/internal/progress"
	"github.com/taskly/dashboard/internal/queue"
	"github.com/taskly/dashboard/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(telemetry.DefaultServiceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("task_source", cfg.TaskSource),
		zap.String("locale", cfg.Locale),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(ctx, telemetry.Settings{
				ServiceName:    telemetry.DefaultServiceName,
				ServiceVersion: version,
				Endpoint:       cfg.OTELEndpoint,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracingEnabled = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	labeler, err := progress.NewLabeler(cfg.Locale)
	if err != nil {
		zapLogger.Fatal("invalid_locale", zap.String("locale", cfg.Locale), zap.Error(err))
	}
	health := handlers.NewHealthChecker()
	var taskOptions []handlers.TaskHandlerOption

	var (
		seed     []models.Task
		projects database.ProjectRepositoryInterface
	)
	switch cfg.TaskSource {
	case config.TaskSourcePostgres:
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		if err := db.Migrate(); err != nil {
			zapLogger.Fatal("failed_to_run_migrations", zap.Error(err))
		}
		zapLogger.Info("connected_to_database")

		repo := database.NewTaskRepository(db)
		seed, err = repo.List(ctx)
		if err != nil {
			zapLogger.Fatal("failed_to_load_tasks", zap.Error(err))
		}
		health.AddCheck("database", db.HealthCheck)
		taskOptions = append(taskOptions, handlers.WithTaskRepository(repo))
		projects = database.NewProjectRepository(db)
	default:
		seed, err = fixtures.LoadFile(cfg.FixtureFile)
		if err != nil {
			zapLogger.Fatal("failed_to_load_fixtures",
				zap.String("file", logger.SanitizePath(cfg.FixtureFile)),
				zap.Error(err),
			)
		}
	}
	zapLogger.Info("tasks_loaded", zap.Int("count", len(seed)))

	store := dashboard.NewStore(progress.NewAggregator(progress.WithLabeler(labeler)), seed)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = middleware.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		health.AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
		zapLogger.Info("connected_to_redis")
	}

	if cfg.RabbitMQURL != "" {
		eventQueue := connectRabbitMQ(ctx, cfg.RabbitMQURL, zapLogger)
		defer func() {
			if err := eventQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		health.AddCheck("rabbitmq", eventQueue.HealthCheck)
		taskOptions = append(taskOptions, handlers.WithEventPublisher(eventQueue))

		consumer := queue.NewConsumer(eventQueue, store, zapLogger, cfg.RabbitMQPrefetch)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("task_event_consumer_stopped", zap.Error(err))
			}
		}()
	}

	proxyTrust, err := cfg.ProxyTrust()
	if err != nil {
		zapLogger.Fatal("invalid_trusted_proxies", zap.Error(err))
	}
	rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimit, proxyTrust)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	r := handlers.NewRouter(handlers.RouterConfig{
		Store:         store,
		Logger:        zapLogger,
		Health:        health,
		TaskOptions:   taskOptions,
		Projects:      projects,
		APIMiddleware: []mux.MiddlewareFunc{rateLimitMW},
		Version:       version,
	})

	// Registered first runs outermost
	if tracingEnabled {
		r.Use(otelmux.Middleware(telemetry.DefaultServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// mux middleware only runs on matched routes, so CORS wraps the router
	// to answer preflight requests
	handler := middleware.CORS(cfg.AllowedOrigins(), zapLogger)(r)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        handler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   35 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	zapLogger.Info("server_exited")
}

// connectRabbitMQ dials with exponential backoff so the server tolerates a
// broker that is still starting
func connectRabbitMQ(ctx context.Context, url string, zapLogger *zap.Logger) *queue.RabbitMQQueue {
	const (
		maxRetries   = 10
		initialDelay = 2 * time.Second
		maxDelay     = 30 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
		}
		lastErr = err

		delay := min(initialDelay*time.Duration(1<<uint(attempt)), maxDelay)
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			zapLogger.Fatal("rabbitmq_connect_cancelled", zap.Error(ctx.Err()))
		case <-time.After(delay):
		}
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(fmt.Errorf("last attempt: %w", lastErr)),
	)
	return nil
}
