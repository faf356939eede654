package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/api/openapi"
	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/config"
	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/handlers"
	"github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/middleware"
	"github.com/benvon/toolhub/internal/queue"
	"github.com/benvon/toolhub/internal/services/ai"
	"github.com/benvon/toolhub/internal/services/dashboard"
	"github.com/benvon/toolhub/internal/services/oidc"
	"github.com/benvon/toolhub/internal/telemetry"
)

const serviceName = "toolhub-api"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including LLM request previews")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.Bool("ai_enabled", cfg.AIEnabled()),
		zap.Bool("events_enabled", cfg.EventsEnabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx := context.Background()

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, serviceName, cfg.OTELEndpoint, version)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database", zap.String("driver", db.Dialect()))

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
		}
		zapLogger.Info("database_migrated")
	}

	tools, err := catalog.FromPath(cfg.CatalogPath)
	if err != nil {
		zapLogger.Fatal("failed_to_load_catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}
	zapLogger.Info("catalog_loaded",
		zap.Int("tools", tools.Len()),
		zap.Int("categories", len(tools.Categories())),
		zap.Int("preference_options", len(tools.Options())),
	)

	// Redis is optional; without it rate limits are tracked per process.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	} else {
		zapLogger.Warn("redis_not_configured_using_in_memory_rate_limits")
	}
	rateLimitStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}

	var eventQueue *queue.RabbitMQQueue
	if cfg.EventsEnabled() {
		eventQueue, err = queue.Connect(ctx, cfg.RabbitMQURL, queue.DefaultConnectAttempts, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := eventQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
	}

	// Repositories
	userRepo := database.NewUserRepository(db)
	prefsRepo := database.NewPreferencesRepository(db)
	recentRepo := database.NewRecentToolRepository(db)
	usageRepo := database.NewToolUsageRepository(db)
	oidcConfigRepo := database.NewOIDCConfigRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Services
	httpClient := &http.Client{Timeout: 10 * time.Second}
	oidcProvider := oidc.NewProvider(oidcConfigRepo, httpClient)
	jwksManager := oidc.NewJWKSManager(httpClient)
	authenticator := oidc.NewAuthenticator(oidcProvider, cfg.OIDCProvider, jwksManager)

	var opts []dashboard.Option
	if eventQueue != nil {
		opts = append(opts, dashboard.WithPublisher(eventQueue))
	}
	if cfg.AIEnabled() {
		opts = append(opts, dashboard.WithSuggester(
			ai.NewOpenAIProvider(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode),
		))
		zapLogger.Info("preference_suggestions_enabled", zap.String("ai_model", cfg.AIModel))
	}
	svc := dashboard.NewService(userRepo, prefsRepo, recentRepo, usageRepo, tools, zapLogger, opts...)

	// Handlers
	healthChecker := handlers.NewHealthChecker(version)
	healthChecker.AddCheck("database", db.PingContext)
	if redisClient != nil {
		healthChecker.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if eventQueue != nil {
		healthChecker.AddCheck("rabbitmq", eventQueue.HealthCheck)
	}
	authHandler := handlers.NewAuthHandler(oidcProvider, cfg.OIDCProvider, svc, zapLogger)
	toolsHandler := handlers.NewToolsHandler(svc, zapLogger)
	preferencesHandler := handlers.NewPreferencesHandler(svc, zapLogger)
	recentHandler := handlers.NewRecentToolsHandler(svc, zapLogger)
	dashboardHandler := handlers.NewDashboardHandler(svc, zapLogger)

	r := mux.NewRouter()

	// In gorilla/mux, middleware registered first is the outermost wrapper.
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.RequestID)
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, time.Minute)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Rate limiting is applied per subrouter; health checks are exempt.
	rateLimitReloader := middleware.NewRateLimitReloader(rateLimitStore, ratelimitConfigRepo, cfg.RateLimitDefault, zapLogger, time.Minute)
	rateLimitMW := rateLimitReloader.Middleware()
	authMW := middleware.Auth(authenticator, zapLogger)

	healthChecker.RegisterRoutes(r)
	handlers.NewOpenAPIHandler(openapi.Spec).RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	publicAuthRouter := authRouter.PathPrefix("").Subrouter()
	publicAuthRouter.Use(rateLimitMW)
	authHandler.RegisterPublicRoutes(publicAuthRouter)
	protectedAuthRouter := authRouter.PathPrefix("").Subrouter()
	protectedAuthRouter.Use(authMW)
	protectedAuthRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(protectedAuthRouter)

	publicRouter := apiRouter.PathPrefix("").Subrouter()
	publicRouter.Use(rateLimitMW)
	toolsHandler.RegisterRoutes(publicRouter)

	protectedRouter := apiRouter.PathPrefix("").Subrouter()
	protectedRouter.Use(authMW)
	protectedRouter.Use(rateLimitMW)
	preferencesHandler.RegisterRoutes(protectedRouter)
	recentHandler.RegisterRoutes(protectedRouter)
	dashboardHandler.RegisterRoutes(protectedRouter)

	// Preflight requests are answered by the CORS middleware; this only gives
	// them a route to match.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("server_exited")
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
