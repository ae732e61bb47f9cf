package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmentor/mentor-finder/config"
	"github.com/getmentor/mentor-finder/internal/handlers"
	"github.com/getmentor/mentor-finder/internal/mcp"
	"github.com/getmentor/mentor-finder/internal/middleware"
	"github.com/getmentor/mentor-finder/internal/services"
	"github.com/getmentor/mentor-finder/internal/tokenstore"
	"github.com/getmentor/mentor-finder/pkg/httpclient"
	"github.com/getmentor/mentor-finder/pkg/jwt"
	"github.com/getmentor/mentor-finder/pkg/logger"
	"github.com/getmentor/mentor-finder/pkg/mentorapi"
	"github.com/getmentor/mentor-finder/pkg/metrics"
	"github.com/getmentor/mentor-finder/pkg/profiling"
	"github.com/getmentor/mentor-finder/pkg/retry"
	"github.com/getmentor/mentor-finder/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// openTokenStore picks Redis when configured, process memory otherwise.
// The returned close func releases the connection.
func openTokenStore(ctx context.Context, cfg *config.Config) (tokenstore.Store, func(context.Context) error, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set, tokens are kept in process memory")
		return tokenstore.NewMemoryStore(), nil, func() {}, nil
	}

	client, err := tokenstore.NewRedisClient(ctx, cfg.Redis, retry.StartupConfig())
	if err != nil {
		return nil, nil, nil, err
	}
	store := tokenstore.NewRedisStore(client)

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.LogError(err, "Failed to close redis client")
		}
	}
	return store, store.Ping, closeFn, nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting mentor finder",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(shutdownCtx); shutdownErr != nil {
			logger.LogError(shutdownErr, "Failed to shutdown tracer")
		}
	}()

	stopProfiler, err := profiling.Start(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer stopProfiler()

	store, pingStore, closeStore, err := openTokenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize token store", zap.Error(err))
	}
	defer closeStore()

	// Remote mentor API
	mentorClient := mentorapi.NewClient(
		cfg.MentorAPI.BaseURL,
		cfg.MentorAPI.SearchPath,
		httpclient.NewClientWithTimeout(cfg.MentorAPITimeout()),
	)

	// Viewer tokens are verified only when a secret is configured
	var tokenManager *jwt.TokenManager
	if cfg.Auth.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	} else {
		logger.Warn("JWT_SECRET not set: bearer tokens are forwarded unverified and same-class marks are disabled")
	}

	// Initialize services
	mentorListService := services.NewMentorListService(cfg, mentorClient, store)
	defer mentorListService.Close()

	// Initialize handlers
	mentorListHandler := handlers.NewMentorListHandler(mentorListService)
	mcpHandler := handlers.NewMCPHandler(mcp.NewServer(mentorListService, cfg))
	healthHandler := handlers.NewHealthHandler(handlers.HealthDeps{
		BreakerState:      mentorClient.BreakerState,
		TokenStoreBackend: store.Backend(),
		PingTokenStore:    pingStore,
		ViewCount:         mentorListService.ViewCount,
	})

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters. A view sends an event per filter change, so the
	// limit is generous.
	generalRateLimiter := middleware.NewRateLimiter(ctx, 100, 200)
	mentorListRateLimiter := middleware.NewRateLimiter(ctx, 20, 40)

	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.BodySizeLimitMiddleware(middleware.DefaultMaxBodySize))
	v1.Use(mentorListRateLimiter.Middleware())
	v1.Use(middleware.ViewerMiddleware(tokenManager))
	mentorListHandler.RegisterRoutes(v1)
	v1.POST("/mcp", mcpHandler.HandleMCP)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.WaitTimeout() + 30*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Server forced to shutdown")
	}

	logger.Info("Server exited")
}
