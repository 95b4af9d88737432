// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/permitdesk/internal/admin"
	"github.com/carterperez-dev/permitdesk/internal/auth"
	"github.com/carterperez-dev/permitdesk/internal/config"
	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/dashboard"
	"github.com/carterperez-dev/permitdesk/internal/document"
	"github.com/carterperez-dev/permitdesk/internal/entity"
	"github.com/carterperez-dev/permitdesk/internal/health"
	"github.com/carterperez-dev/permitdesk/internal/invoice"
	"github.com/carterperez-dev/permitdesk/internal/metrics"
	"github.com/carterperez-dev/permitdesk/internal/middleware"
	"github.com/carterperez-dev/permitdesk/internal/notification"
	"github.com/carterperez-dev/permitdesk/internal/permit"
	"github.com/carterperez-dev/permitdesk/internal/profile"
	"github.com/carterperez-dev/permitdesk/internal/server"
	"github.com/carterperez-dev/permitdesk/internal/storage"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("genkeys", false, "generate the ES256 signing key pair and exit")
	flag.Parse()

	var err error
	if *genKeys {
		err = generateKeys(*configPath)
	} else {
		err = run(*configPath)
	}

	if err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func generateKeys(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
		return err
	}

	slog.Info("signing keys written",
		"private_key", cfg.JWT.PrivateKeyPath,
		"public_key", cfg.JWT.PublicKeyPath,
	)
	return nil
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, error) {
	switch cfg.Driver {
	case "s3":
		return storage.NewS3Store(ctx, cfg)
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	store, err := newObjectStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("object store ready",
		"driver", cfg.Storage.Driver,
		"bucket", cfg.Storage.Bucket,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	profileRepo := profile.NewRepository(db.DB)
	profileSvc := profile.NewService(profileRepo, logger)
	profileHandler := profile.NewHandler(profileSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, profileSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	notificationSvc := notification.NewService(notification.NewRepository(db.DB), logger)
	notificationHandler := notification.NewHandler(notificationSvc)

	entitySvc := entity.NewService(entity.NewRepository(db.DB), logger)
	entityHandler := entity.NewHandler(entitySvc)

	// The document service checks parents through the permit repository,
	// and the permit service links drafts through the document service.
	permitRepo := permit.NewRepository(db.DB)

	documentSvc := document.NewService(
		document.NewRepository(db.DB),
		store,
		permit.NewParentAccess(permitRepo),
		cfg.Documents,
		logger,
	)
	documentHandler := document.NewHandler(documentSvc, cfg.Documents.MaxUploadBytes)

	permitSvc := permit.NewService(permitRepo, entitySvc, documentSvc, notificationSvc, logger)
	permitHandler := permit.NewHandler(permitSvc)

	invoiceSvc := invoice.NewService(invoice.NewRepository(db.DB), notificationSvc, logger)
	invoiceHandler := invoice.NewHandler(invoiceSvc)

	dashboardSvc := dashboard.NewService(
		permitSvc,
		invoiceSvc,
		notificationSvc,
		cfg.Dashboard,
		logger,
	)
	dashboardHandler := dashboard.NewHandler(dashboardSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{Name: "storage", Checker: store},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		KPIs:       dashboardSvc,
		Users:      profileSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		StorePing:  store.Ping,
		Logger:     logger,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Handle("/metrics", metrics.Handler())
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager, authSvc)
	staffOnly := middleware.RequireStaff
	adminOnly := middleware.RequireAdmin
	uploadLimiter := middleware.UserTypeRateLimiter(
		redis.Client,
		middleware.DefaultUserTypeLimits,
	)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		profileHandler.RegisterRoutes(r, authenticator)
		profileHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		entityHandler.RegisterRoutes(r, authenticator)
		entityHandler.RegisterAdminRoutes(r, authenticator, staffOnly)

		documentHandler.RegisterRoutes(r, authenticator, uploadLimiter)
		permitHandler.RegisterRoutes(r, authenticator, staffOnly)

		invoiceHandler.RegisterRoutes(r, authenticator)
		invoiceHandler.RegisterAdminRoutes(r, authenticator, staffOnly)

		notificationHandler.RegisterRoutes(r, authenticator)
		dashboardHandler.RegisterRoutes(r, authenticator)

		adminHandler.RegisterRoutes(r, authenticator, staffOnly, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
