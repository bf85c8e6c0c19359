// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/leafcare/internal/admin"
	"github.com/carterperez-dev/leafcare/internal/auth"
	"github.com/carterperez-dev/leafcare/internal/catalog"
	"github.com/carterperez-dev/leafcare/internal/config"
	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/health"
	"github.com/carterperez-dev/leafcare/internal/inference"
	"github.com/carterperez-dev/leafcare/internal/middleware"
	"github.com/carterperez-dev/leafcare/internal/order"
	"github.com/carterperez-dev/leafcare/internal/prediction"
	"github.com/carterperez-dev/leafcare/internal/server"
	"github.com/carterperez-dev/leafcare/internal/session"
	"github.com/carterperez-dev/leafcare/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.Bool(
		"generate-keys",
		false,
		"write a fresh ES256 key pair to the configured paths and exit",
	)
	flag.Parse()

	if err := run(*configPath, *generateKeys); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, generateKeys bool) error {
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

	if generateKeys {
		if err := auth.GenerateKeyPair(
			cfg.JWT.PrivateKeyPath,
			cfg.JWT.PublicKeyPath,
		); err != nil {
			return err
		}
		logger.Info("key pair written",
			"private_key", cfg.JWT.PrivateKeyPath,
			"public_key", cfg.JWT.PublicKeyPath,
		)
		return nil
	}

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

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	sessions := session.NewRedisStore(redis.Client, cfg.Session.TTL)

	userSvc := user.NewService(
		user.NewRepository(db.DB, user.Users),
		sessions,
		user.Users,
	)
	adminSvc := user.NewService(
		user.NewRepository(db.DB, user.Admins),
		sessions,
		user.Admins,
	)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(userSvc, adminSvc, jwtManager, sessions)
	authHandler := auth.NewHandler(authSvc)

	images, err := catalog.NewImageStore(
		cfg.Storage.UploadDir,
		cfg.Storage.MaxUploadBytes,
	)
	if err != nil {
		return err
	}
	catalogSvc := catalog.NewService(
		catalog.NewRepository(db.DB),
		images,
		logger,
	)
	catalogHandler := catalog.NewHandler(catalogSvc, cfg.Storage.MaxUploadBytes)

	orderSvc := order.NewService(order.NewStore(db.DB), cfg.Cart.PricePolicy)
	orderHandler := order.NewHandler(orderSvc)

	classifier, err := inference.NewTFServingClassifier(cfg.Inference)
	if err != nil {
		return err
	}
	if !classifier.Configured() {
		logger.Warn("no inference endpoint configured, predictions will fail")
	}

	predictionSvc := prediction.NewService(
		prediction.NewRepository(db.DB),
		classifier,
		logger,
	)
	predictionHandler := prediction.NewHandler(
		predictionSvc,
		cfg.Storage.MaxUploadBytes,
	)

	healthHandler := health.NewHandler(
		health.Check{Name: "database", Checker: db, Critical: true},
		health.Check{Name: "redis", Checker: redis, Critical: true},
		health.Check{Name: "model", Checker: classifier},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Counters: admin.Counters{
			Users:       userSvc.Count,
			Supplements: catalogSvc.Count,
			Orders:      orderSvc.CountOrders,
			Predictions: predictionSvc.Count,
		},
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())
	router.Handle(catalog.UploadsPrefix+"*", images.Handler())

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)
	userOnly := middleware.RequireUser
	adminOnly := middleware.RequireAdmin

	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.LoginRequests,
			cfg.RateLimit.LoginBurst,
		),
		KeyFunc:  middleware.KeyByLoginIP,
		FailOpen: true,
	}).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginLimiter)
		catalogHandler.RegisterRoutes(r, authenticator, userOnly)
		orderHandler.RegisterRoutes(r, authenticator, userOnly)
		predictionHandler.RegisterRoutes(r, optionalAuth)

		authHandler.RegisterAdminRoutes(r, authenticator, loginLimiter)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		catalogHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		orderHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		predictionHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
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
