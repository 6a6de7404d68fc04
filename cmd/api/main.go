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

	"github.com/pos-nt/backend/internal/admin"
	"github.com/pos-nt/backend/internal/auth"
	"github.com/pos-nt/backend/internal/config"
	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/crm"
	"github.com/pos-nt/backend/internal/health"
	"github.com/pos-nt/backend/internal/jobs"
	"github.com/pos-nt/backend/internal/middleware"
	"github.com/pos-nt/backend/internal/notify"
	"github.com/pos-nt/backend/internal/plan"
	"github.com/pos-nt/backend/internal/product"
	"github.com/pos-nt/backend/internal/sale"
	"github.com/pos-nt/backend/internal/server"
	"github.com/pos-nt/backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
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

	if cfg.IsDevelopment() {
		if _, statErr := os.Stat(cfg.JWT.PrivateKeyPath); os.IsNotExist(statErr) {
			if genErr := auth.GenerateKeyPair(
				cfg.JWT.PrivateKeyPath,
				cfg.JWT.PublicKeyPath,
			); genErr != nil {
				return genErr
			}
			logger.Info("generated development signing keys",
				"private_key", cfg.JWT.PrivateKeyPath,
			)
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	policy := plan.NewPolicy(cfg.Plan)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, policy)
	userHandler := user.NewHandler(userSvc)

	blacklist := auth.NewBlacklist(redis.Client, cfg.Gate.BlacklistTTL)

	notifier := notify.NewNotifier(
		cfg.Notify,
		recipientSource{users: userSvc},
		logger,
	)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		userSvc,
		blacklist,
		notifier,
		cfg.JWT,
		logger,
	)
	authHandler := auth.NewHandler(
		authSvc,
		cfg.JWT.RefreshTokenExpire,
		cfg.IsProduction(),
	)

	productRepo := product.NewRepository(db.DB)
	productSvc := product.NewService(productRepo, notifier, logger)
	productHandler := product.NewHandler(productSvc)

	saleRepo := sale.NewRepository(db.DB)
	saleSvc := sale.NewService(saleRepo, productSvc, notifier, logger)
	saleHandler := sale.NewHandler(saleSvc)

	crmRepo := crm.NewRepository(db.DB)
	crmSvc := crm.NewService(crmRepo)
	crmHandler := crm.NewHandler(crmSvc)

	gate := middleware.NewGate(cfg.Gate, middleware.GateDeps{
		Verifier:  jwtManager,
		Issuer:    authSvc,
		Blacklist: blacklist,
		Users:     userSvc,
		Sales:     saleSvc,
		Redis:     redis.Client,
		Policy:    policy,
		Logger:    logger,
	})
	planGates := middleware.NewPlanGates(policy, productSvc, userSvc, logger)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:        db.Stats,
		RedisStats:     redis.PoolStats,
		DBPing:         db.Ping,
		RedisPing:      redis.Ping,
		Sweeper:        authSvc,
		Summaries:      saleSvc,
		TokenRetention: cfg.Gate.TokenRetention,
	})

	scheduler, err := jobs.NewScheduler(
		cfg.Notify.DailySummaryCron,
		cfg.Gate.TokenRetention,
		saleSvc,
		authSvc,
		logger,
	)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		ServerConfig: cfg.Server,
		Logger:       logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
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

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	planLimit := middleware.PlanRateLimiter(
		redis.Client,
		policy,
		middleware.DefaultPlanRates,
	)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, gate.RequireRoles())

		userHandler.RegisterRoutes(r, gate, planGates)
		productHandler.RegisterRoutes(r, gate, planGates)
		saleHandler.RegisterRoutes(r, gate, planLimit)
		crmHandler.RegisterRoutes(r, gate, planGates)
		adminHandler.RegisterRoutes(r, gate.RequireRoles("admin"))
	})

	scheduler.Start()

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

	healthHandler.SetShutdown(true)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	scheduler.Stop(shutdownCtx)

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

// recipientSource resolves notification recipients through the user service.
type recipientSource struct {
	users *user.Service
}

func (r recipientSource) EmailForUser(
	ctx context.Context,
	userID string,
) (string, error) {
	info, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return info.Email, nil
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
