package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/coop-scheduler/internal/api/http"
	"github.com/spec-kit/coop-scheduler/internal/api/http/handlers"
	"github.com/spec-kit/coop-scheduler/internal/auth"
	"github.com/spec-kit/coop-scheduler/internal/config"
	"github.com/spec-kit/coop-scheduler/internal/events"
	"github.com/spec-kit/coop-scheduler/internal/observability"
	"github.com/spec-kit/coop-scheduler/internal/persistence"
	"github.com/spec-kit/coop-scheduler/internal/repository"
	"github.com/spec-kit/coop-scheduler/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := persistence.OpenUserStore(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open user store", zap.Error(err))
	}
	defer store.Close()

	deps := []handlers.Dependency{{Name: store.Name, Pinger: store}}

	var revocations auth.RevocationStore
	if cfg.Auth.RevocationEnabled {
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		revocations = repository.NewRedisRevocationStore(redis.Client)
		deps = append(deps, handlers.Dependency{Name: "redis", Pinger: redis})
	} else {
		logger.Warn("refresh token revocation disabled; logout only clears the client cookie")
	}

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL(),
		RefreshTTL:    cfg.Auth.RefreshTTL(),
		Issuer:        cfg.App.Name,
	})
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    store.Users,
		Tokens:      tokens,
		Revocations: revocations,
		Events:      dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	userService := service.NewUserService(store.Users)

	app := httptransport.NewApp(httptransport.ServerConfig{
		Name:           cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps...),
		Auth:           handlers.NewAuthHandler(authService, handlers.NewRefreshCookie(cfg.App.IsProduction(), tokens.RefreshTTL())),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, logger),
		Metrics:        metrics,
		LoginLimiter:   httptransport.LoginRateLimit(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("db_type", store.Name))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
