package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/account-service/internal/api/http"
	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/cache"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/persistence"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/repository/memory"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	if cfg.Redis.Enabled {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
	} else {
		logger.Info("redis disabled; suite lookups go straight to the repository")
	}

	durable := pg.PoolHandle() != nil
	var (
		accountRepo repository.AccountRepository
		sessionRepo repository.SessionRepository
		suiteRepo   repository.SuiteRepository
	)
	if durable {
		pool := pg.PoolHandle()
		accountRepo = repository.NewAccountRepository(pool)
		sessionRepo = repository.NewSessionRepository(pool)
		suiteRepo = repository.NewSuiteRepository(pool)
	} else {
		logger.Warn("running on in-memory repositories; data is lost on restart")
		accounts := memory.NewAccountStore()
		accountRepo = accounts
		sessionRepo = accounts
		suiteRepo = memory.NewSuiteStore()
		if redis != nil {
			logger.Info("suite cache disabled for in-memory registry")
		}
	}

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init hasher", zap.Error(err))
	}
	tokens, err := auth.NewTokenManager(&cfg.Auth)
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	suiteService, err := service.NewSuiteService(service.SuiteDependencies{
		SuiteRepo:   suiteRepo,
		AccountRepo: accountRepo,
		Cache:       cache.ForRegistry(redis.Handle(), cfg.Redis.SuiteCacheTTL(), durable),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to init suite service", zap.Error(err))
	}

	accountService, err := service.NewAccountService(&cfg.Auth, service.AccountDependencies{
		AccountRepo: accountRepo,
		SessionRepo: sessionRepo,
		Suites:      suiteService,
		Hasher:      hasher,
		Tokens:      tokens,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to init account service", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	validate := validator.New()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Accounts:       handlers.NewAccountsHandler(accountService, validate),
		Suites:         handlers.NewSuitesHandler(accountService, suiteService, validate),
		AuthMiddleware: auth.NewAuthMiddleware(accountService),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
