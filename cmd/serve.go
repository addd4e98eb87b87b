package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/handler"
	"paydocs-server/internal/ledger"
	"paydocs-server/internal/metrics"
	"paydocs-server/internal/model"
	"paydocs-server/internal/notifier"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/repository"
	"paydocs-server/internal/security"
	"paydocs-server/internal/service"
	"paydocs-server/internal/tracing"
	"paydocs-server/internal/util"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/raulk/clock"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func serve(c *cli.Context) (err error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	logger, err := util.SetupLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, "paydocs-server")
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, shutdownTracing(context.Background()))
	}()

	stores, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, stores.Close())
	}()

	cache, closeCache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeCache())
	}()

	gateway, err := openLedger(cfg)
	if err != nil {
		return err
	}

	webhook, err := notifier.NewWebhookNotifier(&cfg.Webhook)
	if err != nil {
		return err
	}

	jwtService, err := security.NewJWTService(&cfg.JWT, cfg.TTL.PasskeyChallenge)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	meter, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("ошибка регистрации метрик: %w", err)
	}

	clk := clock.New()
	credentials := service.NewCredentialService(stores.identities, jwtService, stores.challenges, clk)
	authService := service.NewAuthenticationService(credentials, stores.identities, stores.jwt, jwtService, webhook, clk)
	userService := service.NewUserService(credentials, stores.identities, jwtService, stores.jwt, clk)
	paymentService := service.NewPaymentService(stores.payments, stores.documents, gateway, clk, service.PaymentOptionsFromConfig(&cfg.Ledger), meter)
	contentService := service.NewContentService(stores.blobs, stores.capabilities, clk)
	coordinator := service.NewAccessCoordinator(stores.documents, stores.grants, paymentService, contentService, stores.capabilities, clk, cfg.TTL.Capability, meter)
	documentService := service.NewDocumentService(stores.documents, cache, stores.grants, stores.identities, contentService, paymentService, clk, cfg.Upload.MaxSizeMB<<20)

	if cfg.Admin.Username != "" {
		if err := credentials.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
			return fmt.Errorf("ошибка создания администратора: %w", err)
		}
	}

	srv, router := config.SetupServer(cfg.ServerAddr)
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, meter.Handler)

	auth := authMiddlewares{
		required: security.JWTMiddleware(jwtService, stores.jwt, cfg.Admin.AdminToken),
		optional: security.OptionalJWTMiddleware(jwtService, stores.jwt, cfg.Admin.AdminToken),
	}
	setupServiceRoutes(router, registry)
	setupAuthRoutes(router, handler.NewAuthenticationHandler(authService, jwtService), auth)
	setupUserRoutes(router, handler.NewUserHandler(userService), auth)
	setupDocumentRoutes(router,
		handler.NewDocumentHandler(documentService, cfg.Upload.MaxSizeMB<<20),
		handler.NewAccessHandler(coordinator, paymentService),
		auth)

	srv.Handler = otelhttp.NewHandler(router, "paydocs-server")

	return runServer(ctx, srv)
}

func migrate(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if _, err := util.SetupLogger(cfg.Logging.Level, cfg.Logging.Development); err != nil {
		return err
	}
	if cfg.Storage.Driver != "postgres" {
		return fmt.Errorf("миграции нужны только для storage.driver=postgres, текущий: %s", cfg.Storage.Driver)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к БД: %w", err)
	}
	defer db.Close()

	if err := repository.Migrate(c.Context, db); err != nil {
		return err
	}
	zap.S().Infow("миграции применены")
	return nil
}

func openCache(cfg *config.AppConfig) (ports.CacheRepository, func() error, error) {
	if !cfg.RedisConfig.Enabled {
		return repository.NoopCache{}, func() error { return nil }, nil
	}

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		return nil, nil, err
	}
	zap.S().Infow("кэш метаданных в Redis", "addr", cfg.RedisConfig.Addr)
	return repository.NewCacheRepository(redisClient, cfg.TTL.DocumentCache), redisClient.Close, nil
}

func openLedger(cfg *config.AppConfig) (ports.LedgerGateway, error) {
	if cfg.Ledger.Driver == "http" {
		zap.S().Infow("реестр платежей по HTTP", "endpoint", cfg.Ledger.Endpoint)
		return ledger.NewHTTPGateway(cfg.Ledger.Endpoint, cfg.Ledger.APIKey, cfg.Ledger.RequestTimeout), nil
	}

	balance, err := model.ParseAmount(cfg.Ledger.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("неверный ledger.initial_balance: %w", err)
	}
	zap.S().Warnw("используется реестр в памяти, балансы не сохраняются", "initial_balance", balance.String())
	return ledger.NewMemoryGateway(balance), nil
}

// runServer : сервер останавливается по отмене ctx (сигнал) или при ошибке ListenAndServe
func runServer(ctx context.Context, server *http.Server) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		zap.S().Infow("сервер запущен", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка работы сервера: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		zap.S().Infow("остановка сервера")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ошибка при остановке сервера: %w", err)
		}
		zap.S().Infow("сервер успешно остановлен")
		return nil
	})

	return group.Wait()
}
