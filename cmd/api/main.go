package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"customerbooking/internal/api"
	"customerbooking/internal/config"
	"customerbooking/internal/database"
	"customerbooking/internal/domain"
	"customerbooking/internal/events"
	"customerbooking/internal/google"
	"customerbooking/internal/logging"
	"customerbooking/internal/metrics"
	"customerbooking/internal/repository"
	"customerbooking/internal/service"
	"customerbooking/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	cache := initCache(cfg, redisClient, &logger)

	bus := events.NewEventBus()
	if cfg.Outbox.Enabled {
		startOutbox(ctx, cfg, db, redisClient, bus, &logger)
	}
	if cfg.Sheets.Enabled {
		startSheetsMirror(ctx, cfg, db, bus, &logger)
	}

	services := newServices(db, cache, bus, &logger)

	startMetrics(ctx, cfg, &logger)

	backups := database.NewBackupService(db, cfg.Backup, logging.Component(&logger, "backup"))
	go backups.Start(ctx)

	grpcServer, err := api.NewGRPCServer(cfg.API, db, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("create grpc server")
		return err
	}
	httpServer := api.NewHTTPServer(cfg.API, services, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}
	return db, nil
}

// initRedis returns nil when no address is configured. An unreachable server
// still yields a client: the failover cache and the outbox retry against it.
func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis unreachable at startup, serving from memory cache")
		return client
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

func initCache(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) domain.EntityCache {
	memory := repository.NewMemoryCache(cfg.Redis.CacheTTL)
	if client == nil {
		return memory
	}
	primary := repository.NewRedisCache(client, cfg.App.Name+":", cfg.Redis.CacheTTL)
	return repository.NewFailoverCache(primary, memory, logging.Component(logger, "cache"))
}

// newServices puts the read cache in front of customer and brand reads only.
// The booking lifecycle resolves references against the store itself.
func newServices(db *database.DB, cache domain.EntityCache, bus *events.EventBus, logger *zerolog.Logger) api.Services {
	customers := repository.NewCachedCustomers(db, cache, logging.Component(logger, "customer-cache"))
	brands := repository.NewCachedBrands(db, cache, logging.Component(logger, "brand-cache"))

	return api.Services{
		Customers: service.NewCustomerService(customers, db, service.SystemClock{}, logging.Component(logger, "customers")),
		Brands:    service.NewBrandService(brands, db, service.SystemClock{}, bus, logging.Component(logger, "brands")),
		Bookings:  service.NewBookingService(db, db, db, service.SystemClock{}, bus, logging.Component(logger, "bookings")),
		Store:     db,
	}
}

func startOutbox(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	client *redis.Client,
	bus *events.EventBus,
	logger *zerolog.Logger,
) {
	publisher := worker.NewRedisPublisher(client, cfg.Outbox.Channel, cfg.Outbox.DeadLetterKey)
	retry := worker.PolicyFrom(cfg.Outbox.MaxRetries, cfg.Outbox.InitialDelay, cfg.Outbox.MaxDelay)

	outbox := worker.NewOutboxWorker(db, publisher, retry, logging.Component(logger, "outbox")).
		WithPolling(cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
	bus.SubscribeAll(outbox.HandleEvent)

	go outbox.Start(ctx)
	logger.Info().Str("channel", cfg.Outbox.Channel).Msg("outbox worker started")
}

// startSheetsMirror is best effort: a spreadsheet that cannot be reached
// only disables the mirror.
func startSheetsMirror(ctx context.Context, cfg *config.Config, db *database.DB, bus *events.EventBus, logger *zerolog.Logger) {
	sheet, err := google.NewBookingSheet(ctx, cfg.Sheets)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sheet.TestConnection(initCtx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sheets")
		return
	}
	if err := sheet.EnsureHeader(initCtx); err != nil {
		logger.Warn().Err(err).Msg("write sheet header")
	}

	mirror := worker.NewSheetsWorker(db, sheet, worker.RetryPolicy{}, cfg.Sheets.QueueSize, logging.Component(logger, "sheets")).
		WithRefresh(cfg.Sheets.RefreshInterval)
	bus.SubscribeAll(mirror.HandleEvent)

	go mirror.Start(ctx)
	logger.Info().Str("sheet", cfg.Sheets.SheetName).Msg("google sheets connected")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if cfg.API.GRPC.Enabled {
		go grpcServer.WatchHealth(ctx)
		go func() {
			if err := grpcServer.ListenAndServe(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	if cfg.API.HTTP.Enabled {
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error().Err(err).Msg("http server stopped")
			}
		}()
	}

	logger.Info().
		Bool("http", cfg.API.HTTP.Enabled).Int("http_port", cfg.API.HTTP.Port).
		Bool("grpc", cfg.API.GRPC.Enabled).Int("grpc_port", cfg.API.GRPC.Port).
		Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.Shutdown(shutdownCtx)
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
