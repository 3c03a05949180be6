package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/service"
	"shareit/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}
	limits := initRateLimits(redisClient, logger)

	bus := events.NewEventBus()

	if cfg.Exports.Enabled {
		exporter := worker.NewExportWorker(db, cfg.Exports.Path, worker.RetryPolicy{}, logger)
		subscribeExporter(ctx, bus, exporter)
		go exporter.Start(ctx)
	}

	userService := service.NewUserService(db, logger)
	itemService := service.NewItemService(db, bus, logger)
	bookingService := service.NewBookingService(db, bus, logger)
	requestService := service.NewRequestService(db, logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(cfg.Monitoring.PrometheusPort, logger)
	}

	server := api.NewHTTPServer(*cfg, userService, itemService, bookingService, requestService, limits, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSec)*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// initRedis подключается к Redis; при недоступности сервис продолжает
// работать на резервном лимитере в памяти
func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *goredis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, rate limits fall back to memory")
	}
	return client
}

func initRateLimits(redisClient *goredis.Client, logger *zerolog.Logger) domain.RateLimitRepository {
	memory := repository.NewMemoryRateLimitRepository()
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisRateLimitRepository(redisClient)
	return repository.NewFailoverRateLimitRepository(primary, memory, logger)
}

// subscribeExporter перезаписывает xlsx-снапшот после каждого события,
// меняющего список бронирований
func subscribeExporter(ctx context.Context, bus *events.EventBus, exporter domain.ExportWorker) {
	handler := func(event *events.Event) error {
		return exporter.EnqueueExport(ctx)
	}
	bus.Subscribe(events.EventBookingCreated, handler)
	bus.Subscribe(events.EventBookingApproved, handler)
	bus.Subscribe(events.EventBookingRejected, handler)
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics server listening")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
