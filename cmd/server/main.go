package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pharmafront/internal/cache"
	"pharmafront/internal/config"
	httpapi "pharmafront/internal/http"
	"pharmafront/internal/notify"
	"pharmafront/internal/service"
	"pharmafront/internal/store"
	"pharmafront/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alertStore, err := store.Open(cfg.AlertDBPath)
	if err != nil {
		logger.Fatal("alert store error", zap.Error(err))
	}
	defer alertStore.Close()

	productCache, err := cache.New(ctx, cfg.RedisAddr, cfg.CacheTTL, logger)
	if err != nil {
		logger.Fatal("cache error", zap.Error(err))
	}
	defer productCache.Close()

	client := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, logger)
	thresholds := notify.Thresholds{
		LowStockThreshold: cfg.LowStockThreshold,
		ExpiryWarningDays: cfg.ExpiryWarningDays,
	}
	svc := service.New(client, productCache, alertStore, thresholds, logger)

	gates := notify.Gates{ExpiryAlerts: cfg.ExpiryAlerts, LowStockAlerts: cfg.LowStockAlerts}
	aggregator := notify.NewAggregator(svc, notify.SinkFunc(svc.StoreAlerts), cfg.PollInterval, gates, logger)
	go aggregator.Run(ctx)

	handler := httpapi.NewHandler(svc, aggregator)
	router := httpapi.NewRouter(handler, logger)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("gateway listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// Stop the notification poller before draining HTTP so no alert is
	// emitted during teardown.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Warn("force close failed", zap.Error(closeErr))
		}
	}
}
