// alertwatch runs the notification poller headless and logs every alert,
// for warehouse wallboards and debugging threshold settings without the
// full gateway.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pharmafront/internal/config"
	"pharmafront/internal/domain"
	"pharmafront/internal/notify"
	"pharmafront/internal/service"
	"pharmafront/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	client := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, logger)
	thresholds := notify.Thresholds{
		LowStockThreshold: cfg.LowStockThreshold,
		ExpiryWarningDays: cfg.ExpiryWarningDays,
	}
	svc := service.New(client, nil, nil, thresholds, logger)

	sink := notify.SinkFunc(func(_ context.Context, alerts []domain.Alert) {
		for _, alert := range alerts {
			logger.Info("ALERT",
				zap.String("category", string(alert.Category)),
				zap.Int("delta", alert.Delta),
				zap.String("message", alert.Message))
		}
	})

	gates := notify.Gates{ExpiryAlerts: cfg.ExpiryAlerts, LowStockAlerts: cfg.LowStockAlerts}
	aggregator := notify.NewAggregator(svc, sink, cfg.PollInterval, gates, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	logger.Info("watching inventory thresholds",
		zap.Duration("interval", cfg.PollInterval),
		zap.Int("low_stock_threshold", cfg.LowStockThreshold),
		zap.Int("expiry_warning_days", cfg.ExpiryWarningDays))
	aggregator.Run(ctx)
}
