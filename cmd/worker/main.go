package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feralmap/catwatch/internal/bootstrap"
	"github.com/feralmap/catwatch/internal/config"
	"github.com/feralmap/catwatch/internal/core/domain"
	"github.com/feralmap/catwatch/internal/observability/logging"
	"github.com/feralmap/catwatch/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.New("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:         ":" + cfg.WorkerMetricsPort,
		Handler:      workerMetrics.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeSightingRecorded(ctx, func(handlerCtx context.Context, event domain.SightingEvent) error {
		applyCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		workerMetrics.StartEvent()
		workerMetrics.ObserveEventLag("worker", time.Since(event.SpottedAt))
		start := time.Now()
		applyErr := app.ActivityUC.Apply(applyCtx, event)
		workerMetrics.FinishEvent("worker", time.Since(start), applyErr)
		return applyErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
