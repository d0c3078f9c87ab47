package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cassiomorais/invoice-ledger/internal/bootstrap"
	"github.com/cassiomorais/invoice-ledger/internal/controller"
	"github.com/cassiomorais/invoice-ledger/internal/queue"
	"github.com/cassiomorais/invoice-ledger/internal/repository/postgres"
	"github.com/cassiomorais/invoice-ledger/internal/service"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "ledger-api", "ledger")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	invoiceRepo := postgres.NewInvoiceRepository(app.Pool)
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	eventLogRepo := postgres.NewEventQueueRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Domain service ---
	ledger := service.NewLedgerService(invoiceRepo, paymentRepo, txManager, app.Logger)

	// --- Sequential event queue ---
	// One handler invocation at a time; the transactional apply inside
	// the handler is where the real idempotency guarantee lives.
	eventQueue := queue.NewSequential(
		func(ctx context.Context, evt queue.Event) error {
			pe, ok := evt.(service.PaymentEvent)
			if !ok {
				return fmt.Errorf("unexpected event payload %T", evt)
			}
			start := time.Now()
			res, err := ledger.ApplyPayment(ctx, pe)
			if err != nil {
				app.Metrics.PaymentsAppliedTotal.WithLabelValues("error").Inc()
				return err
			}
			app.Metrics.PaymentsAppliedTotal.WithLabelValues(string(res.Outcome)).Inc()
			app.Metrics.PaymentApplyDuration.WithLabelValues(string(res.Outcome)).Observe(time.Since(start).Seconds())
			app.Metrics.InvoiceStatusTotal.WithLabelValues(string(res.InvoiceStatus)).Inc()
			return nil
		},
		app.Logger,
		queue.WithMetrics(app.Metrics),
		queue.WithProcessedCacheSize(app.Config.Queue.ProcessedCacheSize),
	)
	defer eventQueue.Close()

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:        app.Pool,
		RedisClient: app.Redis,
		Ledger:      ledger,
		Queue:       eventQueue,
		EventLog:    eventLogRepo,
		Metrics:     app.Metrics,
		Logger:      app.Logger,
		ServerCfg:   app.Config.Server,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
