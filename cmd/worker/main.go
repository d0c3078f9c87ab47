package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cassiomorais/invoice-ledger/internal/bootstrap"
	"github.com/cassiomorais/invoice-ledger/internal/domain/eventqueue"
	infraRedis "github.com/cassiomorais/invoice-ledger/internal/infrastructure/redis"
	"github.com/cassiomorais/invoice-ledger/internal/repository/postgres"
	"github.com/cassiomorais/invoice-ledger/internal/service"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
)

// The drain worker recovers webhook events that an api instance accepted
// but never applied (crash before the in-process queue drained them). It
// replays rows from payment_events_queue through the same transactional
// apply path; events already applied come back as no-op replays.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "ledger-worker", "ledger_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	invoiceRepo := postgres.NewInvoiceRepository(app.Pool)
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	eventLogRepo := postgres.NewEventQueueRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	ledger := service.NewLedgerService(invoiceRepo, paymentRepo, txManager, app.Logger)

	breaker := gobreaker.NewCircuitBreaker[*service.ApplyResult](gobreaker.Settings{
		Name:        "ledger-apply",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     app.Config.Worker.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			app.Metrics.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			app.Logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	d := &drainer{
		app:      app,
		txm:      txManager,
		eventLog: eventLogRepo,
		ledger:   ledger,
		breaker:  breaker,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.run(gCtx)
	})

	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

type drainer struct {
	app      *bootstrap.App
	txm      *postgres.TxManager
	eventLog eventqueue.Repository
	ledger   *service.LedgerService
	breaker  *gobreaker.CircuitBreaker[*service.ApplyResult]
}

func (d *drainer) run(ctx context.Context) error {
	cfg := d.app.Config.Worker
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	d.app.Logger.Info().
		Dur("poll_interval", cfg.PollInterval).
		Int("batch_size", cfg.BatchSize).
		Msg("Drain worker started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		// Leader lock keeps instances from draining the same cycle; row
		// claims use SKIP LOCKED and applies are idempotent, so losing
		// the lock or its expiry is safe either way.
		lock := infraRedis.NewLeaderLock(d.app.Redis, "payment-events-drain", cfg.LeaderLockTTL)
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			d.app.Logger.Error().Err(err).Msg("Failed to acquire drain lock")
			continue
		}
		if !acquired {
			continue
		}

		start := time.Now()
		if err := d.drainOnce(ctx); err != nil {
			d.app.Logger.Error().Err(err).Msg("Drain cycle failed")
		}
		d.app.Metrics.WorkerDrainDuration.Observe(time.Since(start).Seconds())

		if err := lock.Release(ctx); err != nil {
			d.app.Logger.Warn().Err(err).Msg("Failed to release drain lock")
		}
	}
}

// drainOnce claims a batch of unprocessed entries and replays each
// through the ledger service. Claim state is updated inside the claiming
// transaction; the apply itself runs in its own transaction so a failed
// event cannot roll back the bookkeeping of the others.
func (d *drainer) drainOnce(ctx context.Context) error {
	cfg := d.app.Config.Worker
	return d.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		entries, err := d.eventLog.GetPending(txCtx, cfg.BatchSize, cfg.MaxAttempts)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			var evt service.PaymentEvent
			if err := json.Unmarshal(entry.Payload, &evt); err != nil {
				d.app.Logger.Error().Err(err).Str("event_id", entry.EventID).Msg("Malformed queue payload")
				d.eventLog.MarkFailed(txCtx, entry.EventID, "malformed payload: "+err.Error())
				d.app.Metrics.WorkerEventsTotal.WithLabelValues("malformed").Inc()
				continue
			}

			res, err := d.breaker.Execute(func() (*service.ApplyResult, error) {
				return d.ledger.ApplyPayment(ctx, evt)
			})
			if err != nil {
				if errors.Is(err, gobreaker.ErrOpenState) {
					d.app.Logger.Warn().Msg("Apply circuit open, stopping drain cycle")
					d.app.Metrics.WorkerEventsTotal.WithLabelValues("skipped").Inc()
					return nil
				}
				d.app.Logger.Error().Err(err).Str("event_id", entry.EventID).Msg("Failed to apply event")
				d.eventLog.MarkFailed(txCtx, entry.EventID, err.Error())
				d.app.Metrics.WorkerEventsTotal.WithLabelValues("failed").Inc()
				continue
			}

			if err := d.eventLog.MarkProcessed(txCtx, entry.EventID); err != nil {
				return err
			}
			d.app.Metrics.WorkerEventsTotal.WithLabelValues(string(res.Outcome)).Inc()
		}
		return nil
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
