package controller

import (
	"time"

	"github.com/cassiomorais/invoice-ledger/internal/domain/eventqueue"
	"github.com/cassiomorais/invoice-ledger/internal/infrastructure/config"
	"github.com/cassiomorais/invoice-ledger/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/invoice-ledger/internal/middleware"
	"github.com/cassiomorais/invoice-ledger/internal/queue"
	"github.com/cassiomorais/invoice-ledger/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Ledger      *service.LedgerService
	Queue       *queue.Sequential
	EventLog    eventqueue.Repository
	Metrics     *observability.Metrics
	Logger      zerolog.Logger
	ServerCfg   config.ServerConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.ServerCfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.ServerCfg.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	webhookH := NewWebhookController(deps.Ledger, deps.Queue, deps.EventLog, deps.Logger)
	invoiceH := NewInvoiceController(deps.Ledger)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Webhooks
		r.With(customMW.RateLimit(deps.ServerCfg.WebhookRPM)).
			Post("/webhooks/payments", webhookH.ReceivePaymentEvent)

		// Invoices (read-only)
		r.Get("/invoices/{id}", invoiceH.GetInvoice)
		r.Get("/invoices/{id}/payments", invoiceH.ListPayments)

		// Diagnostics
		r.Get("/queue/stats", webhookH.QueueStats)
	})

	return r
}
