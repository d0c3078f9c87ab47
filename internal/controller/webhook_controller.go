package controller

import (
	"encoding/json"
	"net/http"

	"github.com/cassiomorais/invoice-ledger/internal/domain/eventqueue"
	"github.com/cassiomorais/invoice-ledger/internal/queue"
	"github.com/cassiomorais/invoice-ledger/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebhookController handles inbound payment-event webhooks. It performs
// early validation and duplicate rejection, records the event durably,
// enqueues it for asynchronous application, and returns immediately.
type WebhookController struct {
	ledger   *service.LedgerService
	queue    *queue.Sequential
	eventLog eventqueue.Repository
	logger   zerolog.Logger
}

// NewWebhookController creates a new WebhookController.
func NewWebhookController(
	ledger *service.LedgerService,
	q *queue.Sequential,
	eventLog eventqueue.Repository,
	logger zerolog.Logger,
) *WebhookController {
	return &WebhookController{
		ledger:   ledger,
		queue:    q,
		eventLog: eventLog,
		logger:   logger,
	}
}

// ReceivePaymentEvent handles POST /api/v1/webhooks/payments.
//
// Replays of an already-applied event id return 200 with an
// already_processed body: from the sender's perspective a replay is a
// successful idempotent delivery, not a conflict.
func (h *WebhookController) ReceivePaymentEvent(w http.ResponseWriter, r *http.Request) {
	var req PaymentWebhookRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid invoice_id", Code: "invalid_id"})
		return
	}

	exists, err := h.ledger.InvoiceExists(r.Context(), invoiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "invoice not found", Code: "not_found"})
		return
	}

	// Early duplicate rejection: first the in-memory processed cache,
	// then the payments table. Both are best-effort; the authoritative
	// check is the insert-or-ignore when the event is applied.
	if h.queue.IsProcessed(req.EventID) {
		writeJSON(w, http.StatusOK, WebhookResponse{Status: "already_processed", EventID: req.EventID})
		return
	}
	applied, err := h.ledger.PaymentExists(r.Context(), req.EventID)
	if err != nil {
		writeError(w, err)
		return
	}
	if applied {
		writeJSON(w, http.StatusOK, WebhookResponse{Status: "already_processed", EventID: req.EventID})
		return
	}

	evt := service.PaymentEvent{
		EventID:     req.EventID,
		Type:        req.Type,
		InvoiceID:   invoiceID,
		AmountCents: req.AmountCents,
	}

	// Durable record for the drain worker. The in-process queue does not
	// depend on it, so a failed write degrades durability but not the
	// accepted response.
	payload, err := json.Marshal(evt)
	if err == nil {
		err = h.eventLog.Enqueue(r.Context(), eventqueue.NewEntry(evt.EventID, payload))
	}
	if err != nil {
		h.logger.Warn().Err(err).Str("event_id", evt.EventID).Msg("failed to record event in durable queue")
	}

	h.queue.Enqueue(evt)

	writeJSON(w, http.StatusAccepted, WebhookResponse{Status: "accepted", EventID: req.EventID})
}

// QueueStats handles GET /api/v1/queue/stats (diagnostic only).
func (h *WebhookController) QueueStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.queue.Stats())
}
