package service

import (
	"context"
	"time"

	domainErrors "github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/cassiomorais/invoice-ledger/internal/domain/invoice"
	"github.com/cassiomorais/invoice-ledger/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentEvent is the normalized inbound payload: a payment received
// against an invoice, identified by the sender-supplied event id.
type PaymentEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
	AmountCents int64     `json:"amount_cents"`
}

// ID returns the event identifier, the idempotency key.
func (e PaymentEvent) ID() string { return e.EventID }

// Validate checks structural requirements. The HTTP boundary validates
// too; the duplication is deliberate so the service is safe to call
// directly (e.g. from the drain worker).
func (e PaymentEvent) Validate() error {
	if e.EventID == "" {
		return domainErrors.NewValidationError("event_id", "cannot be empty")
	}
	if e.Type != string(payment.TypePaymentReceived) {
		return domainErrors.NewValidationError("type", "must be payment_received")
	}
	if e.InvoiceID == uuid.Nil {
		return domainErrors.NewValidationError("invoice_id", "cannot be empty")
	}
	if e.AmountCents <= 0 {
		return domainErrors.NewValidationError("amount_cents", "must be greater than 0")
	}
	return nil
}

// Outcome describes the result of applying a payment event.
type Outcome string

const (
	// OutcomeApplied means a payment row was written and the invoice
	// status recomputed.
	OutcomeApplied Outcome = "applied"

	// OutcomeAlreadyProcessed means the event id was seen before; the
	// transaction committed without touching the invoice.
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

// ApplyResult carries the outcome of ApplyPayment together with the
// invoice status after the call.
type ApplyResult struct {
	Outcome         Outcome
	InvoiceStatus   invoice.Status
	CumulativeCents int64
}

// LedgerService applies payment events to the invoice ledger with
// exactly-once financial effect.
type LedgerService struct {
	invoices invoice.Repository
	payments payment.Repository
	tx       TransactionManager
	logger   zerolog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	invoices invoice.Repository,
	payments payment.Repository,
	tx TransactionManager,
	logger zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		invoices: invoices,
		payments: payments,
		tx:       tx,
		logger:   logger,
	}
}

// PaymentExists reports whether a payment event was already applied.
// Used for early duplicate rejection at the boundary; the authoritative
// check is the insert-or-ignore inside ApplyPayment.
func (s *LedgerService) PaymentExists(ctx context.Context, eventID string) (bool, error) {
	return s.payments.Exists(ctx, eventID)
}

// InvoiceExists reports whether the target invoice exists.
func (s *LedgerService) InvoiceExists(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	return s.invoices.Exists(ctx, invoiceID)
}

// ApplyPayment applies one payment event inside a single transaction:
// lock the invoice row, insert the payment with insert-or-ignore on the
// event id, and if the row is new recompute the cumulative paid amount
// and rewrite the invoice status. A duplicate event commits as a no-op
// and reports OutcomeAlreadyProcessed. Any failure rolls the whole
// transaction back; no partial state is ever observable.
func (s *LedgerService) ApplyPayment(ctx context.Context, evt PaymentEvent) (*ApplyResult, error) {
	if err := evt.Validate(); err != nil {
		return nil, err
	}

	var res ApplyResult
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		// The row lock serializes concurrent payments against the same
		// invoice; without it two transactions could both read the
		// pre-update cumulative total and race to write a stale status.
		inv, err := s.invoices.Lock(txCtx, evt.InvoiceID)
		if err != nil {
			return err
		}

		p, err := payment.NewPayment(evt.EventID, evt.InvoiceID, evt.AmountCents)
		if err != nil {
			return err
		}

		inserted, err := s.payments.Insert(txCtx, p)
		if err != nil {
			return err
		}
		if !inserted {
			// Idempotent replay: commit without touching the invoice.
			res = ApplyResult{
				Outcome:       OutcomeAlreadyProcessed,
				InvoiceStatus: inv.Status,
			}
			return nil
		}

		cumulative, err := s.payments.SumByInvoice(txCtx, inv.ID)
		if err != nil {
			return err
		}

		newStatus := inv.CumulativeStatus(cumulative)
		if err := s.invoices.UpdateStatus(txCtx, inv.ID, newStatus, time.Now()); err != nil {
			return err
		}

		res = ApplyResult{
			Outcome:         OutcomeApplied,
			InvoiceStatus:   newStatus,
			CumulativeCents: cumulative,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", evt.EventID).
		Str("invoice_id", evt.InvoiceID.String()).
		Int64("amount_cents", evt.AmountCents).
		Str("outcome", string(res.Outcome)).
		Str("invoice_status", string(res.InvoiceStatus)).
		Msg("payment event applied")

	return &res, nil
}

// GetInvoice loads an invoice together with its cumulative paid amount.
func (s *LedgerService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*invoice.Invoice, int64, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, 0, err
	}
	cumulative, err := s.payments.SumByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, 0, err
	}
	return inv, cumulative, nil
}

// ListPayments returns the payments recorded against an invoice.
func (s *LedgerService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*payment.Payment, error) {
	exists, err := s.invoices.Exists(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainErrors.ErrInvoiceNotFound
	}
	return s.payments.ListByInvoice(ctx, invoiceID)
}
