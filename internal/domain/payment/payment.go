package payment

import (
	"time"

	"github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/google/uuid"
)

// Type represents the payment event type.
type Type string

// TypePaymentReceived is the only event type currently accepted.
const TypePaymentReceived Type = "payment_received"

// Payment records a single applied payment event. The event id is the
// sender-supplied idempotency key and the table's primary key, which
// makes the storage constraint the authoritative duplicate arbiter.
// Payments are immutable once written and are never deleted.
type Payment struct {
	EventID     string
	InvoiceID   uuid.UUID
	AmountCents int64
	Type        Type
	CreatedAt   time.Time
}

// NewPayment creates a payment record for a received payment event.
func NewPayment(eventID string, invoiceID uuid.UUID, amountCents int64) (*Payment, error) {
	if eventID == "" {
		return nil, errors.NewValidationError("event_id", "cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, errors.NewValidationError("invoice_id", "cannot be empty")
	}
	if amountCents <= 0 {
		return nil, errors.NewValidationError("amount_cents", "must be greater than 0")
	}
	return &Payment{
		EventID:     eventID,
		InvoiceID:   invoiceID,
		AmountCents: amountCents,
		Type:        TypePaymentReceived,
		CreatedAt:   time.Now(),
	}, nil
}
