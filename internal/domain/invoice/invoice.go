package invoice

import (
	"time"

	"github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/google/uuid"
)

// Status represents the invoice lifecycle: sent -> partially_paid -> paid.
type Status string

const (
	StatusSent          Status = "sent"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
)

// Invoice represents an invoice in the ledger. Invoices are created
// upstream; this service only recomputes their status as payments land.
type Invoice struct {
	ID         uuid.UUID
	TotalCents int64
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewInvoice creates an invoice in the initial sent state.
func NewInvoice(id uuid.UUID, totalCents int64) (*Invoice, error) {
	if id == uuid.Nil {
		return nil, errors.NewValidationError("id", "cannot be empty")
	}
	if totalCents <= 0 {
		return nil, errors.NewValidationError("total_cents", "must be greater than 0")
	}
	now := time.Now()
	return &Invoice{
		ID:         id,
		TotalCents: totalCents,
		Status:     StatusSent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// StatusFor derives the invoice status from the cumulative paid amount.
// The mapping is pure: paid when cumulative covers the total,
// partially_paid for any positive amount below it, sent otherwise.
// Because cumulative paid only grows under the payment_received event
// type, statuses never regress.
func StatusFor(cumulativeCents, totalCents int64) Status {
	switch {
	case cumulativeCents >= totalCents:
		return StatusPaid
	case cumulativeCents > 0:
		return StatusPartiallyPaid
	default:
		return StatusSent
	}
}

// CumulativeStatus returns the status the invoice should hold given the
// cumulative amount paid against it.
func (i *Invoice) CumulativeStatus(cumulativeCents int64) Status {
	return StatusFor(cumulativeCents, i.TotalCents)
}
