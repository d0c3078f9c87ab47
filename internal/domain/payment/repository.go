package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for payments.
type Repository interface {
	// Insert writes the payment with insert-or-ignore semantics on the
	// event id. It returns false when a payment with the same event id
	// already existed and no row was written.
	Insert(ctx context.Context, p *Payment) (inserted bool, err error)

	// Exists reports whether a payment with the given event id exists.
	Exists(ctx context.Context, eventID string) (bool, error)

	// SumByInvoice returns the cumulative amount paid against an invoice.
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)

	// ListByInvoice returns all payments recorded against an invoice in
	// insertion order.
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
}
