package testutil

import (
	"time"

	"github.com/cassiomorais/invoice-ledger/internal/domain/invoice"
	"github.com/cassiomorais/invoice-ledger/internal/domain/payment"
	"github.com/google/uuid"
)

func NewTestInvoice(totalCents int64) *invoice.Invoice {
	now := time.Now()
	return &invoice.Invoice{
		ID:         uuid.New(),
		TotalCents: totalCents,
		Status:     invoice.StatusSent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func NewTestPayment(eventID string, invoiceID uuid.UUID, amountCents int64) *payment.Payment {
	return &payment.Payment{
		EventID:     eventID,
		InvoiceID:   invoiceID,
		AmountCents: amountCents,
		Type:        payment.TypePaymentReceived,
		CreatedAt:   time.Now(),
	}
}
