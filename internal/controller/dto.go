package controller

import (
	"time"

	"github.com/cassiomorais/invoice-ledger/internal/domain/invoice"
	"github.com/cassiomorais/invoice-ledger/internal/domain/payment"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (string ids, validation tags).
// Controllers convert them to service payloads before calling business
// logic.

// PaymentWebhookRequest is the inbound webhook payload.
type PaymentWebhookRequest struct {
	EventID     string `json:"event_id" validate:"required"`
	Type        string `json:"type" validate:"required,eq=payment_received"`
	InvoiceID   string `json:"invoice_id" validate:"required,uuid"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
}

// --- Response DTOs ---

// WebhookResponse acknowledges a webhook delivery.
type WebhookResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id"`
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID         string    `json:"id"`
	TotalCents int64     `json:"total_cents"`
	PaidCents  int64     `json:"paid_cents"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PaymentResponse represents an applied payment in API responses.
type PaymentResponse struct {
	EventID     string    `json:"event_id"`
	InvoiceID   string    `json:"invoice_id"`
	AmountCents int64     `json:"amount_cents"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromInvoice converts a domain invoice to an API response.
func FromInvoice(inv *invoice.Invoice, paidCents int64) *InvoiceResponse {
	return &InvoiceResponse{
		ID:         inv.ID.String(),
		TotalCents: inv.TotalCents,
		PaidCents:  paidCents,
		Status:     string(inv.Status),
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

// FromPayment converts a domain payment to an API response.
func FromPayment(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		EventID:     p.EventID,
		InvoiceID:   p.InvoiceID.String(),
		AmountCents: p.AmountCents,
		Type:        string(p.Type),
		CreatedAt:   p.CreatedAt,
	}
}
