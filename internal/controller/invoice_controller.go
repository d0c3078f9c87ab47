package controller

import (
	"net/http"

	"github.com/cassiomorais/invoice-ledger/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// InvoiceController serves the read-only invoice API.
type InvoiceController struct {
	ledger *service.LedgerService
}

// NewInvoiceController creates a new InvoiceController.
func NewInvoiceController(ledger *service.LedgerService) *InvoiceController {
	return &InvoiceController{ledger: ledger}
}

// GetInvoice handles GET /api/v1/invoices/{id}
func (h *InvoiceController) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid invoice id", Code: "invalid_id"})
		return
	}

	inv, paidCents, err := h.ledger.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromInvoice(inv, paidCents))
}

// ListPayments handles GET /api/v1/invoices/{id}/payments
func (h *InvoiceController) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid invoice id", Code: "invalid_id"})
		return
	}

	payments, err := h.ledger.ListPayments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, FromPayment(p))
	}
	writeJSON(w, http.StatusOK, resp)
}
