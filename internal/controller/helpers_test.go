package controller

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainErrors "github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		payload      any
		expectedBody string
	}{
		{
			name:         "simple map",
			status:       http.StatusOK,
			payload:      map[string]string{"message": "hello"},
			expectedBody: `{"message":"hello"}`,
		},
		{
			name:         "webhook response",
			status:       http.StatusAccepted,
			payload:      WebhookResponse{Status: "accepted", EventID: "evt-1"},
			expectedBody: `{"status":"accepted","event_id":"evt-1"}`,
		},
		{
			name:         "error response",
			status:       http.StatusBadRequest,
			payload:      ErrorResponse{Error: "bad request", Code: "invalid_input"},
			expectedBody: `{"error":"bad request","code":"invalid_input"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeJSON(w, tt.status, tt.payload)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestWriteError_ValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, domainErrors.NewValidationError("amount_cents", "must be greater than 0"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestWriteError_MappedDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invoice not found", domainErrors.ErrInvoiceNotFound, http.StatusNotFound, "not_found"},
		{"already processed", domainErrors.ErrEventAlreadyProcessed, http.StatusOK, "already_processed"},
		{"invalid event type", domainErrors.ErrInvalidEventType, http.StatusBadRequest, "invalid_event_type"},
		{"queue closed", domainErrors.ErrQueueClosed, http.StatusServiceUnavailable, "shutting_down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestWriteError_WrappedSentinel(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, domainErrors.NewDomainError("lookup", "loading invoice", domainErrors.ErrInvoiceNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteError_UnknownErrorIsOpaque(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, errors.New("pq: connection refused at 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"event_id":"evt-1","type":"payment_received","invoice_id":"6a31dfb0-56b4-4e12-9d26-1e1a1b6d36b8","amount_cents":3000}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dst PaymentWebhookRequest
	require.NoError(t, decodeAndValidate(req, &dst))
	assert.Equal(t, "evt-1", dst.EventID)
	assert.Equal(t, int64(3000), dst.AmountCents)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{")))

	var dst PaymentWebhookRequest
	err := decodeAndValidate(req, &dst)
	require.Error(t, err)
	var ve *domainErrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestDecodeAndValidate_TagFailure(t *testing.T) {
	body := `{"event_id":"evt-1","type":"refund_issued","invoice_id":"6a31dfb0-56b4-4e12-9d26-1e1a1b6d36b8","amount_cents":3000}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dst PaymentWebhookRequest
	err := decodeAndValidate(req, &dst)
	require.Error(t, err)
	var ve *domainErrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Type", ve.Field)
}
