package payment

import (
	"testing"

	domainErrors "github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	invoiceID := uuid.New()

	p, err := NewPayment("evt-1", invoiceID, 2500)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", p.EventID)
	assert.Equal(t, invoiceID, p.InvoiceID)
	assert.Equal(t, int64(2500), p.AmountCents)
	assert.Equal(t, TypePaymentReceived, p.Type)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestNewPayment_Validation(t *testing.T) {
	invoiceID := uuid.New()

	tests := []struct {
		name        string
		eventID     string
		invoiceID   uuid.UUID
		amountCents int64
		wantField   string
	}{
		{"empty event id", "", invoiceID, 2500, "event_id"},
		{"nil invoice id", "evt-1", uuid.Nil, 2500, "invoice_id"},
		{"zero amount", "evt-1", invoiceID, 0, "amount_cents"},
		{"negative amount", "evt-1", invoiceID, -100, "amount_cents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayment(tt.eventID, tt.invoiceID, tt.amountCents)
			require.Error(t, err)
			var ve *domainErrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}
