package invoice

import (
	"testing"

	domainErrors "github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoice(t *testing.T) {
	id := uuid.New()

	inv, err := NewInvoice(id, 10000)
	require.NoError(t, err)
	assert.Equal(t, id, inv.ID)
	assert.Equal(t, int64(10000), inv.TotalCents)
	assert.Equal(t, StatusSent, inv.Status)
}

func TestNewInvoice_Validation(t *testing.T) {
	_, err := NewInvoice(uuid.Nil, 10000)
	require.Error(t, err)
	var ve *domainErrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "id", ve.Field)

	_, err = NewInvoice(uuid.New(), 0)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "total_cents", ve.Field)

	_, err = NewInvoice(uuid.New(), -100)
	require.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name            string
		cumulativeCents int64
		totalCents      int64
		want            Status
	}{
		{"nothing paid", 0, 5000, StatusSent},
		{"one cent paid", 1, 5000, StatusPartiallyPaid},
		{"one cent short", 4999, 5000, StatusPartiallyPaid},
		{"exact total", 5000, 5000, StatusPaid},
		{"overpaid", 9000, 5000, StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.cumulativeCents, tt.totalCents))
		})
	}
}

func TestCumulativeStatus(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), 5000)
	require.NoError(t, err)

	assert.Equal(t, StatusSent, inv.CumulativeStatus(0))
	assert.Equal(t, StatusPartiallyPaid, inv.CumulativeStatus(3000))
	assert.Equal(t, StatusPaid, inv.CumulativeStatus(5000))
}
