package controller

import (
	"testing"

	"github.com/cassiomorais/invoice-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFromInvoice(t *testing.T) {
	inv := testutil.NewTestInvoice(10000)

	resp := FromInvoice(inv, 2500)

	assert.Equal(t, inv.ID.String(), resp.ID)
	assert.Equal(t, int64(10000), resp.TotalCents)
	assert.Equal(t, int64(2500), resp.PaidCents)
	assert.Equal(t, "sent", resp.Status)
	assert.Equal(t, inv.CreatedAt, resp.CreatedAt)
}

func TestFromPayment(t *testing.T) {
	inv := testutil.NewTestInvoice(10000)
	p := testutil.NewTestPayment("evt-1", inv.ID, 2500)

	resp := FromPayment(p)

	assert.Equal(t, "evt-1", resp.EventID)
	assert.Equal(t, inv.ID.String(), resp.InvoiceID)
	assert.Equal(t, int64(2500), resp.AmountCents)
	assert.Equal(t, "payment_received", resp.Type)
}
