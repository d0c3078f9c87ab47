package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domainErrors "github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/cassiomorais/invoice-ledger/internal/domain/invoice"
	"github.com/cassiomorais/invoice-ledger/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test Helpers ---

func setupLedgerService() (*LedgerService, *testutil.MockInvoiceRepository, *testutil.MockPaymentRepository, *testutil.MockTransactionManager) {
	invoiceRepo := testutil.NewMockInvoiceRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	txManager := testutil.NewMockTransactionManager()

	svc := NewLedgerService(invoiceRepo, paymentRepo, txManager, zerolog.Nop())
	return svc, invoiceRepo, paymentRepo, txManager
}

func paymentEvent(eventID string, invoiceID uuid.UUID, amountCents int64) PaymentEvent {
	return PaymentEvent{
		EventID:     eventID,
		Type:        "payment_received",
		InvoiceID:   invoiceID,
		AmountCents: amountCents,
	}
}

// --- ApplyPayment Tests ---

func TestApplyPayment_PartialPayment(t *testing.T) {
	svc, invoiceRepo, paymentRepo, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(10000)
	invoiceRepo.AddInvoice(inv)

	res, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 3000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, invoice.StatusPartiallyPaid, res.InvoiceStatus)
	assert.Equal(t, int64(3000), res.CumulativeCents)

	stored := invoiceRepo.GetInvoiceByID(inv.ID)
	assert.Equal(t, invoice.StatusPartiallyPaid, stored.Status)

	exists, err := paymentRepo.Exists(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestApplyPayment_AccumulatesToPaid(t *testing.T) {
	svc, invoiceRepo, _, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(5000)
	invoiceRepo.AddInvoice(inv)

	res, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 3000))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPartiallyPaid, res.InvoiceStatus)

	res, err = svc.ApplyPayment(ctx, paymentEvent("evt-2", inv.ID, 2000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, invoice.StatusPaid, res.InvoiceStatus)
	assert.Equal(t, int64(5000), res.CumulativeCents)
}

func TestApplyPayment_ExactTotalIsPaid(t *testing.T) {
	svc, invoiceRepo, _, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(5000)
	invoiceRepo.AddInvoice(inv)

	res, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 5000))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, res.InvoiceStatus)
}

func TestApplyPayment_OverpaymentStaysPaid(t *testing.T) {
	svc, invoiceRepo, _, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(5000)
	invoiceRepo.AddInvoice(inv)

	res, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 9000))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, res.InvoiceStatus)
	assert.Equal(t, int64(9000), res.CumulativeCents)
}

func TestApplyPayment_DuplicateEventIsNoOp(t *testing.T) {
	svc, invoiceRepo, paymentRepo, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(10000)
	invoiceRepo.AddInvoice(inv)

	first, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 3000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, first.Outcome)

	// Same event id, even with a different amount, must not apply twice.
	second, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 9999))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, second.Outcome)

	sum, err := paymentRepo.SumByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum)
	assert.Equal(t, 1, paymentRepo.PaymentCount())
	assert.Equal(t, invoice.StatusPartiallyPaid, invoiceRepo.GetInvoiceByID(inv.ID).Status)
}

func TestApplyPayment_InvoiceNotFound(t *testing.T) {
	svc, _, paymentRepo, _ := setupLedgerService()
	ctx := context.Background()

	_, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", uuid.New(), 3000))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrInvoiceNotFound)
	assert.Equal(t, 0, paymentRepo.PaymentCount())
}

func TestApplyPayment_ValidationErrors(t *testing.T) {
	svc, invoiceRepo, _, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(10000)
	invoiceRepo.AddInvoice(inv)

	tests := []struct {
		name string
		evt  PaymentEvent
	}{
		{"empty event id", paymentEvent("", inv.ID, 3000)},
		{"zero amount", paymentEvent("evt-1", inv.ID, 0)},
		{"negative amount", paymentEvent("evt-1", inv.ID, -500)},
		{"nil invoice id", paymentEvent("evt-1", uuid.Nil, 3000)},
		{"wrong type", PaymentEvent{EventID: "evt-1", Type: "refund_issued", InvoiceID: inv.ID, AmountCents: 3000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyPayment(ctx, tt.evt)
			require.Error(t, err)
			var ve *domainErrors.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestApplyPayment_StatusUpdateFailureSurfaces(t *testing.T) {
	svc, invoiceRepo, _, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(10000)
	invoiceRepo.AddInvoice(inv)

	updateErr := errors.New("connection reset")
	invoiceRepo.UpdateStatusFunc = func(ctx context.Context, id uuid.UUID, status invoice.Status, updatedAt time.Time) error {
		return updateErr
	}

	_, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 3000))
	require.Error(t, err)
	assert.ErrorIs(t, err, updateErr)
}

func TestApplyPayment_ConcurrentDistinctEvents(t *testing.T) {
	svc, invoiceRepo, paymentRepo, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(10000)
	invoiceRepo.AddInvoice(inv)

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.ApplyPayment(ctx, paymentEvent(fmt.Sprintf("evt-%d", i), inv.ID, 1000))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sum, err := paymentRepo.SumByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), sum)
	assert.Equal(t, invoice.StatusPaid, invoiceRepo.GetInvoiceByID(inv.ID).Status)
}

// --- Read Path Tests ---

func TestGetInvoice_IncludesCumulativePaid(t *testing.T) {
	svc, invoiceRepo, _, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(10000)
	invoiceRepo.AddInvoice(inv)

	_, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 2500))
	require.NoError(t, err)

	got, paid, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, int64(2500), paid)
}

func TestGetInvoice_NotFound(t *testing.T) {
	svc, _, _, _ := setupLedgerService()

	_, _, err := svc.GetInvoice(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainErrors.ErrInvoiceNotFound)
}

func TestListPayments_UnknownInvoice(t *testing.T) {
	svc, _, _, _ := setupLedgerService()

	_, err := svc.ListPayments(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainErrors.ErrInvoiceNotFound)
}

func TestListPayments_ReturnsApplied(t *testing.T) {
	svc, invoiceRepo, _, _ := setupLedgerService()
	ctx := context.Background()

	inv := testutil.NewTestInvoice(10000)
	invoiceRepo.AddInvoice(inv)

	_, err := svc.ApplyPayment(ctx, paymentEvent("evt-1", inv.ID, 1000))
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, paymentEvent("evt-2", inv.ID, 2000))
	require.NoError(t, err)

	payments, err := svc.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}
