package testutil

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/cassiomorais/invoice-ledger/internal/domain/eventqueue"
	"github.com/cassiomorais/invoice-ledger/internal/domain/invoice"
	"github.com/cassiomorais/invoice-ledger/internal/domain/payment"
	"github.com/google/uuid"
)

// --- Invoice Repository Mock ---

// MockInvoiceRepository is a mock implementation of invoice.Repository.
type MockInvoiceRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*invoice.Invoice

	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	LockFunc         func(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	ExistsFunc       func(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status invoice.Status, updatedAt time.Time) error
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[uuid.UUID]*invoice.Invoice),
	}
}

// AddInvoice pre-populates the mock with an invoice.
func (m *MockInvoiceRepository) AddInvoice(inv *invoice.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID] = inv
}

// GetInvoiceByID returns the stored invoice (test helper, no context needed).
func (m *MockInvoiceRepository) GetInvoiceByID(id uuid.UUID) *invoice.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoices[id]
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, domainErrors.ErrInvoiceNotFound
	}
	return inv, nil
}

func (m *MockInvoiceRepository) Lock(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, domainErrors.ErrInvoiceNotFound
	}
	return inv, nil
}

func (m *MockInvoiceRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.invoices[id]
	return ok, nil
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status invoice.Status, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return domainErrors.ErrInvoiceNotFound
	}
	inv.Status = status
	inv.UpdatedAt = updatedAt
	return nil
}

// --- Payment Repository Mock ---

// MockPaymentRepository is a mock implementation of payment.Repository. Its
// Insert mirrors the insert-or-ignore semantics of the real table: the first
// insert for an event id reports true, replays report false.
type MockPaymentRepository struct {
	mu       sync.Mutex
	byEvent  map[string]*payment.Payment
	byInvoic map[uuid.UUID][]*payment.Payment

	InsertFunc        func(ctx context.Context, p *payment.Payment) (bool, error)
	ExistsFunc        func(ctx context.Context, eventID string) (bool, error)
	SumByInvoiceFunc  func(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	ListByInvoiceFunc func(ctx context.Context, invoiceID uuid.UUID) ([]*payment.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		byEvent:  make(map[string]*payment.Payment),
		byInvoic: make(map[uuid.UUID][]*payment.Payment),
	}
}

func (m *MockPaymentRepository) Insert(ctx context.Context, p *payment.Payment) (bool, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEvent[p.EventID]; ok {
		return false, nil
	}
	m.byEvent[p.EventID] = p
	m.byInvoic[p.InvoiceID] = append(m.byInvoic[p.InvoiceID], p)
	return true, nil
}

func (m *MockPaymentRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, eventID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEvent[eventID]
	return ok, nil
}

func (m *MockPaymentRepository) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	if m.SumByInvoiceFunc != nil {
		return m.SumByInvoiceFunc(ctx, invoiceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.byInvoic[invoiceID] {
		sum += p.AmountCents
	}
	return sum, nil
}

func (m *MockPaymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*payment.Payment, error) {
	if m.ListByInvoiceFunc != nil {
		return m.ListByInvoiceFunc(ctx, invoiceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byInvoic[invoiceID], nil
}

// PaymentCount returns the number of stored payments (test helper).
func (m *MockPaymentRepository) PaymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEvent)
}

// --- Event Queue Repository Mock ---

// MockEventQueueRepository is a mock implementation of eventqueue.Repository.
type MockEventQueueRepository struct {
	mu      sync.Mutex
	entries map[string]*eventqueue.Entry
	order   []string

	EnqueueFunc       func(ctx context.Context, e *eventqueue.Entry) error
	GetPendingFunc    func(ctx context.Context, limit, maxAttempts int) ([]*eventqueue.Entry, error)
	MarkProcessedFunc func(ctx context.Context, eventID string) error
	MarkFailedFunc    func(ctx context.Context, eventID string, reason string) error
}

func NewMockEventQueueRepository() *MockEventQueueRepository {
	return &MockEventQueueRepository{
		entries: make(map[string]*eventqueue.Entry),
	}
}

func (m *MockEventQueueRepository) Enqueue(ctx context.Context, e *eventqueue.Entry) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.EventID]; ok {
		return nil
	}
	m.entries[e.EventID] = e
	m.order = append(m.order, e.EventID)
	return nil
}

func (m *MockEventQueueRepository) GetPending(ctx context.Context, limit, maxAttempts int) ([]*eventqueue.Entry, error) {
	if m.GetPendingFunc != nil {
		return m.GetPendingFunc(ctx, limit, maxAttempts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*eventqueue.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.ProcessedAt == nil && e.Attempts < maxAttempts {
			pending = append(pending, e)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (m *MockEventQueueRepository) MarkProcessed(ctx context.Context, eventID string) error {
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, eventID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[eventID]
	if !ok {
		return nil
	}
	now := time.Now()
	e.ProcessedAt = &now
	e.Error = nil
	return nil
}

func (m *MockEventQueueRepository) MarkFailed(ctx context.Context, eventID string, reason string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, eventID, reason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[eventID]
	if !ok {
		return nil
	}
	e.Attempts++
	e.Error = &reason
	return nil
}

// Entry returns the stored entry (test helper, no context needed).
func (m *MockEventQueueRepository) Entry(eventID string) *eventqueue.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[eventID]
}

// --- Transaction Manager Mock ---

// MockTransactionManager is a mock implementation of TransactionManager.
// The default holds a mutex across the callback, matching the serialization
// the real row lock provides for transactions touching the same invoice.
type MockTransactionManager struct {
	mu sync.Mutex

	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}
