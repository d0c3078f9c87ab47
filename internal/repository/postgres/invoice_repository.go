package postgres

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/cassiomorais/invoice-ledger/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceRepository implements invoice.Repository using PostgreSQL.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

func (r *InvoiceRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanInvoice scans an invoice from any source implementing the scanner interface.
func (r *InvoiceRepository) scanInvoice(s scanner) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{}
	var status string
	err := s.Scan(&inv.ID, &inv.TotalCents, &status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	inv.Status = invoice.Status(status)
	return inv, nil
}

// GetByID retrieves an invoice by its ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return r.scanInvoice(r.db(ctx).QueryRow(ctx,
		`SELECT id, total_cents, status, created_at, updated_at
		 FROM invoices WHERE id = $1`, id))
}

// Lock acquires a row-level lock on the invoice (SELECT FOR UPDATE).
// Concurrent payments against the same invoice serialize on this lock
// so status recomputation never reads a stale cumulative total.
func (r *InvoiceRepository) Lock(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return r.scanInvoice(r.db(ctx).QueryRow(ctx,
		`SELECT id, total_cents, status, created_at, updated_at
		 FROM invoices WHERE id = $1 FOR UPDATE`, id))
}

// Exists reports whether an invoice with the given id exists.
func (r *InvoiceRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("invoice exists: %w", err)
	}
	return exists, nil
}

// UpdateStatus writes the invoice status and refreshes updated_at.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status invoice.Status, updatedAt time.Time) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE invoices SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrInvoiceNotFound
	}
	return nil
}
