package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/invoice-ledger/internal/domain/errors"
	"github.com/cassiomorais/invoice-ledger/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Insert writes the payment keyed by event id with ON CONFLICT DO
// NOTHING, making the primary-key constraint the atomic duplicate
// arbiter. It returns false when the row already existed.
func (r *PaymentRepository) Insert(ctx context.Context, p *payment.Payment) (bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments (event_id, invoice_id, amount_cents, type, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (event_id) DO NOTHING`,
		p.EventID, p.InvoiceID, p.AmountCents, string(p.Type), p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, domainErrors.ErrInvoiceNotFound
		}
		return false, fmt.Errorf("insert payment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Exists reports whether a payment with the given event id exists.
func (r *PaymentRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payments WHERE event_id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("payment exists: %w", err)
	}
	return exists, nil
}

// SumByInvoice returns the cumulative amount paid against an invoice.
func (r *PaymentRepository) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE invoice_id = $1`,
		invoiceID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}

// ListByInvoice returns all payments for an invoice in insertion order.
func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*payment.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT event_id, invoice_id, amount_cents, type, created_at
		 FROM payments WHERE invoice_id = $1 ORDER BY created_at ASC`, invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		p := &payment.Payment{}
		var pType string
		if err := rows.Scan(&p.EventID, &p.InvoiceID, &p.AmountCents, &pType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Type = payment.Type(pType)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
