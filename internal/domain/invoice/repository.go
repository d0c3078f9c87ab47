package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for invoices.
type Repository interface {
	// GetByID loads an invoice without locking it.
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// Lock loads an invoice under a row-level lock (SELECT FOR UPDATE).
	// The lock is held until the surrounding transaction ends.
	Lock(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// Exists reports whether an invoice with the given id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// UpdateStatus writes the status and refreshes updated_at. The write
	// is unconditional even when the status did not change.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, updatedAt time.Time) error
}
