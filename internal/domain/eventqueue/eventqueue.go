package eventqueue

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is a durable record of a webhook event written at the HTTP
// boundary. The in-process queue never reads this table; it exists so a
// drain worker can recover events a crashed instance never applied.
type Entry struct {
	EventID     string
	Payload     json.RawMessage
	EnqueuedAt  time.Time
	ProcessedAt *time.Time
	Attempts    int
	Error       *string
}

// NewEntry creates a pending durable-queue entry for an event payload.
func NewEntry(eventID string, payload json.RawMessage) *Entry {
	return &Entry{
		EventID:    eventID,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}
}

// Repository defines the persistence operations for the durable queue.
type Repository interface {
	// Enqueue records an entry with insert-or-ignore semantics on the
	// event id, so repeated webhook deliveries keep a single row.
	Enqueue(ctx context.Context, e *Entry) error

	// GetPending claims up to limit unprocessed entries below the
	// attempts cap, oldest first, skipping rows locked by other workers.
	GetPending(ctx context.Context, limit, maxAttempts int) ([]*Entry, error)

	// MarkProcessed stamps processed_at and clears any recorded error.
	MarkProcessed(ctx context.Context, eventID string) error

	// MarkFailed increments attempts and records the failure reason.
	MarkFailed(ctx context.Context, eventID string, reason string) error
}
