package postgres

import (
	"context"
	"fmt"

	"github.com/cassiomorais/invoice-ledger/internal/domain/eventqueue"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventQueueRepository implements eventqueue.Repository using PostgreSQL.
type EventQueueRepository struct {
	pool *pgxpool.Pool
}

// NewEventQueueRepository creates a new EventQueueRepository.
func NewEventQueueRepository(pool *pgxpool.Pool) *EventQueueRepository {
	return &EventQueueRepository{pool: pool}
}

func (r *EventQueueRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Enqueue records the event payload, keeping a single row per event id.
func (r *EventQueueRepository) Enqueue(ctx context.Context, e *eventqueue.Entry) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payment_events_queue (event_id, payload, enqueued_at, attempts)
		 VALUES ($1, $2, $3, 0)
		 ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, []byte(e.Payload), e.EnqueuedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}
	return nil
}

// GetPending claims up to limit unprocessed entries, oldest first,
// skipping rows locked by concurrent drain workers.
func (r *EventQueueRepository) GetPending(ctx context.Context, limit, maxAttempts int) ([]*eventqueue.Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db(ctx).Query(ctx,
		`SELECT event_id, payload, enqueued_at, processed_at, attempts, error
		 FROM payment_events_queue
		 WHERE processed_at IS NULL AND attempts < $2
		 ORDER BY enqueued_at ASC
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`, limit, maxAttempts,
	)
	if err != nil {
		return nil, fmt.Errorf("get pending events: %w", err)
	}
	defer rows.Close()

	var entries []*eventqueue.Entry
	for rows.Next() {
		e := &eventqueue.Entry{}
		var payload []byte
		if err := rows.Scan(&e.EventID, &payload, &e.EnqueuedAt, &e.ProcessedAt, &e.Attempts, &e.Error); err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}
		e.Payload = payload
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkProcessed stamps processed_at and clears any recorded error.
func (r *EventQueueRepository) MarkProcessed(ctx context.Context, eventID string) error {
	_, err := r.db(ctx).Exec(ctx,
		`UPDATE payment_events_queue SET processed_at = NOW(), error = NULL WHERE event_id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

// MarkFailed increments attempts and records the failure reason.
func (r *EventQueueRepository) MarkFailed(ctx context.Context, eventID string, reason string) error {
	_, err := r.db(ctx).Exec(ctx,
		`UPDATE payment_events_queue SET attempts = attempts + 1, error = $2 WHERE event_id = $1`,
		eventID, reason,
	)
	if err != nil {
		return fmt.Errorf("mark event failed: %w", err)
	}
	return nil
}
