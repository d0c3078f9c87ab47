// Package queue provides an in-process, single-consumer event queue
// that invokes its handler strictly one event at a time, in FIFO order.
package queue

import (
	"context"
	"sync"

	"github.com/cassiomorais/invoice-ledger/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

const defaultProcessedCacheSize = 10000

// Event is any payload carrying an event identifier.
type Event interface {
	ID() string
}

// Handler processes one dequeued event. A nil return marks the event
// processed; an error drops it without retry.
type Handler func(ctx context.Context, evt Event) error

// Stats is a diagnostic snapshot of queue state.
type Stats struct {
	BacklogLength  int  `json:"backlog_length"`
	ProcessedCount int  `json:"processed_count"`
	InFlight       bool `json:"in_flight"`
}

// Option configures a Sequential queue.
type Option func(*Sequential)

// WithProcessedCacheSize bounds the in-memory processed-event cache.
func WithProcessedCacheSize(n int) Option {
	return func(q *Sequential) {
		if n > 0 {
			q.cacheSize = n
		}
	}
}

// WithMetrics wires queue gauges and counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(q *Sequential) { q.metrics = m }
}

// Sequential is an ordered, single-consumer queue. A dedicated worker
// goroutine blocks on a notify channel and drains the backlog one event
// at a time, so handler invocations never overlap and follow enqueue
// order exactly.
//
// The processed-event set is a bounded, process-lifetime cache that
// short-circuits redundant work within one instance. It is not a
// durability guarantee; the payments table's unique event id constraint
// is the only authoritative idempotency source.
type Sequential struct {
	handler Handler
	logger  zerolog.Logger
	metrics *observability.Metrics

	mu             sync.Mutex
	backlog        []Event
	processed      map[string]struct{}
	processedOrder []string
	cacheSize      int
	inFlight       bool
	closed         bool

	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewSequential creates the queue and starts its worker goroutine.
func NewSequential(handler Handler, logger zerolog.Logger, opts ...Option) *Sequential {
	q := &Sequential{
		handler:   handler,
		logger:    logger,
		processed: make(map[string]struct{}),
		cacheSize: defaultProcessedCacheSize,
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}

	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue appends the event to the backlog and wakes the worker. Events
// whose id is already in the processed cache are silently dropped.
// Enqueue never blocks the caller.
func (q *Sequential) Enqueue(evt Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if _, dup := q.processed[evt.ID()]; dup {
		q.mu.Unlock()
		if q.metrics != nil {
			q.metrics.QueueEventsTotal.WithLabelValues("duplicate").Inc()
		}
		q.logger.Debug().Str("event_id", evt.ID()).Msg("duplicate event dropped at enqueue")
		return
	}
	q.backlog = append(q.backlog, evt)
	depth := len(q.backlog)
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.QueueBacklog.Set(float64(depth))
	}

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// IsProcessed reports whether the event id is in the processed cache.
// Pure lookup, no side effects.
func (q *Sequential) IsProcessed(eventID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.processed[eventID]
	return ok
}

// Stats returns a diagnostic snapshot.
func (q *Sequential) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		BacklogLength:  len(q.backlog),
		ProcessedCount: len(q.processed),
		InFlight:       q.inFlight,
	}
}

// Close stops the worker after any in-flight handler completes and
// waits for it to exit. Events still in the backlog are discarded; the
// durable queue table holds them for the drain worker.
func (q *Sequential) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.done)
	q.wg.Wait()
}

func (q *Sequential) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case <-q.notify:
		}
		q.drain()
	}
}

// drain pops backlog entries one at a time until the backlog is empty
// or the queue is closed. Only this goroutine invokes the handler, so
// invocations never overlap.
func (q *Sequential) drain() {
	for {
		q.mu.Lock()
		if q.closed || len(q.backlog) == 0 {
			q.inFlight = false
			q.mu.Unlock()
			return
		}
		evt := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.inFlight = true
		depth := len(q.backlog)
		q.mu.Unlock()

		if q.metrics != nil {
			q.metrics.QueueBacklog.Set(float64(depth))
		}

		if err := q.handler(context.Background(), evt); err != nil {
			// No retry: the event is dropped and stays out of the
			// processed cache so a later redelivery can still land.
			q.logger.Error().Err(err).Str("event_id", evt.ID()).Msg("event handler failed, dropping event")
			if q.metrics != nil {
				q.metrics.QueueEventsTotal.WithLabelValues("dropped").Inc()
			}
			continue
		}

		q.markProcessed(evt.ID())
		if q.metrics != nil {
			q.metrics.QueueEventsTotal.WithLabelValues("processed").Inc()
		}
	}
}

func (q *Sequential) markProcessed(eventID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.processed[eventID]; ok {
		return
	}
	q.processed[eventID] = struct{}{}
	q.processedOrder = append(q.processedOrder, eventID)
	for len(q.processedOrder) > q.cacheSize {
		oldest := q.processedOrder[0]
		q.processedOrder = q.processedOrder[1:]
		delete(q.processed, oldest)
	}
	if q.metrics != nil {
		q.metrics.QueueProcessedCached.Set(float64(len(q.processed)))
	}
}
