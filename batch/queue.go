// Package batch buffers mutation operations and decides when they are sent
// to the store: explicitly, when the queue outgrows its threshold, before a
// dependent read, or at session close. Batching turns many small edits into
// one round trip; the server replays entries in order, so arrival order is
// preserved end-to-end.
package batch

import (
	"context"
	"log/slog"

	"github.com/c360/graphbridge/bridge"
	"github.com/c360/graphbridge/errors"
	"github.com/c360/graphbridge/metric"
	"github.com/c360/graphbridge/wire"
)

// DefaultFlushThreshold is the number of pending entries beyond which the
// queue flushes on its own, bounding memory and request latency.
const DefaultFlushThreshold = 99

// Flush trigger labels for metrics.
const (
	triggerExplicit  = "explicit"
	triggerThreshold = "threshold"
	triggerRead      = "read"
	triggerClose     = "close"
)

// Queue is owned by the calling goroutine and is not safe for concurrent
// use; the transport worker never touches it.
type Queue struct {
	bridge           *bridge.Bridge
	entries          []wire.Operation
	threshold        int
	independentReads bool
	stamp            func(*wire.Request)
	metrics          *metric.Metrics
	logger           *slog.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithFlushThreshold overrides the auto-flush threshold.
func WithFlushThreshold(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.threshold = n
		}
	}
}

// WithIndependentReads disables the flush-before-read policy. Only safe when
// the caller asserts reads cannot observe local writes (read-only analytics);
// misuse yields stale reads and is a caller error, not guarded at runtime.
func WithIndependentReads(independent bool) Option {
	return func(q *Queue) {
		q.independentReads = independent
	}
}

// WithStamp registers a hook applied to every request the queue builds
// itself, so flush batches carry the same session identity as reads.
func WithStamp(stamp func(*wire.Request)) Option {
	return func(q *Queue) {
		q.stamp = stamp
	}
}

// WithMetrics attaches client metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(q *Queue) {
		q.metrics = m
	}
}

// WithLogger sets the logger (defaults to slog.Default).
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// New creates a queue flushing through the given bridge.
func New(b *bridge.Bridge, opts ...Option) *Queue {
	q := &Queue{
		bridge:    b,
		threshold: DefaultFlushThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends a mutation entry in arrival order and returns immediately,
// unless the append pushes the queue past the threshold, in which case it
// flushes first.
func (q *Queue) Enqueue(ctx context.Context, op wire.Operation) error {
	q.entries = append(q.entries, op)
	if q.metrics != nil {
		q.metrics.QueuedOpsTotal.Inc()
		q.metrics.PendingOpsGauge.Set(float64(len(q.entries)))
	}

	if len(q.entries) > q.threshold {
		return q.flush(ctx, triggerThreshold)
	}
	return nil
}

// Flush sends all queued entries as one batched request and clears the
// queue. A no-op when the queue is empty.
//
// The queue is cleared even when the flush fails: the server may have
// applied a prefix of the batch, and replaying it without idempotency keys
// would be unsafe. The error propagates to the caller.
func (q *Queue) Flush(ctx context.Context) error {
	return q.flush(ctx, triggerExplicit)
}

// FlushOnClose is Flush under the session-termination metric label.
func (q *Queue) FlushOnClose(ctx context.Context) error {
	return q.flush(ctx, triggerClose)
}

func (q *Queue) flush(ctx context.Context, trigger string) error {
	if len(q.entries) == 0 {
		return nil
	}

	ops := q.entries
	q.entries = nil

	if q.metrics != nil {
		q.metrics.FlushesTotal.WithLabelValues(trigger).Inc()
		q.metrics.BatchSize.Observe(float64(len(ops)))
		q.metrics.PendingOpsGauge.Set(0)
	}
	q.logger.Debug("flushing mutation batch", "entries", len(ops), "trigger", trigger)

	req := wire.BatchRequest(ops)
	if q.stamp != nil {
		q.stamp(req)
	}
	_, err := q.bridge.Call(ctx, req)
	if err != nil {
		return errors.Wrap(err, "Queue", "Flush", "send batch")
	}
	return nil
}

// RequestRead issues a read operation through the bridge, flushing pending
// mutations first so the read observes them. Queues configured with
// independent reads skip the flush.
func (q *Queue) RequestRead(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	if !q.independentReads {
		if err := q.flush(ctx, triggerRead); err != nil {
			return nil, err
		}
	}
	return q.bridge.Call(ctx, req)
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Pending returns a copy of the pending entries, for diagnostics.
func (q *Queue) Pending() []wire.Operation {
	out := make([]wire.Operation, len(q.entries))
	copy(out, q.entries)
	return out
}
