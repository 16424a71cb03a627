// Package bridge makes the asynchronous transport worker look synchronous to
// calling code: one call in flight at a time, the caller blocked on a channel
// receive until the worker delivers the outcome.
//
// The classic form of this pattern is a shared futex slot plus a side channel
// for the payload. Go's buffered channels provide both at once: the worker's
// single send publishes the payload and wakes the caller in one ordered
// operation, so the payload-before-signal invariant holds by construction.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/graphbridge/errors"
	"github.com/c360/graphbridge/metric"
	"github.com/c360/graphbridge/transport"
	"github.com/c360/graphbridge/wire"
)

// Bridge serializes remote calls through one transport worker. Only the
// calling goroutine ever blocks; the worker never does.
type Bridge struct {
	worker  *transport.Worker
	metrics *metric.Metrics
	logger  *slog.Logger

	// timeout bounds the caller-side wait. Zero means wait indefinitely,
	// which is the baseline protocol behavior: a hung network call hangs
	// the caller. Production configurations should set it.
	timeout time.Duration

	mu     sync.Mutex // serializes callers: a second call queues strictly after the first
	stale  atomic.Bool
	closed atomic.Bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithCallTimeout bounds how long a caller waits for a response. On expiry
// the call returns errors.ErrCallTimeout, the in-flight network call keeps
// running with its eventual result discarded, and the bridge refuses new
// calls (errors.ErrBridgeStale) until that result actually arrives, so the
// reply slot is never reused while a stale response is pending.
func WithCallTimeout(timeout time.Duration) Option {
	return func(b *Bridge) {
		b.timeout = timeout
	}
}

// WithMetrics attaches client metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// WithLogger sets the logger (defaults to slog.Default).
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a bridge over the given worker. The bridge takes ownership of
// the worker: Close releases it.
func New(worker *transport.Worker, opts ...Option) *Bridge {
	b := &Bridge{
		worker: worker,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Call sends one request envelope and blocks until its response, error,
// timeout, or context cancellation. Concurrent callers are admitted strictly
// one after another, never interleaved.
func (b *Bridge) Call(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed.Load() {
		return nil, errors.ErrBridgeClosed
	}
	if b.stale.Load() {
		return nil, errors.ErrBridgeStale
	}

	reply, err := b.worker.Submit(req)
	if err != nil {
		return nil, errors.Wrap(err, "Bridge", "Call", "submit envelope")
	}

	var timeoutC <-chan time.Time
	if b.timeout > 0 {
		timer := time.NewTimer(b.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	start := time.Now()
	select {
	case outcome := <-reply:
		b.observe(req.Op, outcome.Err, time.Since(start))
		if outcome.Err != nil {
			return nil, outcome.Err
		}
		return outcome.Resp, nil

	case <-timeoutC:
		b.abandon(reply)
		if b.metrics != nil {
			b.metrics.TimeoutsTotal.Inc()
		}
		b.logger.Warn("remote call abandoned after timeout", "op", req.Op, "timeout", b.timeout)
		return nil, fmt.Errorf("bridge: %s after %s: %w", req.Op, b.timeout, errors.ErrCallTimeout)

	case <-ctx.Done():
		b.abandon(reply)
		b.logger.Warn("remote call abandoned by caller", "op", req.Op, "cause", ctx.Err())
		return nil, errors.WrapTransient(ctx.Err(), "Bridge", "Call", "wait for response")
	}
}

// abandon marks the bridge stale and drains the eventual outcome of the
// abandoned call in the background. The stale flag clears only once the
// outcome arrives.
func (b *Bridge) abandon(reply <-chan transport.Outcome) {
	b.stale.Store(true)
	go func() {
		<-reply
		b.stale.Store(false)
	}()
}

func (b *Bridge) observe(op string, err error, elapsed time.Duration) {
	if b.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		b.metrics.TransportErrors.WithLabelValues(op).Inc()
	}
	b.metrics.CallsTotal.WithLabelValues(op, outcome).Inc()
	b.metrics.CallDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Close releases the worker. An in-flight call runs to completion first.
// Safe to call more than once.
func (b *Bridge) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.worker.Close()
}
