package transport

import (
	"context"
	"log/slog"
	"sync"

	"github.com/c360/graphbridge/errors"
	"github.com/c360/graphbridge/wire"
)

// Outcome is the result of one remote call, delivered on the call's reply
// channel. Exactly one of Resp/Err is set.
type Outcome struct {
	Resp *wire.Response
	Err  error
}

type call struct {
	req   *wire.Request
	reply chan Outcome
}

// Worker owns the transport on its own goroutine. The caller hands envelopes
// over a channel and receives the outcome on a per-call reply channel; the
// worker itself never blocks on the caller because reply channels are
// buffered and the bridge enforces one call in flight at a time.
//
// Network calls run under the worker's lifetime context, not the caller's:
// when the bridge abandons a call (timeout), the call still runs to
// completion and its outcome is discarded by the bridge's drainer.
type Worker struct {
	doer   Doer
	calls  chan *call
	done   chan struct{}
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	closed  bool
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger sets the logger (defaults to slog.Default).
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorker creates a worker around the given transport.
func NewWorker(doer Doer, opts ...WorkerOption) *Worker {
	w := &Worker{
		doer:   doer,
		calls:  make(chan *call, 1),
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start pings the transport and launches the worker goroutine. A transport
// that cannot start fails here, at session initialization, rather than
// hanging on first use.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.ErrWorkerClosed
	}
	if w.started {
		return nil
	}

	if err := w.doer.Ping(ctx); err != nil {
		return errors.WrapFatal(err, "Worker", "Start", "transport ping")
	}

	w.started = true
	// The loop outlives the Start call: cancelling the caller's context
	// must not kill later network calls. Close is the only shutdown path.
	go w.loop(context.WithoutCancel(ctx))
	w.logger.Debug("transport worker started")
	return nil
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)
	for c := range w.calls {
		resp, err := w.doer.Do(ctx, c.req)
		// Payload and signal are one operation here: the buffered send
		// publishes the outcome and wakes the caller atomically.
		c.reply <- Outcome{Resp: resp, Err: err}
	}
}

// Submit hands an envelope to the worker and returns the reply channel.
// It does not wait for completion; blocking is the bridge's job.
func (w *Worker) Submit(req *wire.Request) (<-chan Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errors.ErrWorkerClosed
	}
	if !w.started {
		return nil, errors.ErrWorkerNotStarted
	}

	c := &call{req: req, reply: make(chan Outcome, 1)}
	w.calls <- c
	return c.reply, nil
}

// Close stops accepting calls, waits for the in-flight call (if any) to
// finish, and releases the transport. Safe to call more than once.
func (w *Worker) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	close(w.calls)
	w.mu.Unlock()

	if started {
		<-w.done
	}
	w.logger.Debug("transport worker stopped")
	return w.doer.Close()
}
