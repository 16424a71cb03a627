package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/graphbridge/bridge"
	"github.com/c360/graphbridge/transport"
	"github.com/c360/graphbridge/wire"
)

// recordingDoer captures every request the transport sees, in order.
type recordingDoer struct {
	mu       sync.Mutex
	requests []*wire.Request
	failOps  map[string]error
}

func (d *recordingDoer) Do(_ context.Context, req *wire.Request) (*wire.Response, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.mu.Unlock()
	if err, ok := d.failOps[req.Op]; ok {
		return nil, err
	}
	return &wire.Response{Result: []byte(`null`)}, nil
}

func (d *recordingDoer) Ping(context.Context) error { return nil }
func (d *recordingDoer) Close() error               { return nil }

func (d *recordingDoer) ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.requests))
	for i, r := range d.requests {
		out[i] = r.Op
	}
	return out
}

// batchedOps extracts the operations of the i-th recorded request, which
// must be a batch.
func (d *recordingDoer) batchedOps(t *testing.T, i int) []wire.Operation {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.Greater(t, len(d.requests), i)
	require.Equal(t, wire.OpBatch, d.requests[i].Op)

	data, err := json.Marshal(d.requests[i].Args["operations"])
	require.NoError(t, err)
	var ops []wire.Operation
	require.NoError(t, json.Unmarshal(data, &ops))
	return ops
}

func newTestQueue(t *testing.T, doer transport.Doer, opts ...Option) *Queue {
	t.Helper()
	worker := transport.NewWorker(doer)
	require.NoError(t, worker.Start(context.Background()))
	b := bridge.New(worker)
	t.Cleanup(func() { _ = b.Close() })
	return New(b, opts...)
}

func mutation(n int) wire.Operation {
	return wire.Operation{Op: wire.OpAdd, Args: map[string]any{"n": n}}
}

func TestFlushPreservesEnqueueOrder(t *testing.T) {
	doer := &recordingDoer{}
	q := newTestQueue(t, doer)
	ctx := context.Background()

	const n = 10
	for i := 0; i < n; i++ {
		require.NoError(t, q.Enqueue(ctx, mutation(i)))
	}
	require.Equal(t, n, q.Len())
	require.NoError(t, q.Flush(ctx))
	assert.Zero(t, q.Len())

	ops := doer.batchedOps(t, 0)
	require.Len(t, ops, n)
	for i, op := range ops {
		assert.Equal(t, float64(i), op.Args["n"], "entry %d out of order", i)
	}
}

func TestFlushOnEmptyQueueIsNoOp(t *testing.T) {
	doer := &recordingDoer{}
	q := newTestQueue(t, doer)

	require.NoError(t, q.Flush(context.Background()))
	assert.Empty(t, doer.ops(), "empty flush must not hit the wire")
}

func TestAutoFlushAtThreshold(t *testing.T) {
	doer := &recordingDoer{}
	q := newTestQueue(t, doer)
	ctx := context.Background()

	// 99 entries stay pending; the 100th pushes past the threshold and
	// triggers exactly one flush.
	for i := 0; i < DefaultFlushThreshold; i++ {
		require.NoError(t, q.Enqueue(ctx, mutation(i)))
	}
	assert.Equal(t, DefaultFlushThreshold, q.Len())
	assert.Empty(t, doer.ops())

	require.NoError(t, q.Enqueue(ctx, mutation(99)))
	assert.Zero(t, q.Len(), "queue empty immediately after auto-flush")
	assert.Equal(t, []string{wire.OpBatch}, doer.ops())
	assert.Len(t, doer.batchedOps(t, 0), 100)
}

func TestCustomThreshold(t *testing.T) {
	doer := &recordingDoer{}
	q := newTestQueue(t, doer, WithFlushThreshold(2))
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, mutation(0)))
	require.NoError(t, q.Enqueue(ctx, mutation(1)))
	assert.Empty(t, doer.ops())

	require.NoError(t, q.Enqueue(ctx, mutation(2)))
	assert.Equal(t, []string{wire.OpBatch}, doer.ops())
}

func TestReadFlushesPendingWritesFirst(t *testing.T) {
	doer := &recordingDoer{}
	q := newTestQueue(t, doer)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, mutation(1)))
	require.NoError(t, q.Enqueue(ctx, mutation(2)))

	_, err := q.RequestRead(ctx, wire.NewRequest(wire.OpSelect, nil))
	require.NoError(t, err)

	// Exactly one flush, strictly before the read.
	assert.Equal(t, []string{wire.OpBatch, wire.OpSelect}, doer.ops())
	assert.Len(t, doer.batchedOps(t, 0), 2)
}

func TestIndependentReadsSkipFlush(t *testing.T) {
	doer := &recordingDoer{}
	q := newTestQueue(t, doer, WithIndependentReads(true))
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, mutation(1)))

	_, err := q.RequestRead(ctx, wire.NewRequest(wire.OpSelect, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{wire.OpSelect}, doer.ops())
	assert.Equal(t, 1, q.Len(), "pending write stays queued")
}

func TestReadWithoutPendingWritesDoesNotFlush(t *testing.T) {
	doer := &recordingDoer{}
	q := newTestQueue(t, doer)

	_, err := q.RequestRead(context.Background(), wire.NewRequest(wire.OpSelect, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{wire.OpSelect}, doer.ops())
}

func TestFailedFlushClearsQueueAndPropagates(t *testing.T) {
	doer := &recordingDoer{failOps: map[string]error{
		wire.OpBatch: &wire.StatusError{Code: 500, Message: "replay failed"},
	}}
	q := newTestQueue(t, doer)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, mutation(1)))

	err := q.Flush(ctx)
	require.Error(t, err)
	var statusErr *wire.StatusError
	assert.ErrorAs(t, err, &statusErr)

	// Entries are not replayed: the server may have applied a prefix.
	assert.Zero(t, q.Len())
	require.NoError(t, q.Flush(ctx), "subsequent flush is a no-op")
	assert.Equal(t, []string{wire.OpBatch}, doer.ops())
}

func TestFailedFlushAbortsRead(t *testing.T) {
	doer := &recordingDoer{failOps: map[string]error{
		wire.OpBatch: fmt.Errorf("network down"),
	}}
	q := newTestQueue(t, doer)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, mutation(1)))

	_, err := q.RequestRead(ctx, wire.NewRequest(wire.OpSelect, nil))
	require.Error(t, err)
	assert.Equal(t, []string{wire.OpBatch}, doer.ops(), "read must not run after failed flush")
}

func TestPendingReturnsCopy(t *testing.T) {
	doer := &recordingDoer{}
	q := newTestQueue(t, doer)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, mutation(1)))
	pending := q.Pending()
	require.Len(t, pending, 1)

	pending[0].Op = wire.OpRemove
	assert.Equal(t, wire.OpAdd, q.Pending()[0].Op, "mutating the copy must not affect the queue")
}
