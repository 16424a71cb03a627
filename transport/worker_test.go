package transport

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/graphbridge/errors"
	"github.com/c360/graphbridge/wire"
)

// fakeDoer records calls and returns scripted outcomes.
type fakeDoer struct {
	pingErr error
	doErr   error
	delay   time.Duration
	calls   atomic.Int32
	closed  atomic.Bool
}

func (f *fakeDoer) Do(_ context.Context, req *wire.Request) (*wire.Response, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.doErr != nil {
		return nil, f.doErr
	}
	return &wire.Response{Result: []byte(fmt.Sprintf("%q", req.Op))}, nil
}

func (f *fakeDoer) Ping(context.Context) error { return f.pingErr }

func (f *fakeDoer) Close() error {
	f.closed.Store(true)
	return nil
}

func TestWorkerStartFailsFastOnBrokenTransport(t *testing.T) {
	doer := &fakeDoer{pingErr: fmt.Errorf("no runtime capability")}
	w := NewWorker(doer)

	err := w.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestWorkerSubmitBeforeStart(t *testing.T) {
	w := NewWorker(&fakeDoer{})
	_, err := w.Submit(wire.NewRequest(wire.OpSelect, nil))
	assert.ErrorIs(t, err, errors.ErrWorkerNotStarted)
}

func TestWorkerDeliversOutcome(t *testing.T) {
	doer := &fakeDoer{}
	w := NewWorker(doer)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Close() }()

	reply, err := w.Submit(wire.NewRequest(wire.OpSelect, nil))
	require.NoError(t, err)

	outcome := <-reply
	require.NoError(t, outcome.Err)
	assert.Equal(t, `"select"`, string(outcome.Resp.Result))
}

func TestWorkerSurfacesErrorsAsValues(t *testing.T) {
	doer := &fakeDoer{doErr: &wire.StatusError{Code: 500, Message: "boom"}}
	w := NewWorker(doer)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Close() }()

	reply, err := w.Submit(wire.NewRequest(wire.OpSelect, nil))
	require.NoError(t, err)

	outcome := <-reply
	require.Error(t, outcome.Err)
	assert.Nil(t, outcome.Resp)

	var statusErr *wire.StatusError
	assert.ErrorAs(t, outcome.Err, &statusErr)
}

func TestWorkerSurvivesBackToBackCalls(t *testing.T) {
	doer := &fakeDoer{}
	w := NewWorker(doer)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Close() }()

	for i := 0; i < 50; i++ {
		reply, err := w.Submit(wire.NewRequest(wire.OpAdd, map[string]any{"n": i}))
		require.NoError(t, err)
		outcome := <-reply
		require.NoError(t, outcome.Err)
	}
	assert.Equal(t, int32(50), doer.calls.Load())
}

func TestWorkerCloseWaitsForInFlightCall(t *testing.T) {
	doer := &fakeDoer{delay: 50 * time.Millisecond}
	w := NewWorker(doer)
	require.NoError(t, w.Start(context.Background()))

	reply, err := w.Submit(wire.NewRequest(wire.OpSelect, nil))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.True(t, doer.closed.Load(), "doer released on close")

	// The in-flight call ran to completion before close returned.
	select {
	case outcome := <-reply:
		assert.NoError(t, outcome.Err)
	default:
		t.Fatal("in-flight call was dropped by Close")
	}
}

func TestWorkerCloseIsIdempotentAndRejectsSubmit(t *testing.T) {
	w := NewWorker(&fakeDoer{})
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err := w.Submit(wire.NewRequest(wire.OpSelect, nil))
	assert.ErrorIs(t, err, errors.ErrWorkerClosed)

	assert.ErrorIs(t, w.Start(context.Background()), errors.ErrWorkerClosed)
}

// ctxDoer fails when the context handed to Do is already cancelled.
type ctxDoer struct{}

func (ctxDoer) Do(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &wire.Response{Result: []byte(`null`)}, nil
}

func (ctxDoer) Ping(context.Context) error { return nil }
func (ctxDoer) Close() error               { return nil }

func TestWorkerOutlivesStartContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(ctxDoer{})
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Close() }()

	cancel()

	reply, err := w.Submit(wire.NewRequest(wire.OpSelect, nil))
	require.NoError(t, err)

	outcome := <-reply
	require.NoError(t, outcome.Err, "calls keep working after the Start context is cancelled")
	assert.NotNil(t, outcome.Resp)
}
