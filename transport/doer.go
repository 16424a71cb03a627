// Package transport provides the isolated execution context that performs
// the actual network calls: a single dedicated worker goroutine owning a
// pluggable Doer (HTTP by default, NATS request/reply as an alternative).
// The worker knows nothing about RDF semantics; envelopes are opaque to it.
package transport

import (
	"context"

	"github.com/c360/graphbridge/wire"
)

// Doer performs one remote call. Implementations are used only from the
// worker goroutine and need not be safe for concurrent use.
type Doer interface {
	// Do sends the request envelope and returns the decoded response.
	// Transport failures (network error, non-success status, undecodable
	// body) come back as a single error value, never a panic.
	Do(ctx context.Context, req *wire.Request) (*wire.Response, error)

	// Ping verifies the transport is usable. The worker calls it once at
	// startup so a missing capability fails session initialization fast
	// instead of hanging on first use.
	Ping(ctx context.Context) error

	// Close releases transport resources.
	Close() error
}
