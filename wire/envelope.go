// Package wire defines the request/response envelopes exchanged with the
// remote graph store and the decoding helpers for its results. Envelopes are
// opaque to the transport layer: it moves them, it never inspects them.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Remote operation names understood by the store.
const (
	OpInit        = "init"
	OpAdd         = "add"
	OpRemove      = "remove"
	OpContains    = "contains"
	OpSelect      = "select"
	OpConstruct   = "construct"
	OpEval        = "evalOnServer"
	OpGetProperty = "getProperty"
	OpSetProperty = "setProperty"
	OpEnterGraph  = "enterDataGraph"
	OpExitGraph   = "exitDataGraph"
	OpBatch       = "batch"
	OpEnd         = "end"
)

// Operation is one named operation with Term-encoded arguments. It is both a
// queued batch entry and the body of a direct request.
type Operation struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`
}

// Request is the envelope handed to the transport worker: an operation plus
// a correlation ID. Arguments denoting graph data have already been converted
// to Term form; plain scalars pass through untouched.
type Request struct {
	ID      string         `json:"id"`
	Op      string         `json:"op"`
	Args    map[string]any `json:"args,omitempty"`
	Session string         `json:"session,omitempty"`
}

// NewRequest builds a request envelope with a fresh correlation ID.
func NewRequest(op string, args map[string]any) *Request {
	return &Request{
		ID:   uuid.NewString(),
		Op:   op,
		Args: args,
	}
}

// BatchRequest wraps an ordered list of operations into a single batch
// envelope. The server applies entries in order; atomicity of the batch is
// owned by the server, not by this client.
func BatchRequest(ops []Operation) *Request {
	return NewRequest(OpBatch, map[string]any{"operations": ops})
}

// Response carries the raw result of a successful remote call. Decoding into
// typed results happens at the call site via the Decode helpers.
type Response struct {
	Result json.RawMessage `json:"result"`
}

// StatusError is a structured transport-level failure: a non-success HTTP
// status (or the NATS error envelope equivalent) with the best available
// diagnostic message from the response body.
type StatusError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server error: %s", e.Message)
}
