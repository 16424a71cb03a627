package session

import (
	"fmt"
	"time"

	"github.com/c360/graphbridge/errors"
)

// RequestConfig carries per-request transport configuration: credentials and
// extra headers applied to every call of the session.
type RequestConfig struct {
	Headers     map[string]string `json:"headers,omitempty"`
	Username    string            `json:"username,omitempty"`
	Password    string            `json:"password,omitempty"`
	BearerToken string            `json:"bearer_token,omitempty"`
	Timeout     time.Duration     `json:"timeout,omitempty"`

	// MaxRetries enables retrying transient connection failures up to this
	// many attempts. A timed-out call may already have executed on the
	// server; leave this zero unless the store deduplicates by envelope ID
	// or the workload tolerates replays.
	MaxRetries int `json:"max_retries,omitempty"`
}

// Config is the session configuration consumed by Open.
type Config struct {
	// ServerURL is the base URL of the graph store. Required.
	ServerURL string `json:"server_url"`

	// DataGraph is the logical identifier of the graph the session works
	// against. Required.
	DataGraph string `json:"data_graph"`

	// Languages is the preferred-language list sent during the handshake.
	Languages []string `json:"languages,omitempty"`

	// Streaming enables SelectStream result streaming over WebSocket.
	Streaming bool `json:"streaming,omitempty"`

	// IndependentReads asserts that reads never observe local writes, so
	// the flush-before-read policy is skipped. Misuse yields stale reads
	// and is a caller error.
	IndependentReads bool `json:"independent_reads,omitempty"`

	// Request holds transport-level configuration.
	Request RequestConfig `json:"request,omitempty"`
}

// Validate checks the two mandatory fields before any transport is started.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return errors.WrapInvalid(
			fmt.Errorf("server URL is required: %w", errors.ErrMissingConfig),
			"Session", "Validate", "check server URL")
	}
	if c.DataGraph == "" {
		return errors.WrapInvalid(
			fmt.Errorf("data graph is required: %w", errors.ErrMissingConfig),
			"Session", "Validate", "check data graph")
	}
	return nil
}
