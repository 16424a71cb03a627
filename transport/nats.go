package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/graphbridge/errors"
	"github.com/c360/graphbridge/wire"
)

const defaultSubject = "graphbridge.ops"

// NATSDoer sends request envelopes over NATS request/reply, for deployments
// where the store is reachable on a NATS fabric instead of plain HTTP.
type NATSDoer struct {
	conn     *nats.Conn
	subject  string
	ownsConn bool
	logger   *slog.Logger
}

// NATSOption configures a NATSDoer.
type NATSOption func(*NATSDoer)

// WithSubject overrides the request subject (default "graphbridge.ops").
func WithSubject(subject string) NATSOption {
	return func(d *NATSDoer) {
		if subject != "" {
			d.subject = subject
		}
	}
}

// WithConn reuses an existing connection; the doer will not close it.
func WithConn(conn *nats.Conn) NATSOption {
	return func(d *NATSDoer) {
		if conn != nil {
			d.conn = conn
			d.ownsConn = false
		}
	}
}

// WithNATSLogger sets the logger (defaults to slog.Default).
func WithNATSLogger(logger *slog.Logger) NATSOption {
	return func(d *NATSDoer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewNATSDoer connects to the given NATS URL unless a connection is injected
// via WithConn.
func NewNATSDoer(url string, opts ...NATSOption) (*NATSDoer, error) {
	d := &NATSDoer{
		subject: defaultSubject,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.conn == nil {
		conn, err := nats.Connect(url,
			nats.Name("graphbridge"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			return nil, errors.WrapTransient(err, "NATSDoer", "NewNATSDoer", "connect")
		}
		d.conn = conn
		d.ownsConn = true
	}
	return d, nil
}

// natsError is the error envelope the store publishes instead of a result.
type natsError struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// Do implements Doer.
func (d *NATSDoer) Do(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.WrapInvalid(err, "NATSDoer", "Do", "encode envelope")
	}

	start := time.Now()
	msg, err := d.conn.RequestWithContext(ctx, d.subject, payload)
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSDoer", "Do", "request")
	}

	d.logger.Debug("remote call completed",
		"op", req.Op,
		"subject", d.subject,
		"duration", time.Since(start))

	var failure natsError
	if err := json.Unmarshal(msg.Data, &failure); err == nil && failure.Error != "" {
		return nil, &wire.StatusError{Code: failure.Code, Message: failure.Error}
	}

	var resp wire.Response
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return nil, errors.WrapTransient(err, "NATSDoer", "Do", "decode response body")
	}
	return &resp, nil
}

// Ping implements Doer.
func (d *NATSDoer) Ping(_ context.Context) error {
	if d.conn == nil || !d.conn.IsConnected() {
		return errors.WrapTransient(
			fmt.Errorf("nats connection not established"),
			"NATSDoer", "Ping", "check connection")
	}
	return nil
}

// Close implements Doer.
func (d *NATSDoer) Close() error {
	if d.ownsConn && d.conn != nil {
		d.conn.Close()
	}
	return nil
}
