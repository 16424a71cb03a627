// Package session holds the handle for one connection to a remote graph
// store: configuration, the handshake-assigned identity and prefix table, the
// mutation queue, and the graph-operation surface the generated accessor
// layers build on.
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360/graphbridge/batch"
	"github.com/c360/graphbridge/bridge"
	"github.com/c360/graphbridge/errors"
	"github.com/c360/graphbridge/metric"
	"github.com/c360/graphbridge/retry"
	"github.com/c360/graphbridge/term"
	"github.com/c360/graphbridge/transport"
	"github.com/c360/graphbridge/wire"
)

// Session is an explicit handle threaded through every call. It is owned by
// one goroutine (the calling script) and is not safe for concurrent use.
type Session struct {
	cfg     Config
	bridge  *bridge.Bridge
	queue   *batch.Queue
	metrics *metric.Metrics
	logger  *slog.Logger

	sessionID  string
	dataGraph  string
	prefixes   map[string]string
	graphStack []string
	terminated bool
}

type openOptions struct {
	doer           transport.Doer
	logger         *slog.Logger
	metrics        *metric.Metrics
	callTimeout    time.Duration
	flushThreshold int
}

// Option configures Open.
type Option func(*openOptions)

// WithDoer injects a transport, replacing the default HTTP transport built
// from the config (NATS deployments, tests).
func WithDoer(d transport.Doer) Option {
	return func(o *openOptions) {
		o.doer = d
	}
}

// WithLogger sets the logger (defaults to slog.Default).
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics attaches client metrics to the bridge, queue, and streams.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *openOptions) {
		o.metrics = m
	}
}

// WithCallTimeout bounds the blocking wait of every remote call. Zero keeps
// the baseline wait-forever behavior.
func WithCallTimeout(timeout time.Duration) Option {
	return func(o *openOptions) {
		o.callTimeout = timeout
	}
}

// WithFlushThreshold overrides the mutation queue's auto-flush threshold.
func WithFlushThreshold(n int) Option {
	return func(o *openOptions) {
		o.flushThreshold = n
	}
}

// Open validates the configuration, starts the transport worker (failing
// fast when the transport cannot start), performs the init handshake, and
// returns the live session. Release it with Close.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &openOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	doer := options.doer
	if doer == nil {
		var err error
		doer, err = httpDoerFromConfig(cfg, options.logger)
		if err != nil {
			return nil, err
		}
	}

	worker := transport.NewWorker(doer, transport.WithWorkerLogger(options.logger))
	if err := worker.Start(ctx); err != nil {
		_ = worker.Close()
		return nil, err
	}

	b := bridge.New(worker,
		bridge.WithCallTimeout(options.callTimeout),
		bridge.WithMetrics(options.metrics),
		bridge.WithLogger(options.logger),
	)

	queueOpts := []batch.Option{
		batch.WithIndependentReads(cfg.IndependentReads),
		batch.WithMetrics(options.metrics),
		batch.WithLogger(options.logger),
	}
	if options.flushThreshold > 0 {
		queueOpts = append(queueOpts, batch.WithFlushThreshold(options.flushThreshold))
	}

	s := &Session{
		cfg:     cfg,
		bridge:  b,
		metrics: options.metrics,
		logger:  options.logger,
	}
	queueOpts = append(queueOpts, batch.WithStamp(func(req *wire.Request) {
		req.Session = s.sessionID
	}))
	s.queue = batch.New(b, queueOpts...)

	if err := s.handshake(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return s, nil
}

func httpDoerFromConfig(cfg Config, logger *slog.Logger) (transport.Doer, error) {
	httpOpts := []transport.HTTPOption{transport.WithHTTPLogger(logger)}
	if len(cfg.Request.Headers) > 0 {
		httpOpts = append(httpOpts, transport.WithHeaders(cfg.Request.Headers))
	}
	if cfg.Request.BearerToken != "" {
		httpOpts = append(httpOpts, transport.WithBearerToken(cfg.Request.BearerToken))
	} else if cfg.Request.Username != "" {
		httpOpts = append(httpOpts, transport.WithBasicAuth(cfg.Request.Username, cfg.Request.Password))
	}
	if cfg.Request.Timeout > 0 {
		httpOpts = append(httpOpts, transport.WithRequestTimeout(cfg.Request.Timeout))
	}
	if cfg.Request.MaxRetries > 0 {
		retryCfg := retry.DefaultConfig()
		retryCfg.MaxAttempts = cfg.Request.MaxRetries
		httpOpts = append(httpOpts, transport.WithRetry(retryCfg))
	}
	return transport.NewHTTPDoer(cfg.ServerURL, httpOpts...)
}

// handshake performs the init call: it yields the session identifier, the
// namespace prefix table, and the effective data graph identity.
func (s *Session) handshake(ctx context.Context) error {
	resp, err := s.bridge.Call(ctx, wire.NewRequest(wire.OpInit, map[string]any{
		"dataGraph": s.cfg.DataGraph,
		"languages": s.cfg.Languages,
		"streaming": s.cfg.Streaming,
	}))
	if err != nil {
		return errors.Wrap(err, "Session", "Open", "init handshake")
	}

	init, err := wire.DecodeInit(resp)
	if err != nil {
		return errors.Wrap(err, "Session", "Open", "decode handshake")
	}

	s.sessionID = init.SessionID
	s.prefixes = init.Prefixes
	if s.prefixes == nil {
		s.prefixes = map[string]string{}
	}
	s.dataGraph = init.DataGraph
	if s.dataGraph == "" {
		s.dataGraph = s.cfg.DataGraph
	}

	s.logger.Info("session established",
		"session_id", s.sessionID,
		"data_graph", s.dataGraph,
		"prefixes", len(s.prefixes))
	return nil
}

// newRequest stamps the session identity onto an envelope.
func (s *Session) newRequest(op string, args map[string]any) *wire.Request {
	req := wire.NewRequest(op, args)
	req.Session = s.sessionID
	return req
}

func (s *Session) check() error {
	if s.terminated {
		return errors.ErrSessionTerminated
	}
	return nil
}

// SessionID returns the server-assigned session identifier.
func (s *Session) SessionID() string { return s.sessionID }

// DataGraph returns the identity of the graph currently being edited.
func (s *Session) DataGraph() string {
	if n := len(s.graphStack); n > 0 {
		return s.graphStack[n-1]
	}
	return s.dataGraph
}

// Terminated reports whether Close has run.
func (s *Session) Terminated() bool { return s.terminated }

// Prefixes returns a copy of the namespace prefix table.
func (s *Session) Prefixes() map[string]string {
	out := make(map[string]string, len(s.prefixes))
	for k, v := range s.prefixes {
		out[k] = v
	}
	return out
}

// ExpandQName resolves "rdfs:label" against the handshake prefix table.
// Implements term.Resolver.
func (s *Session) ExpandQName(qname string) (string, error) {
	prefix, local, ok := strings.Cut(qname, ":")
	if !ok {
		return "", &term.ConstructionError{Value: qname, Reason: "qname needs a prefix"}
	}
	ns, ok := s.prefixes[prefix]
	if !ok {
		return "", &term.ConstructionError{Value: qname, Reason: "unknown prefix " + prefix}
	}
	return ns + local, nil
}

// toTerm converts an operation argument into a Term, resolving QNames
// against the session's prefix table.
func (s *Session) toTerm(v any) (term.Term, error) {
	switch d := v.(type) {
	case term.Descriptor:
		return term.FromDescriptor(d, s)
	case *term.Descriptor:
		if d == nil {
			return term.Term{}, &term.ConstructionError{Value: v, Reason: "nil descriptor"}
		}
		return term.FromDescriptor(*d, s)
	default:
		return term.FromValue(v)
	}
}

// toNode converts a subject/predicate argument, where a bare string means a
// URI or QName rather than a literal, and a literal is never legal.
func (s *Session) toNode(v any) (term.Term, error) {
	if str, ok := v.(string); ok {
		if prefix, _, found := strings.Cut(str, ":"); found {
			if _, known := s.prefixes[prefix]; known {
				uri, err := s.ExpandQName(str)
				if err != nil {
					return term.Term{}, err
				}
				return term.NewURI(uri)
			}
		}
		return term.NewURI(str)
	}

	node, err := s.toTerm(v)
	if err != nil {
		return term.Term{}, err
	}
	if !node.IsURI() {
		return term.Term{}, &term.ConstructionError{Value: v, Reason: "subject/predicate must be a URI"}
	}
	return node, nil
}

func (s *Session) tripleArgs(subject, predicate, object any) (map[string]any, error) {
	st, err := s.toNode(subject)
	if err != nil {
		return nil, err
	}
	pt, err := s.toNode(predicate)
	if err != nil {
		return nil, err
	}
	ot, err := s.toTerm(object)
	if err != nil {
		return nil, err
	}
	return map[string]any{"subject": st, "predicate": pt, "object": ot}, nil
}

// Add queues a triple assertion. The write is sent on the next flush.
func (s *Session) Add(ctx context.Context, subject, predicate, object any) error {
	if err := s.check(); err != nil {
		return err
	}
	args, err := s.tripleArgs(subject, predicate, object)
	if err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, wire.Operation{Op: wire.OpAdd, Args: args})
}

// Remove queues a triple retraction.
func (s *Session) Remove(ctx context.Context, subject, predicate, object any) error {
	if err := s.check(); err != nil {
		return err
	}
	args, err := s.tripleArgs(subject, predicate, object)
	if err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, wire.Operation{Op: wire.OpRemove, Args: args})
}

// SetProperty queues a replacement of all values of subject's property.
func (s *Session) SetProperty(ctx context.Context, subject, predicate any, values ...any) error {
	if err := s.check(); err != nil {
		return err
	}
	st, err := s.toNode(subject)
	if err != nil {
		return err
	}
	pt, err := s.toNode(predicate)
	if err != nil {
		return err
	}
	terms := make([]term.Term, len(values))
	for i, v := range values {
		t, err := s.toTerm(v)
		if err != nil {
			return err
		}
		terms[i] = t
	}
	return s.queue.Enqueue(ctx, wire.Operation{
		Op:   wire.OpSetProperty,
		Args: map[string]any{"subject": st, "predicate": pt, "values": terms},
	})
}

// EnterDataGraph queues a switch of the active data graph. The switch is
// ordered with the queued writes around it.
func (s *Session) EnterDataGraph(ctx context.Context, uri string) error {
	if err := s.check(); err != nil {
		return err
	}
	if uri == "" {
		return errors.WrapInvalid(
			fmt.Errorf("data graph URI is empty"),
			"Session", "EnterDataGraph", "validate graph URI")
	}
	if err := s.queue.Enqueue(ctx, wire.Operation{
		Op:   wire.OpEnterGraph,
		Args: map[string]any{"uri": uri},
	}); err != nil {
		return err
	}
	s.graphStack = append(s.graphStack, uri)
	return nil
}

// ExitDataGraph queues a return to the previously active data graph.
func (s *Session) ExitDataGraph(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.graphStack) == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("no entered data graph to exit"),
			"Session", "ExitDataGraph", "check graph stack")
	}
	if err := s.queue.Enqueue(ctx, wire.Operation{Op: wire.OpExitGraph}); err != nil {
		return err
	}
	s.graphStack = s.graphStack[:len(s.graphStack)-1]
	return nil
}

// Contains asks whether the triple exists, flushing pending writes first so
// the answer observes them.
func (s *Session) Contains(ctx context.Context, subject, predicate, object any) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	args, err := s.tripleArgs(subject, predicate, object)
	if err != nil {
		return false, err
	}
	resp, err := s.queue.RequestRead(ctx, s.newRequest(wire.OpContains, args))
	if err != nil {
		return false, err
	}
	return wire.DecodeBool(resp)
}

// GetProperty returns all values of subject's property.
func (s *Session) GetProperty(ctx context.Context, subject, predicate any) ([]term.Term, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	st, err := s.toNode(subject)
	if err != nil {
		return nil, err
	}
	pt, err := s.toNode(predicate)
	if err != nil {
		return nil, err
	}
	resp, err := s.queue.RequestRead(ctx, s.newRequest(wire.OpGetProperty, map[string]any{
		"subject":   st,
		"predicate": pt,
	}))
	if err != nil {
		return nil, err
	}
	return wire.DecodeTerms(resp)
}

// bindingArgs converts query bindings into Term form. Plain scalars that
// denote graph data become terms; the query text itself passes untouched.
func (s *Session) bindingArgs(key, text string, bindings map[string]any) (map[string]any, error) {
	args := map[string]any{key: text}
	if len(bindings) == 0 {
		return args, nil
	}
	converted := make(map[string]term.Term, len(bindings))
	for name, v := range bindings {
		t, err := s.toTerm(v)
		if err != nil {
			return nil, err
		}
		converted[name] = t
	}
	args["bindings"] = converted
	return args, nil
}

// Select runs a select query and returns all solution rows.
func (s *Session) Select(ctx context.Context, query string, bindings map[string]any) (*wire.SelectResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	args, err := s.bindingArgs("query", query, bindings)
	if err != nil {
		return nil, err
	}
	resp, err := s.queue.RequestRead(ctx, s.newRequest(wire.OpSelect, args))
	if err != nil {
		return nil, err
	}
	return wire.DecodeSelect(resp)
}

// Construct runs a construct query and returns the resulting quads.
func (s *Session) Construct(ctx context.Context, query string) ([]wire.Quad, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	resp, err := s.queue.RequestRead(ctx, s.newRequest(wire.OpConstruct, map[string]any{"query": query}))
	if err != nil {
		return nil, err
	}
	return wire.DecodeConstruct(resp.Result)
}

// Eval evaluates an expression on the server and returns its result: a Term
// for term-shaped results, the natural JSON mapping otherwise.
func (s *Session) Eval(ctx context.Context, expr string, bindings map[string]any) (any, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	args, err := s.bindingArgs("expr", expr, bindings)
	if err != nil {
		return nil, err
	}
	resp, err := s.queue.RequestRead(ctx, s.newRequest(wire.OpEval, args))
	if err != nil {
		return nil, err
	}
	return wire.DecodeAny(resp)
}

// Flush sends all pending writes now.
func (s *Session) Flush(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.queue.Flush(ctx)
}

// Pending returns the number of queued writes.
func (s *Session) Pending() int { return s.queue.Len() }

// Close flushes pending writes, sends the end-of-session notification, marks
// the session terminated, and releases the transport worker. It is
// idempotent and safe to defer even after a failed operation: every step
// runs, and the first error is reported alongside the rest.
func (s *Session) Close(ctx context.Context, message ...string) error {
	if s.terminated {
		return nil
	}
	s.terminated = true

	flushErr := s.queue.FlushOnClose(ctx)

	args := map[string]any{}
	if len(message) > 0 && message[0] != "" {
		args["message"] = message[0]
	}
	_, endErr := s.bridge.Call(ctx, s.newRequest(wire.OpEnd, args))

	closeErr := s.bridge.Close()

	s.logger.Info("session closed", "session_id", s.sessionID)
	return stderrors.Join(flushErr, endErr, closeErr)
}
