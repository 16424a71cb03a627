package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/c360/graphbridge/errors"
	"github.com/c360/graphbridge/retry"
	"github.com/c360/graphbridge/wire"
)

const defaultEndpoint = "/graph"

// maxErrorBody caps how much of an error response body is read for the
// diagnostic message.
const maxErrorBody = 8 * 1024

// HTTPDoer posts request envelopes as JSON to the store's graph endpoint.
type HTTPDoer struct {
	base     *url.URL
	endpoint string
	client   *http.Client
	headers  map[string]string
	username string
	password string
	bearer   string
	logger   *slog.Logger
	retry    *retry.Config
}

// HTTPOption configures an HTTPDoer.
type HTTPOption func(*HTTPDoer)

// WithHTTPClient injects a custom http.Client (tests, custom TLS).
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(d *HTTPDoer) {
		if client != nil {
			d.client = client
		}
	}
}

// WithRequestTimeout bounds each network call. This is the transport-level
// timeout; the bridge has its own caller-side wait policy.
func WithRequestTimeout(timeout time.Duration) HTTPOption {
	return func(d *HTTPDoer) {
		d.client.Timeout = timeout
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(d *HTTPDoer) {
		for k, v := range headers {
			d.headers[k] = v
		}
	}
}

// WithBasicAuth sets basic-auth credentials.
func WithBasicAuth(username, password string) HTTPOption {
	return func(d *HTTPDoer) {
		d.username = username
		d.password = password
	}
}

// WithBearerToken sets a bearer token.
func WithBearerToken(token string) HTTPOption {
	return func(d *HTTPDoer) {
		d.bearer = token
	}
}

// WithEndpoint overrides the operation endpoint path (default "/graph").
func WithEndpoint(path string) HTTPOption {
	return func(d *HTTPDoer) {
		if path != "" {
			d.endpoint = path
		}
	}
}

// WithHTTPLogger sets the logger (defaults to slog.Default).
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(d *HTTPDoer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRetry retries transient connection failures with exponential backoff.
// 4xx responses and decode failures are never retried. A call that timed out
// mid-flight may have executed on the server, so enable this only when the
// store deduplicates by envelope ID or the workload tolerates replays.
func WithRetry(cfg retry.Config) HTTPOption {
	return func(d *HTTPDoer) {
		d.retry = &cfg
	}
}

// NewHTTPDoer creates an HTTP transport for the given server base URL.
func NewHTTPDoer(baseURL string, opts ...HTTPOption) (*HTTPDoer, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPDoer", "NewHTTPDoer", "parse server URL")
	}
	if !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errors.WrapInvalid(
			fmt.Errorf("server URL %q must be absolute http(s)", baseURL),
			"HTTPDoer", "NewHTTPDoer", "validate server URL")
	}

	d := &HTTPDoer{
		base:     parsed,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		headers:  make(map[string]string),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Do implements Doer.
func (d *HTTPDoer) Do(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	if d.retry == nil {
		return d.doOnce(ctx, req)
	}

	var resp *wire.Response
	err := retry.Do(ctx, *d.retry, func() error {
		var callErr error
		resp, callErr = d.doOnce(ctx, req)
		return callErr
	})
	return resp, err
}

func (d *HTTPDoer) doOnce(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPDoer", "Do", "encode envelope")
	}

	target := d.base.JoinPath(d.endpoint).String()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapInvalid(err, "HTTPDoer", "Do", "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range d.headers {
		httpReq.Header.Set(k, v)
	}
	switch {
	case d.bearer != "":
		httpReq.Header.Set("Authorization", "Bearer "+d.bearer)
	case d.username != "":
		httpReq.SetBasicAuth(d.username, d.password)
	}

	start := time.Now()
	httpResp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, errors.WrapTransient(err, "HTTPDoer", "Do", "post envelope")
	}
	defer func() { _ = httpResp.Body.Close() }()

	d.logger.Debug("remote call completed",
		"op", req.Op,
		"status", httpResp.StatusCode,
		"duration", time.Since(start))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &wire.StatusError{
			Code:    httpResp.StatusCode,
			Message: errorMessage(httpResp),
		}
	}

	var resp wire.Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, errors.WrapTransient(err, "HTTPDoer", "Do", "decode response body")
	}
	return &resp, nil
}

// Ping implements Doer. URL validity is checked at construction and the init
// handshake follows immediately, so there is no separate probe request.
func (d *HTTPDoer) Ping(_ context.Context) error {
	if d.base == nil {
		return errors.ErrInvalidConfig
	}
	return nil
}

// Close implements Doer.
func (d *HTTPDoer) Close() error {
	d.client.CloseIdleConnections()
	return nil
}

// errorMessage extracts the best available diagnostic from an error response:
// the "error" field of a JSON body if present, otherwise the body text,
// otherwise the HTTP status line.
func errorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return resp.Status
	}

	var structured struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		if structured.Error != "" {
			return structured.Error
		}
		if structured.Message != "" {
			return structured.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return resp.Status
	}
	return text
}
