package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/c360/graphbridge/errors"
	"github.com/c360/graphbridge/metric"
	"github.com/c360/graphbridge/wire"
)

const streamEndpoint = "/graph/stream"

// streamFrame is one WebSocket message of a result stream.
type streamFrame struct {
	Row   wire.Row `json:"row,omitempty"`
	Done  bool     `json:"done,omitempty"`
	Error string   `json:"error,omitempty"`
}

// RowStream yields select solutions incrementally over a dedicated WebSocket
// connection. The bridge stays free while a stream is open: streaming reads
// do not count against its single-flight limit.
type RowStream struct {
	conn    *websocket.Conn
	metrics *metric.Metrics
	closed  bool
}

// SelectStream runs a select query and streams its solution rows instead of
// materializing them. Requires Config.Streaming; pending writes are flushed
// first under the usual read policy.
func (s *Session) SelectStream(ctx context.Context, query string, bindings map[string]any) (*RowStream, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if !s.cfg.Streaming {
		return nil, errors.ErrStreamingDisabled
	}
	if !s.cfg.IndependentReads {
		if err := s.queue.Flush(ctx); err != nil {
			return nil, err
		}
	}

	args, err := s.bindingArgs("query", query, bindings)
	if err != nil {
		return nil, err
	}

	target, err := s.streamURL()
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	for k, v := range s.cfg.Request.Headers {
		header.Set(k, v)
	}
	switch {
	case s.cfg.Request.BearerToken != "":
		header.Set("Authorization", "Bearer "+s.cfg.Request.BearerToken)
	case s.cfg.Request.Username != "":
		header.Set("Authorization", "Basic "+basicAuth(s.cfg.Request.Username, s.cfg.Request.Password))
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, &wire.StatusError{Code: resp.StatusCode, Message: err.Error()}
		}
		return nil, errors.WrapTransient(err, "Session", "SelectStream", "dial stream endpoint")
	}

	if err := conn.WriteJSON(s.newRequest(wire.OpSelect, args)); err != nil {
		_ = conn.Close()
		return nil, errors.WrapTransient(err, "Session", "SelectStream", "send query")
	}

	if s.metrics != nil {
		s.metrics.StreamsActive.Inc()
	}
	return &RowStream{conn: conn, metrics: s.metrics}, nil
}

// basicAuth encodes credentials the way http.Request.SetBasicAuth does.
func basicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// streamURL derives the ws(s) URL of the stream endpoint from the server URL.
func (s *Session) streamURL() (string, error) {
	parsed, err := url.Parse(s.cfg.ServerURL)
	if err != nil {
		return "", errors.WrapInvalid(err, "Session", "SelectStream", "parse server URL")
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", errors.WrapInvalid(
			fmt.Errorf("cannot stream over scheme %q", parsed.Scheme),
			"Session", "SelectStream", "derive stream URL")
	}
	return parsed.JoinPath(streamEndpoint).String(), nil
}

// Next returns the next solution row. It returns io.EOF once the server
// signals completion and a decorated error when the server aborts the
// stream.
func (rs *RowStream) Next() (wire.Row, error) {
	if rs.closed {
		return nil, io.EOF
	}

	var frame streamFrame
	if err := rs.conn.ReadJSON(&frame); err != nil {
		rs.terminate()
		return nil, errors.WrapTransient(err, "RowStream", "Next", "read frame")
	}

	switch {
	case frame.Error != "":
		rs.terminate()
		return nil, &wire.StatusError{Message: frame.Error}
	case frame.Done:
		rs.terminate()
		return nil, io.EOF
	default:
		if rs.metrics != nil {
			rs.metrics.StreamRows.Inc()
		}
		return frame.Row, nil
	}
}

// Close releases the stream connection. Always safe, including mid-stream
// and after Next returned io.EOF.
func (rs *RowStream) Close() error {
	if rs.closed {
		return nil
	}
	_ = rs.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	rs.terminate()
	return nil
}

func (rs *RowStream) terminate() {
	if rs.closed {
		return
	}
	rs.closed = true
	_ = rs.conn.Close()
	if rs.metrics != nil {
		rs.metrics.StreamsActive.Dec()
	}
}
