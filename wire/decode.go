package wire

import (
	"encoding/json"
	"fmt"

	"github.com/c360/graphbridge/term"
)

// InitResult is the handshake payload: the server-assigned session ID, the
// namespace prefix table, and the effective data graph identity.
type InitResult struct {
	SessionID string            `json:"sessionId"`
	DataGraph string            `json:"dataGraph"`
	Prefixes  map[string]string `json:"prefixes"`
}

// DecodeInit decodes the init handshake response.
func DecodeInit(resp *Response) (*InitResult, error) {
	var out InitResult
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return nil, fmt.Errorf("wire: decode init result: %w", err)
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("wire: init result missing session id")
	}
	return &out, nil
}

// Row is one solution of a select query: variable name to bound term.
// Unbound variables are absent from the map.
type Row map[string]term.Term

// SelectResult holds the variable list and solution rows of a select query.
type SelectResult struct {
	Vars []string `json:"vars"`
	Rows []Row    `json:"rows"`
}

// DecodeSelect decodes a select query response.
func DecodeSelect(resp *Response) (*SelectResult, error) {
	var out SelectResult
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return nil, fmt.Errorf("wire: decode select result: %w", err)
	}
	return &out, nil
}

// DecodeBool decodes a bare boolean result (contains, ask-style queries).
func DecodeBool(resp *Response) (bool, error) {
	var out bool
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return false, fmt.Errorf("wire: decode boolean result: %w", err)
	}
	return out, nil
}

// DecodeTerms decodes a list of terms (property value lookups).
func DecodeTerms(resp *Response) ([]term.Term, error) {
	var out []term.Term
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return nil, fmt.Errorf("wire: decode term list: %w", err)
	}
	return out, nil
}

// DecodeAny decodes an arbitrary JSON result (server-side eval). Objects in
// term wire shape are returned as term.Term; everything else keeps its
// natural JSON mapping.
func DecodeAny(resp *Response) (any, error) {
	var decoded term.Term
	if err := json.Unmarshal(resp.Result, &decoded); err == nil {
		return decoded, nil
	}

	var out any
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return nil, fmt.Errorf("wire: decode eval result: %w", err)
	}
	return out, nil
}
