package wire

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/graphbridge/term"
)

func TestNewRequestAssignsCorrelationID(t *testing.T) {
	req := NewRequest(OpSelect, map[string]any{"query": "..."})
	require.NotEmpty(t, req.ID)
	_, err := uuid.Parse(req.ID)
	assert.NoError(t, err, "request ID should be a uuid")

	other := NewRequest(OpSelect, nil)
	assert.NotEqual(t, req.ID, other.ID)
}

func TestBatchRequestPreservesOrder(t *testing.T) {
	ops := []Operation{
		{Op: OpAdd, Args: map[string]any{"n": 1}},
		{Op: OpRemove, Args: map[string]any{"n": 2}},
		{Op: OpAdd, Args: map[string]any{"n": 3}},
	}
	req := BatchRequest(ops)
	assert.Equal(t, OpBatch, req.Op)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded struct {
		Args struct {
			Operations []Operation `json:"operations"`
		} `json:"args"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Args.Operations, 3)
	assert.Equal(t, OpAdd, decoded.Args.Operations[0].Op)
	assert.Equal(t, OpRemove, decoded.Args.Operations[1].Op)
	assert.Equal(t, OpAdd, decoded.Args.Operations[2].Op)
}

func TestRequestCarriesTermArguments(t *testing.T) {
	obj := term.NewString("hello")
	req := NewRequest(OpAdd, map[string]any{
		"subject":   mustURI(t, "http://example.org/a"),
		"predicate": mustURI(t, "http://example.org/p"),
		"object":    obj,
	})

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"uri":"http://example.org/a"`)
	assert.Contains(t, string(data), `"lex":"hello"`)
}

func TestStatusError(t *testing.T) {
	withCode := &StatusError{Code: 404, Message: "graph not found"}
	assert.Equal(t, "server returned 404: graph not found", withCode.Error())

	withoutCode := &StatusError{Message: "bad payload"}
	assert.Equal(t, "server error: bad payload", withoutCode.Error())
}

func mustURI(t *testing.T, v string) term.Term {
	t.Helper()
	u, err := term.NewURI(v)
	require.NoError(t, err)
	return u
}
