package term

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	u, _ := NewURI("http://example.org/a")
	blank, _ := NewBlank("b1")
	lang, _ := NewLangString("hello", "en")
	typed, _ := NewTyped("5", XSDInteger)

	tests := []struct {
		name string
		term Term
	}{
		{"uri", u},
		{"blank node", blank},
		{"plain literal", NewString("hello")},
		{"empty literal", NewString("")},
		{"lang literal", lang},
		{"typed literal", typed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.term)
			require.NoError(t, err)

			var decoded Term
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.True(t, tc.term.Equal(decoded), "round-trip changed term: %s -> %s", tc.term, decoded)
		})
	}
}

func TestJSONWireFormat(t *testing.T) {
	u, _ := NewURI("http://example.org/a")
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uri":"http://example.org/a"}`, string(data))

	// Default string datatype stays off the wire.
	data, err = json.Marshal(NewString("hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"lex":"hi"}`, string(data))

	lang, _ := NewLangString("hi", "en")
	data, err = json.Marshal(lang)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lex":"hi","lang":"en"}`, string(data))
}

func TestJSONBlankNodeRoundTripsByteForByte(t *testing.T) {
	blank, _ := NewURI("_:gen42")
	data, err := json.Marshal(blank)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uri":"_:gen42"}`, string(data))

	var decoded Term
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "_:gen42", decoded.URI())
	assert.True(t, decoded.IsBlank())
}

func TestJSONDecodeRejectsAmbiguousShapes(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"both uri and lex", `{"uri":"http://example.org/a","lex":"x"}`},
		{"neither", `{"lang":"en"}`},
		{"empty object", `{}`},
		{"uri with lang", `{"uri":"http://example.org/a","lang":"en"}`},
		{"lex with lang and datatype", `{"lex":"x","lang":"en","datatype":"` + XSDInteger + `"}`},
		{"empty uri", `{"uri":""}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var decoded Term
			assert.Error(t, json.Unmarshal([]byte(tc.data), &decoded))
		})
	}
}

func TestJSONMarshalZeroTermFails(t *testing.T) {
	_, err := json.Marshal(Term{})
	assert.Error(t, err)
}

func TestScalarWireRoundTrip(t *testing.T) {
	// Terms from native scalars survive the wire encoding with equality
	// preserved against a descriptor-built term.
	for _, v := range []any{"txt", true, 7, 2.5} {
		original, err := FromValue(v)
		require.NoError(t, err)

		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Term
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, original.Equal(decoded), "wire round-trip for %v", v)
	}
}
