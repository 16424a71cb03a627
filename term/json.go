package term

import "encoding/json"

// wireTerm is the JSON shape a term takes on the wire. The variant is
// discriminated by which field is present: "uri" for URIs (blank nodes keep
// their "_:" prefix), "lex" for literals. The default string datatype is
// omitted; absence of both "lang" and "datatype" implies xsd:string.
type wireTerm struct {
	URI      *string `json:"uri,omitempty"`
	Lex      *string `json:"lex,omitempty"`
	Lang     string  `json:"lang,omitempty"`
	Datatype string  `json:"datatype,omitempty"`
}

// MarshalJSON implements json.Marshaler using the field-presence wire form.
func (t Term) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case KindURI:
		return json.Marshal(wireTerm{URI: &t.value})
	case KindLiteral:
		return json.Marshal(wireTerm{Lex: &t.value, Lang: t.language, Datatype: t.datatype})
	default:
		return nil, &ConstructionError{Value: t, Reason: "cannot encode zero term"}
	}
}

// UnmarshalJSON implements json.Unmarshaler. The variant is determined once
// here, at the serialization boundary: an object carrying both "uri" and
// "lex", or neither, is rejected rather than guessed at.
func (t *Term) UnmarshalJSON(data []byte) error {
	var w wireTerm
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case w.URI != nil && w.Lex != nil:
		return &ConstructionError{Value: string(data), Reason: "term carries both uri and lex"}
	case w.URI != nil:
		if w.Lang != "" || w.Datatype != "" {
			return &ConstructionError{Value: string(data), Reason: "uri term cannot carry lang or datatype"}
		}
		decoded, err := NewURI(*w.URI)
		if err != nil {
			return err
		}
		*t = decoded
		return nil
	case w.Lex != nil:
		decoded, err := newLiteral(*w.Lex, w.Lang, w.Datatype)
		if err != nil {
			return err
		}
		*t = decoded
		return nil
	default:
		return &ConstructionError{Value: string(data), Reason: "term carries neither uri nor lex"}
	}
}
