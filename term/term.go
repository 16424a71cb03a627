// Package term implements the canonical RDF term model used across the
// bridge: a tagged union of URI and literal, plus conversion from native Go
// values, equality rules, and the JSON wire encoding.
package term

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Term.
type Kind uint8

const (
	// KindURI represents a resource identifier. Blank nodes use the
	// reserved "_:" local-prefix convention rather than a third variant.
	KindURI Kind = iota + 1
	// KindLiteral represents an RDF literal.
	KindLiteral
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindURI:
		return "uri"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is an immutable RDF value. Exactly one variant is populated; the
// discriminant is fixed at construction, never inferred afterwards.
//
// For literals the default string datatype is stored as the empty string, so
// that a literal built from a bare Go string and one built with an explicit
// xsd:string datatype compare equal.
type Term struct {
	kind     Kind
	value    string // URI value, or lexical form for literals
	language string // literals only, mutually exclusive with datatype
	datatype string // literals only, "" means xsd:string
}

// NewURI creates a URI term. A value with the reserved "_:" prefix denotes a
// blank node and round-trips byte-for-byte.
func NewURI(value string) (Term, error) {
	if value == "" {
		return Term{}, &ConstructionError{Value: value, Reason: "empty URI"}
	}
	return Term{kind: KindURI, value: value}, nil
}

// NewBlank creates a blank node term with the given local identifier.
func NewBlank(id string) (Term, error) {
	if id == "" {
		return Term{}, &ConstructionError{Value: id, Reason: "empty blank node id"}
	}
	return Term{kind: KindURI, value: "_:" + id}, nil
}

// NewString creates a plain string literal (default xsd:string datatype).
func NewString(lex string) Term {
	return Term{kind: KindLiteral, value: lex}
}

// NewLangString creates a language-tagged string literal.
func NewLangString(lex, lang string) (Term, error) {
	if lang == "" {
		return Term{}, &ConstructionError{Value: lex, Reason: "empty language tag"}
	}
	return Term{kind: KindLiteral, value: lex, language: lang}, nil
}

// NewTyped creates a literal with an explicit datatype URI. An empty or
// xsd:string datatype yields a plain string literal.
func NewTyped(lex, datatype string) (Term, error) {
	if datatype == XSDString {
		datatype = ""
	}
	return Term{kind: KindLiteral, value: lex, datatype: datatype}, nil
}

// newLiteral builds a literal from optional language and datatype, enforcing
// their mutual exclusivity.
func newLiteral(lex, lang, datatype string) (Term, error) {
	if datatype == XSDString {
		datatype = ""
	}
	if lang != "" && datatype != "" {
		return Term{}, &ConstructionError{
			Value:  lex,
			Reason: "literal cannot carry both language and datatype",
		}
	}
	return Term{kind: KindLiteral, value: lex, language: lang, datatype: datatype}, nil
}

// Kind returns the variant of the term.
func (t Term) Kind() Kind { return t.kind }

// IsZero reports whether the term is the zero value (no variant populated).
func (t Term) IsZero() bool { return t.kind == 0 }

// IsURI reports whether the term is a URI (including blank nodes).
func (t Term) IsURI() bool { return t.kind == KindURI }

// IsBlank reports whether the term is a blank node.
func (t Term) IsBlank() bool {
	return t.kind == KindURI && strings.HasPrefix(t.value, "_:")
}

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool { return t.kind == KindLiteral }

// URI returns the URI value, or "" for literals.
func (t Term) URI() string {
	if t.kind != KindURI {
		return ""
	}
	return t.value
}

// Lex returns the lexical form, or "" for URIs.
func (t Term) Lex() string {
	if t.kind != KindLiteral {
		return ""
	}
	return t.value
}

// Language returns the language tag, or "" when absent.
func (t Term) Language() string { return t.language }

// Datatype returns the datatype URI of a literal. Plain string literals
// report XSDString; language-tagged literals report RDFLangString.
func (t Term) Datatype() string {
	if t.kind != KindLiteral {
		return ""
	}
	if t.language != "" {
		return RDFLangString
	}
	if t.datatype == "" {
		return XSDString
	}
	return t.datatype
}

// Equal reports whether two terms are equal. URI terms are equal iff their
// string values are equal. Literals are equal iff their lexical forms match
// and their language tags match and their datatypes match, with the default
// string datatype normalized at construction.
func (t Term) Equal(other Term) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KindURI:
		return t.value == other.value
	case KindLiteral:
		return t.value == other.value &&
			t.language == other.language &&
			t.datatype == other.datatype
	default:
		return false
	}
}

// Equal reports whether a and b are equal under the term equality rules.
func Equal(a, b Term) bool { return a.Equal(b) }

// String returns a human-readable rendering: bare value for URIs, quoted
// lexical form with language or datatype suffix for literals.
func (t Term) String() string {
	switch t.kind {
	case KindURI:
		return t.value
	case KindLiteral:
		if t.language != "" {
			return fmt.Sprintf("%q@%s", t.value, t.language)
		}
		if t.datatype != "" {
			return fmt.Sprintf("%q^^<%s>", t.value, t.datatype)
		}
		return fmt.Sprintf("%q", t.value)
	default:
		return "<zero term>"
	}
}
