package term

import (
	"math"
	"strconv"
	"time"
)

// Resolver expands a QName ("rdfs:label") into a full URI. The session's
// prefix table, obtained during the handshake, is the usual implementation.
type Resolver interface {
	ExpandQName(qname string) (string, error)
}

// Descriptor is the explicit construction form for a Term. Exactly one of
// URI, QName, or Lex must be set; Lang and Datatype qualify Lex and are
// mutually exclusive.
type Descriptor struct {
	URI      string `json:"uri,omitempty"`
	QName    string `json:"qname,omitempty"`
	Lex      string `json:"lex,omitempty"`
	HasLex   bool   `json:"-"` // distinguishes an empty lexical form from an absent one
	Lang     string `json:"lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// FromValue converts a native Go value into a Term:
//
//	string          -> plain string literal
//	bool            -> xsd:boolean literal
//	int kinds       -> xsd:integer literal
//	float32/float64 -> xsd:integer when integral, xsd:double otherwise
//	time.Time       -> xsd:dateTime literal (RFC 3339)
//	Term            -> passed through unchanged
//	Descriptor      -> explicit construction (QName requires a Resolver,
//	                   use FromDescriptor)
//
// Any other input returns a *ConstructionError.
func FromValue(v any) (Term, error) {
	switch val := v.(type) {
	case Term:
		if val.IsZero() {
			return Term{}, &ConstructionError{Value: v, Reason: "zero term"}
		}
		return val, nil
	case string:
		return NewString(val), nil
	case bool:
		return NewTyped(strconv.FormatBool(val), XSDBoolean)
	case int:
		return NewTyped(strconv.FormatInt(int64(val), 10), XSDInteger)
	case int8:
		return NewTyped(strconv.FormatInt(int64(val), 10), XSDInteger)
	case int16:
		return NewTyped(strconv.FormatInt(int64(val), 10), XSDInteger)
	case int32:
		return NewTyped(strconv.FormatInt(int64(val), 10), XSDInteger)
	case int64:
		return NewTyped(strconv.FormatInt(val, 10), XSDInteger)
	case uint:
		return NewTyped(strconv.FormatUint(uint64(val), 10), XSDInteger)
	case uint8:
		return NewTyped(strconv.FormatUint(uint64(val), 10), XSDInteger)
	case uint16:
		return NewTyped(strconv.FormatUint(uint64(val), 10), XSDInteger)
	case uint32:
		return NewTyped(strconv.FormatUint(uint64(val), 10), XSDInteger)
	case uint64:
		return NewTyped(strconv.FormatUint(val, 10), XSDInteger)
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case time.Time:
		return NewTyped(val.Format(time.RFC3339Nano), XSDDateTime)
	case Descriptor:
		return FromDescriptor(val, nil)
	case *Descriptor:
		if val == nil {
			return Term{}, &ConstructionError{Value: v, Reason: "nil descriptor"}
		}
		return FromDescriptor(*val, nil)
	default:
		return Term{}, &ConstructionError{Value: v, Reason: "unrecognized value shape"}
	}
}

func fromFloat(f float64) (Term, error) {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return NewTyped(strconv.FormatFloat(f, 'f', 0, 64), XSDInteger)
	}
	return NewTyped(strconv.FormatFloat(f, 'g', -1, 64), XSDDouble)
}

// FromDescriptor constructs a Term from an explicit descriptor. The resolver
// is consulted only for QName expansion and may be nil otherwise.
func FromDescriptor(d Descriptor, r Resolver) (Term, error) {
	set := 0
	if d.URI != "" {
		set++
	}
	if d.QName != "" {
		set++
	}
	if d.Lex != "" || d.HasLex {
		set++
	}
	if set != 1 {
		return Term{}, &ConstructionError{
			Value:  d,
			Reason: "descriptor must set exactly one of uri, qname, or lex",
		}
	}

	switch {
	case d.URI != "":
		return NewURI(d.URI)
	case d.QName != "":
		if r == nil {
			return Term{}, &ConstructionError{Value: d, Reason: "qname requires a prefix resolver"}
		}
		uri, err := r.ExpandQName(d.QName)
		if err != nil {
			return Term{}, err
		}
		return NewURI(uri)
	default:
		return newLiteral(d.Lex, d.Lang, d.Datatype)
	}
}
