package wire

import (
	"encoding/json"
	"fmt"

	ld "github.com/piprate/json-gold/ld"

	"github.com/c360/graphbridge/term"
)

// Quad is one statement of a construct result, decoded into the term model.
// Graph is empty for the default graph.
type Quad struct {
	Subject   term.Term
	Predicate term.Term
	Object    term.Term
	Graph     string
}

// DecodeConstruct interprets the JSON-LD document a construct operation
// returns and converts it into quads over the term model.
func DecodeConstruct(doc []byte) ([]Quad, error) {
	var input any
	if err := json.Unmarshal(doc, &input); err != nil {
		return nil, fmt.Errorf("wire: construct result is not JSON: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	result, err := proc.ToRDF(input, opts)
	if err != nil {
		return nil, fmt.Errorf("wire: construct result is not JSON-LD: %w", err)
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("wire: unexpected ToRDF result %T", result)
	}

	var quads []Quad
	for graphName, ldQuads := range dataset.Graphs {
		graph := graphName
		if graph == "@default" {
			graph = ""
		}
		for _, q := range ldQuads {
			decoded, err := quadFromLD(q, graph)
			if err != nil {
				return nil, err
			}
			quads = append(quads, decoded)
		}
	}
	return quads, nil
}

func quadFromLD(q *ld.Quad, graph string) (Quad, error) {
	s, err := termFromNode(q.Subject)
	if err != nil {
		return Quad{}, err
	}
	p, err := termFromNode(q.Predicate)
	if err != nil {
		return Quad{}, err
	}
	o, err := termFromNode(q.Object)
	if err != nil {
		return Quad{}, err
	}
	return Quad{Subject: s, Predicate: p, Object: o, Graph: graph}, nil
}

func termFromNode(node ld.Node) (term.Term, error) {
	switch n := node.(type) {
	case ld.IRI:
		return term.NewURI(n.Value)
	case ld.BlankNode:
		return term.NewURI(n.Attribute)
	case ld.Literal:
		if n.Language != "" {
			return term.NewLangString(n.Value, n.Language)
		}
		return term.NewTyped(n.Value, n.Datatype)
	default:
		return term.Term{}, fmt.Errorf("wire: unexpected JSON-LD node %T", node)
	}
}
