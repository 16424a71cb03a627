package term

// Datatype URIs used by native value conversion. These are conversion
// machinery for the term model, not a vocabulary layer.
const (
	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble   = "http://www.w3.org/2001/XMLSchema#double"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"

	// RDFLangString is the datatype reported for language-tagged literals.
	RDFLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)
