package term

import "fmt"

// ConstructionError reports that a native value or descriptor could not be
// converted into a Term. It is raised synchronously at the call site, before
// anything is queued or sent.
type ConstructionError struct {
	Value  any
	Reason string
}

// Error implements the error interface
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("term: cannot construct term from %v: %s", e.Value, e.Reason)
}
