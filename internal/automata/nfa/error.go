package nfa

import "fmt"

// BuildError reports a failure while constructing an NFA fragment. Build
// does not return it for a quantifier bound too wide to unroll; that case
// is reported as *automata.ComplexityError.
type BuildError struct {
	Message string
	Offset  int
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("nfa: %s (at offset %d)", e.Message, e.Offset)
}
