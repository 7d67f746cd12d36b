package resolver

import (
	"fmt"
	"strings"
)

// UnresolvedReferenceError names a type that is neither a primitive nor a
// declared data structure.
type UnresolvedReferenceError struct {
	Name    string
	Line    int
	Context string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("line %d: unresolved type reference %q in %s", e.Line, e.Name, e.Context)
}

func (e *UnresolvedReferenceError) ErrorType() string { return "unresolved_reference" }

func (e *UnresolvedReferenceError) SourceLine() int { return e.Line }

func (e *UnresolvedReferenceError) SourceSection() string { return e.Context }

// CyclicReferenceError reports structures that would have to expand into
// themselves through inheritance or Include.
type CyclicReferenceError struct {
	// Path starts and ends with the same structure name.
	Path []string
	Line int
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("line %d: cyclic type expansion: %s", e.Line, strings.Join(e.Path, " -> "))
}

func (e *CyclicReferenceError) ErrorType() string { return "cyclic_reference" }

func (e *CyclicReferenceError) SourceLine() int { return e.Line }

func (e *CyclicReferenceError) SourceSection() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[0]
}
