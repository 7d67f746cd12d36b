package builder

import "fmt"

// UnknownSectionKindError is returned when a structural keyword appears
// where no enclosing element can own it.
type UnknownSectionKindError struct {
	Keyword string
	Line    int
	// Section is the nearest enclosing heading, or "document".
	Section string
	Reason  string
}

func (e *UnknownSectionKindError) Error() string {
	return fmt.Sprintf("line %d: %s section %s (in %s)", e.Line, e.Keyword, e.Reason, e.Section)
}

func (e *UnknownSectionKindError) ErrorType() string { return "unknown_section_kind" }

func (e *UnknownSectionKindError) SourceLine() int { return e.Line }

func (e *UnknownSectionKindError) SourceSection() string { return e.Section }
