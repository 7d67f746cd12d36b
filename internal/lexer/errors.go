package lexer

import "fmt"

// MalformedStructureError is returned when an indented block's parent context
// cannot be determined.
type MalformedStructureError struct {
	Line int
	// Context names the block that was open when the line was read, or "document".
	Context string
	Text    string
	Reason  string
}

func (e *MalformedStructureError) Error() string {
	return fmt.Sprintf("line %d: malformed structure: %s (open context: %s): %q", e.Line, e.Reason, e.Context, e.Text)
}

func (e *MalformedStructureError) ErrorType() string { return "malformed_structure" }

func (e *MalformedStructureError) SourceLine() int { return e.Line }

func (e *MalformedStructureError) SourceSection() string { return e.Context }
