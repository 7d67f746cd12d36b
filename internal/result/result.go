package result

import (
	"errors"
	"sort"
)

// Error represents a fatal problem found while rendering a document.
type Error struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Line       int    `json:"line,omitempty"`
	Section    string `json:"section,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning represents a non-fatal problem, such as a sample value that does
// not match its declared type.
type Warning struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Line       int    `json:"line,omitempty"`
	Section    string `json:"section,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// RenderResult is the result of rendering one document.
type RenderResult struct {
	Name     string            `json:"name,omitempty"`
	Success  bool              `json:"success"`
	Files    map[string][]byte `json:"-"` // filename -> content
	Errors   []Error           `json:"errors,omitempty"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

// FileNames returns the names of the rendered files in sorted order.
func (r *RenderResult) FileNames() []string {
	names := make([]string, 0, len(r.Files))
	for name := range r.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fail records err and marks the result unsuccessful.
func (r *RenderResult) Fail(err Error) {
	r.Success = false
	r.Errors = append(r.Errors, err)
}

// typed is implemented by the stage errors of the pipeline.
type typed interface {
	ErrorType() string
}

type located interface {
	SourceLine() int
	SourceSection() string
}

// FromError converts a stage error into a reportable Error. Errors that do not
// carry a type are reported as internal errors.
func FromError(err error, suggestion string) Error {
	out := Error{Type: "internal_error", Severity: "error", Message: err.Error(), Suggestion: suggestion}
	var t typed
	if errors.As(err, &t) {
		out.Type = t.ErrorType()
	}
	var l located
	if errors.As(err, &l) {
		out.Line = l.SourceLine()
		out.Section = l.SourceSection()
	}
	return out
}
