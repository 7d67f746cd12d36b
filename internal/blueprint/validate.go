package blueprint

import (
	"encoding/json"
	"fmt"
	"mime"
	"regexp"
	"strings"
)

var (
	statusRe      = regexp.MustCompile(`^[1-5][0-9][0-9]$`)
	uriVariableRe = regexp.MustCompile(`\{[+#./;?&]?([^}]*)\}`)
)

// ValidationError represents a single structural validation failure or warning.
type ValidationError struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"` // error, warning
	Line       int    `json:"line,omitempty"`
	Section    string `json:"section,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidateOptions tunes Validate.
type ValidateOptions struct {
	// StrictJSON turns malformed JSON example bodies into errors instead of warnings.
	StrictJSON bool
}

// Validate checks the structural invariants of a built document.
// Type references are checked by the resolver.
func Validate(d *Document, opts ValidateOptions) []ValidationError {
	if d == nil {
		return []ValidationError{{Type: "schema_error", Severity: "error", Message: "document is nil"}}
	}
	var errs []ValidationError

	seen := make(map[string]int)
	for _, ds := range d.DataStructures {
		if first, ok := seen[ds.Name]; ok {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", Line: ds.Line, Section: ds.Name,
				Message:    "duplicate data structure: " + ds.Name,
				Suggestion: fmt.Sprintf("Rename it or merge it with the declaration on line %d", first),
			})
			continue
		}
		seen[ds.Name] = ds.Line
	}

	for _, r := range d.Resources() {
		section := r.Name
		if section == "" {
			section = r.URI
		}
		if strings.TrimSpace(r.URI) == "" {
			errs = append(errs, ValidationError{
				Type: "schema_error", Severity: "error", Line: r.Line, Section: section,
				Message: "resource has no URI template", Suggestion: "Add a [/path] annotation to the heading",
			})
		}
		errs = append(errs, checkParameters(r.Parameters, r.URI, section)...)

		for _, a := range r.Actions {
			aSection := a.Name
			if aSection == "" {
				aSection = a.Method + " " + section
			}
			uri := a.URI
			if uri == "" {
				uri = r.URI
			}
			errs = append(errs, checkParameters(a.Parameters, uri, aSection)...)
			if len(a.Responses) == 0 {
				errs = append(errs, ValidationError{
					Type: "schema_error", Severity: "error", Line: a.Line, Section: aSection,
					Message: "action has no response", Suggestion: "Add a `+ Response 200` block",
				})
			}
			for _, p := range a.Requests {
				errs = append(errs, checkBody(p, aSection, opts)...)
			}
			for _, p := range a.Responses {
				if !statusRe.MatchString(p.Status) {
					msg := "response has no status code"
					if p.Status != "" {
						msg = "response status code is not a 3-digit code: " + p.Status
					}
					errs = append(errs, ValidationError{
						Type: "schema_error", Severity: "error", Line: p.Line, Section: aSection,
						Message: msg, Suggestion: "Write the status code as `+ Response 200`",
					})
				}
				errs = append(errs, checkBody(p, aSection, opts)...)
			}
		}
	}
	return errs
}

func checkBody(p *Payload, section string, opts ValidateOptions) []ValidationError {
	if p.Body == "" || !p.IsJSON() || json.Valid([]byte(p.Body)) {
		return nil
	}
	severity := "warning"
	if opts.StrictJSON {
		severity = "error"
	}
	return []ValidationError{{
		Type: "invalid_json", Severity: severity, Line: p.Line, Section: section,
		Message:    fmt.Sprintf("%s body is not valid JSON", p.MediaType),
		Suggestion: "Fix the example body or change the media type",
	}}
}

func checkParameters(params []*Parameter, uri, section string) []ValidationError {
	if len(params) == 0 {
		return nil
	}
	vars := URIVariables(uri)
	var errs []ValidationError
	for _, p := range params {
		if !vars[p.Name] {
			errs = append(errs, ValidationError{
				Type: "parameter_warning", Severity: "warning", Line: p.Line, Section: section,
				Message:    fmt.Sprintf("parameter %q does not appear in %s", p.Name, uri),
				Suggestion: "Add {" + p.Name + "} to the URI template",
			})
		}
	}
	return errs
}

// URIVariables returns the variable names of a URI template, e.g. id and
// limit for /questions/{id}{?limit}.
func URIVariables(uri string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range uriVariableRe.FindAllStringSubmatch(uri, -1) {
		for _, name := range strings.Split(m[1], ",") {
			name = strings.TrimSpace(name)
			name = strings.TrimSuffix(name, "*")
			if i := strings.IndexByte(name, ':'); i >= 0 {
				name = name[:i]
			}
			if name != "" {
				out[name] = true
			}
		}
	}
	return out
}

func isJSONMediaType(mt string) bool {
	if mt == "" {
		return false
	}
	base, _, err := mime.ParseMediaType(mt)
	if err != nil {
		base = strings.ToLower(strings.TrimSpace(mt))
	}
	return base == "application/json" || strings.HasSuffix(base, "+json")
}

// Groups returns every resource group in document order.
func (d *Document) Groups() []*ResourceGroup {
	var out []*ResourceGroup
	for _, s := range d.Sections {
		if s.Kind == SectionGroup && s.Group != nil {
			out = append(out, s.Group)
		}
	}
	return out
}

// Resources returns every resource in document order.
func (d *Document) Resources() []*Resource {
	var out []*Resource
	for _, g := range d.Groups() {
		out = append(out, g.Resources...)
	}
	return out
}

// DataStructure returns the first structure declared with name, or nil.
func (d *Document) DataStructure(name string) *DataStructureDef {
	for _, ds := range d.DataStructures {
		if ds.Name == name {
			return ds
		}
	}
	return nil
}

// MetadataValue returns the value of the first metadata field named key (case-insensitive).
func (d *Document) MetadataValue(key string) string {
	for _, m := range d.Metadata {
		if strings.EqualFold(m.Key, key) {
			return m.Value
		}
	}
	return ""
}
