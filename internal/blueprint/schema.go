package blueprint

import (
	"strconv"
	"strings"
)

// Document is the root of a parsed API description.
type Document struct {
	Format string `json:"format,omitempty"`
	Host   string `json:"host,omitempty"`
	Title  string `json:"title"`
	// Metadata holds every header line in source order, including FORMAT, HOST and TITLE.
	Metadata []MetadataField `json:"metadata,omitempty"`
	// Description is Markdown found before the first heading.
	Description    string              `json:"description,omitempty"`
	Sections       []*Section          `json:"sections"`
	DataStructures []*DataStructureDef `json:"dataStructures,omitempty"`
}

// MetadataField is one `KEY: value` header line.
type MetadataField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SectionKind distinguishes narrative prose from structural sections.
type SectionKind int

const (
	SectionProse SectionKind = iota + 1
	SectionDataStructures
	SectionGroup
)

func (k SectionKind) String() string {
	switch k {
	case SectionProse:
		return "prose"
	case SectionDataStructures:
		return "data_structures"
	case SectionGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Section is a top-level (or, for prose, nested) part of the document.
type Section struct {
	Kind  SectionKind `json:"kind"`
	Title string      `json:"title"`
	Level int         `json:"level"`
	Line  int         `json:"line"`
	// Body is Markdown prose.
	Body        string     `json:"body,omitempty"`
	Subsections []*Section `json:"subsections,omitempty"`

	Group      *ResourceGroup      `json:"group,omitempty"`
	Structures []*DataStructureDef `json:"structures,omitempty"`
}

// DataStructureDef is a named object type declaration.
type DataStructureDef struct {
	Name string `json:"name"`
	// Base is the declared base type: "object" or another structure name.
	Base        TypeRef     `json:"base"`
	Description string      `json:"description,omitempty"`
	Fields      []*FieldDef `json:"fields,omitempty"`
	Includes    []TypeRef   `json:"includes,omitempty"`
	Line        int         `json:"line"`
}

// FieldDef is one attribute of a structure or an inline attribute list.
type FieldDef struct {
	Name        string      `json:"name"`
	Type        TypeRef     `json:"type"`
	Required    bool        `json:"required,omitempty"`
	Fixed       bool        `json:"fixed,omitempty"`
	Description string      `json:"description,omitempty"`
	Sample      string      `json:"sample,omitempty"`
	HasSample   bool        `json:"hasSample,omitempty"`
	Default     string      `json:"default,omitempty"`
	Values      []EnumValue `json:"values,omitempty"`
	Fields      []*FieldDef `json:"fields,omitempty"`
	Includes    []TypeRef   `json:"includes,omitempty"`
	Line        int         `json:"line"`
}

// EnumValue is one allowed value of an enum parameter or attribute.
type EnumValue struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// ResourceGroup is a named, purely organisational collection of resources.
type ResourceGroup struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Resources   []*Resource `json:"resources"`
	Line        int         `json:"line"`
}

// Resource is an addressable entity identified by a URI template.
type Resource struct {
	Name        string       `json:"name"`
	URI         string       `json:"uri"`
	Description string       `json:"description,omitempty"`
	Parameters  []*Parameter `json:"parameters,omitempty"`
	Attributes  *Attributes  `json:"attributes,omitempty"`
	Actions     []*Action    `json:"actions"`
	// IgnoreTOC marks resources created implicitly for a bare action heading.
	IgnoreTOC bool `json:"ignoreTOC,omitempty"`
	Line      int  `json:"line"`
}

// Parameter is a URI or query parameter declaration.
type Parameter struct {
	Name        string      `json:"name"`
	Example     string      `json:"example,omitempty"`
	Type        TypeRef     `json:"type"`
	Required    bool        `json:"required"`
	Description string      `json:"description,omitempty"`
	Default     string      `json:"default,omitempty"`
	Values      []EnumValue `json:"values,omitempty"`
	Line        int         `json:"line"`
}

// Action is one HTTP method bound operation of a resource.
type Action struct {
	Name        string       `json:"name"`
	Method      string       `json:"method"`
	URI         string       `json:"uri,omitempty"`
	Description string       `json:"description,omitempty"`
	Parameters  []*Parameter `json:"parameters,omitempty"`
	Attributes  *Attributes  `json:"attributes,omitempty"`
	Requests    []*Payload   `json:"requests,omitempty"`
	Responses   []*Payload   `json:"responses"`
	Line        int          `json:"line"`
}

// Attributes declares that a payload conforms to a named structure and/or
// lists inline fields.
type Attributes struct {
	Ref      *TypeRef    `json:"ref,omitempty"`
	Fields   []*FieldDef `json:"fields,omitempty"`
	Includes []TypeRef   `json:"includes,omitempty"`
	Line     int         `json:"line"`
}

// Empty reports whether the attributes carry neither a reference nor fields.
func (a *Attributes) Empty() bool {
	return a == nil || (a.Ref == nil && len(a.Fields) == 0 && len(a.Includes) == 0)
}

// Header is one HTTP header of a payload.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Payload is a request or a response.
type Payload struct {
	// Name is the optional request identifier.
	Name string `json:"name,omitempty"`
	// Status is the response status code as written; empty for requests.
	Status      string      `json:"status,omitempty"`
	MediaType   string      `json:"mediaType,omitempty"`
	Description string      `json:"description,omitempty"`
	Headers     []Header    `json:"headers,omitempty"`
	Attributes  *Attributes `json:"attributes,omitempty"`
	Body        string      `json:"body,omitempty"`
	Schema      string      `json:"schema,omitempty"`
	Line        int         `json:"line"`
}

// StatusCode returns the numeric status code, or 0 when the code is malformed.
func (p *Payload) StatusCode() int {
	if !statusRe.MatchString(p.Status) {
		return 0
	}
	n, _ := strconv.Atoi(p.Status)
	return n
}

// IsJSON reports whether the payload media type is JSON or a +json suffix type.
func (p *Payload) IsJSON() bool {
	return isJSONMediaType(p.MediaType)
}

// Header returns the first header with the given name (case-insensitive).
func (p *Payload) Header(name string) (string, bool) {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
