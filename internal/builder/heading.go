package builder

import (
	"regexp"
	"strings"
)

// Heading is the classification of a heading line's text. It is one of
// GroupHeading, DataStructuresHeading, ResourceHeading, ActionHeading or PlainHeading.
type Heading interface {
	heading()
}

type GroupHeading struct {
	Name string
}

type DataStructuresHeading struct{}

type ResourceHeading struct {
	Name string
	URI  string
}

type ActionHeading struct {
	Name   string
	Method string
	// URI is set when the annotation overrides the resource URI.
	URI string
}

type PlainHeading struct {
	Text string
}

func (GroupHeading) heading()          {}
func (DataStructuresHeading) heading() {}
func (ResourceHeading) heading()       {}
func (ActionHeading) heading()         {}
func (PlainHeading) heading()          {}

const methods = `GET|HEAD|POST|PUT|PATCH|DELETE|OPTIONS|TRACE|CONNECT|LINK|UNLINK`

var (
	annotatedRe  = regexp.MustCompile(`^(.*?)\s*\[\s*([^\[\]]*?)\s*\]$`)
	annotationRe = regexp.MustCompile(`^(?:(` + methods + `)(?:\s+(\S+))?|([/{]\S*))$`)
	bareActionRe = regexp.MustCompile(`^(` + methods + `)\s+([/{]\S*)$`)
	bareURIRe    = regexp.MustCompile(`^/\S*$`)
)

// ParseHeading classifies heading text. Bracketed annotations select the
// structural kinds: `Name [/uri]` is a resource, `Name [GET]` and
// `Name [GET /uri]` are actions. The unbracketed forms `/uri` and `GET /uri`
// are accepted too. Anything unrecognised is narrative prose.
func ParseHeading(text string) Heading {
	text = collapseSpaces(text)
	switch {
	case strings.HasPrefix(text, "Group "):
		return GroupHeading{Name: strings.TrimSpace(strings.TrimPrefix(text, "Group "))}
	case strings.EqualFold(text, "Data Structures"):
		return DataStructuresHeading{}
	}

	if m := annotatedRe.FindStringSubmatch(text); m != nil {
		if a := annotationRe.FindStringSubmatch(m[2]); a != nil {
			name := m[1]
			if a[3] != "" {
				return ResourceHeading{Name: name, URI: a[3]}
			}
			return ActionHeading{Name: name, Method: a[1], URI: a[2]}
		}
	}
	if m := bareActionRe.FindStringSubmatch(text); m != nil {
		return ActionHeading{Method: m[1], URI: m[2]}
	}
	if bareURIRe.MatchString(text) {
		return ResourceHeading{URI: text}
	}
	return PlainHeading{Text: text}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
