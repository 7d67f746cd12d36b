package builder

import (
	"strings"

	"github.com/apib-renderer/renderer/internal/blueprint"
)

// member is a parsed list-item declaration:
//
//	name: `value` (type, attribute...) - description
type member struct {
	Name        string
	Value       string
	HasValue    bool
	Type        blueprint.TypeRef
	Required    bool
	Optional    bool
	Fixed       bool
	IsDefault   bool
	Description string
}

var typeAttributes = map[string]bool{
	"required": true, "optional": true, "fixed": true, "fixed-type": true,
	"nullable": true, "sample": true, "default": true,
}

func parseMember(text string) member {
	var m member
	head, desc := splitDescription(text)
	m.Description = desc

	head, spec := splitSpec(head)
	for _, part := range blueprint.SplitTypeSpec(spec) {
		switch p := strings.ToLower(part); {
		case p == "required":
			m.Required = true
		case p == "optional":
			m.Optional = true
		case p == "fixed":
			m.Fixed = true
		case p == "default":
			m.IsDefault = true
		case typeAttributes[p], p == "":
		case m.Type.IsZero():
			m.Type = blueprint.ParseTypeRef(part)
		}
	}

	if i := indexOutsideTicks(head, ':'); i >= 0 {
		m.Name = unquote(head[:i])
		m.Value = unquote(head[i+1:])
		m.HasValue = true
	} else {
		m.Name = unquote(head)
	}
	return m
}

// splitDescription splits at the first " - " that is outside backticks and
// parentheses. A trailing " -" with nothing after it is dropped.
func splitDescription(text string) (head, desc string) {
	depth, ticks := 0, false
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '`':
			ticks = !ticks
		case ticks:
		case c == '(' || c == '[':
			depth++
		case (c == ')' || c == ']') && depth > 0:
			depth--
		case c == '-' && depth == 0 && i > 0 && text[i-1] == ' ' && (i+1 == len(text) || text[i+1] == ' '):
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
		}
	}
	return strings.TrimSpace(text), ""
}

// splitSpec cuts a trailing parenthesised type specification off head.
func splitSpec(head string) (rest, spec string) {
	if !strings.HasSuffix(head, ")") || strings.Count(head, "`")%2 != 0 {
		return head, ""
	}
	depth := 0
	for i := len(head) - 1; i >= 0; i-- {
		switch head[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				if strings.Count(head[:i], "`")%2 != 0 {
					return head, ""
				}
				return strings.TrimSpace(head[:i]), head[i:]
			}
		}
	}
	return head, ""
}

func indexOutsideTicks(s string, c byte) int {
	ticks := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '`':
			ticks = !ticks
		case c:
			if !ticks {
				return i
			}
		}
	}
	return -1
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return collapseSpaces(s)
}

// parseTypeArgument reads the type out of a keyword argument such as
// `(Question)` or `(array[Choice], fixed)`.
func parseTypeArgument(arg string) blueprint.TypeRef {
	for _, part := range blueprint.SplitTypeSpec(arg) {
		if p := strings.ToLower(part); typeAttributes[p] || p == "" {
			continue
		}
		return blueprint.ParseTypeRef(part)
	}
	return blueprint.TypeRef{}
}

// splitMediaType separates `name (media/type)` into its parts.
func splitMediaType(arg string) (name, media string) {
	rest, spec := splitSpec(strings.TrimSpace(arg))
	if spec == "" {
		return collapseSpaces(rest), ""
	}
	return collapseSpaces(rest), strings.TrimSpace(spec[1 : len(spec)-1])
}
