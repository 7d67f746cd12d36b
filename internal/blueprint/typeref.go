package blueprint

import (
	"strings"
)

// TypeKind classifies a type reference.
type TypeKind int

const (
	TypePrimitive TypeKind = iota + 1
	TypeArray
	TypeEnum
	TypeNamed
)

func (k TypeKind) String() string {
	switch k {
	case TypePrimitive:
		return "primitive"
	case TypeArray:
		return "array"
	case TypeEnum:
		return "enum"
	case TypeNamed:
		return "named"
	default:
		return "unspecified"
	}
}

// Primitive type names understood without a declaration.
const (
	String  = "string"
	Number  = "number"
	Boolean = "boolean"
	Object  = "object"
	Array   = "array"
	Enum    = "enum"
)

var primitives = map[string]bool{String: true, Number: true, Boolean: true, Object: true, Array: true, Enum: true}

// IsPrimitive reports whether name is a built-in type.
func IsPrimitive(name string) bool {
	return primitives[name]
}

// TypeRef is a declared type: a primitive, array[T...], enum[T] or a
// reference to a named data structure. The zero value means no type was written.
type TypeRef struct {
	Kind TypeKind `json:"kind,omitempty"`
	Name string   `json:"name,omitempty"`
	// Elem holds the element types of arrays and the value type of enums.
	Elem []TypeRef `json:"elem,omitempty"`
}

// IsZero reports whether no type was declared.
func (t TypeRef) IsZero() bool {
	return t.Kind == 0
}

// IsNamed reports whether t refers to a data structure.
func (t TypeRef) IsNamed() bool {
	return t.Kind == TypeNamed
}

func (t TypeRef) String() string {
	switch t.Kind {
	case TypeArray, TypeEnum:
		if len(t.Elem) == 0 {
			return t.Name
		}
		parts := make([]string, len(t.Elem))
		for i, e := range t.Elem {
			parts[i] = e.String()
		}
		return t.Name + "[" + strings.Join(parts, ", ") + "]"
	default:
		return t.Name
	}
}

// Named returns every data structure name t mentions, outermost first.
func (t TypeRef) Named() []string {
	var out []string
	var walk func(TypeRef)
	walk = func(r TypeRef) {
		if r.Kind == TypeNamed {
			out = append(out, r.Name)
		}
		for _, e := range r.Elem {
			walk(e)
		}
	}
	walk(t)
	return out
}

// ParseTypeRef parses a single type expression such as `string`,
// `array[Choice]`, `enum[number]` or `Question`. Whitespace around
// the expression and inside brackets is ignored. An empty string yields the zero TypeRef.
func ParseTypeRef(s string) TypeRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeRef{}
	}
	if open := strings.IndexByte(s, '['); open > 0 && strings.HasSuffix(s, "]") {
		base := strings.TrimSpace(s[:open])
		inner := s[open+1 : len(s)-1]
		if base == Array || base == Enum {
			ref := TypeRef{Kind: TypeArray, Name: base}
			if base == Enum {
				ref.Kind = TypeEnum
			}
			for _, part := range SplitTypeSpec(inner) {
				if part == "" {
					continue
				}
				ref.Elem = append(ref.Elem, ParseTypeRef(part))
			}
			return ref
		}
	}
	switch s {
	case Array:
		return TypeRef{Kind: TypeArray, Name: Array}
	case Enum:
		return TypeRef{Kind: TypeEnum, Name: Enum}
	}
	if IsPrimitive(s) {
		return TypeRef{Kind: TypePrimitive, Name: s}
	}
	return TypeRef{Kind: TypeNamed, Name: collapseSpaces(s)}
}

// SplitTypeSpec splits a parenthesised type specification such as
// `(array[A, B], required)` on top-level commas. Surrounding parentheses are
// optional; the returned parts are trimmed.
func SplitTypeSpec(spec string) []string {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "(") && strings.HasSuffix(spec, ")") {
		spec = spec[1 : len(spec)-1]
	}
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(spec); i++ {
		switch spec[i] {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(spec[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(spec[start:]))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
