// Package example produces the example body shown for a request or response.
package example

import (
	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/jsonbody"
	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/resolver"
)

// Indent is the indentation of reformatted and generated bodies.
const Indent = "  "

// Generator builds example bodies from attribute declarations.
// It is safe for concurrent use.
type Generator struct {
	res *resolver.Resolved
	reg *registry.Registry
}

// New returns a generator over a resolved document. A nil registry means registry.Default.
func New(res *resolver.Resolved, reg *registry.Registry) *Generator {
	if reg == nil {
		reg = registry.Default
	}
	return &Generator{res: res, reg: reg}
}

// Body returns the body to display for p. Payloads without attributes keep
// their literal body byte for byte. With attributes, a JSON body is
// re-encoded with keys in declared order, and a missing body is generated
// from samples and defaults.
func (g *Generator) Body(p *blueprint.Payload) string {
	if p.Attributes.Empty() {
		return p.Body
	}
	x := &expansion{g: g}
	if ref := p.Attributes.Ref; ref != nil && ref.IsNamed() {
		x.path = append(x.path, ref.Name)
	}
	fields := g.topFields(p.Attributes)
	if p.Body != "" {
		if p.MediaType != "" && !p.IsJSON() {
			return p.Body
		}
		v, err := jsonbody.Parse(p.Body)
		if err != nil {
			return p.Body
		}
		return jsonbody.Encode(x.reorder(v, fields), Indent)
	}
	if ref := p.Attributes.Ref; ref != nil && ref.Kind == blueprint.TypeArray {
		return jsonbody.Encode(x.element(*ref, ""), Indent)
	}
	return jsonbody.Encode(x.object(fields), Indent)
}

// Generated reports whether Body builds p's body from attributes rather than
// showing the literal.
func (g *Generator) Generated(p *blueprint.Payload) bool {
	return !p.Attributes.Empty() && p.Body == ""
}

func (g *Generator) topFields(a *blueprint.Attributes) []*blueprint.FieldDef {
	fields := g.res.Members(a)
	if len(fields) == 0 && a.Ref != nil && a.Ref.Kind == blueprint.TypeArray && len(a.Ref.Elem) > 0 {
		if ds, ok := g.res.Lookup(a.Ref.Elem[0].Name); ok && a.Ref.Elem[0].IsNamed() {
			return g.res.Fields(ds)
		}
	}
	return fields
}

// expansion carries the structures currently being expanded. A structure
// met again on its own path becomes an empty object or array.
type expansion struct {
	g    *Generator
	path []string
}

var _ registry.Expander = (*expansion)(nil)

func (x *expansion) onPath(name string) bool {
	for _, n := range x.path {
		if n == name {
			return true
		}
	}
	return false
}

func (x *expansion) Object(f *blueprint.FieldDef) jsonbody.Value {
	return x.object(x.g.res.FieldMembers(f))
}

func (x *expansion) Element(t blueprint.TypeRef, sample string) jsonbody.Value {
	return x.element(t, sample)
}

func (x *expansion) element(t blueprint.TypeRef, sample string) jsonbody.Value {
	if t.IsNamed() {
		return x.named(t.Name, sample)
	}
	return x.field(&blueprint.FieldDef{Type: t, Sample: sample, HasSample: sample != ""})
}

func (x *expansion) object(fields []*blueprint.FieldDef) jsonbody.Value {
	members := make([]jsonbody.Member, 0, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		members = append(members, jsonbody.Member{Key: f.Name, Value: x.field(f)})
	}
	return jsonbody.NewObject(members...)
}

func (x *expansion) field(f *blueprint.FieldDef) jsonbody.Value {
	switch t := f.Type; {
	case t.IsNamed():
		inline := x.g.res.FieldMembers(f)
		if len(inline) == 0 {
			return x.named(t.Name, f.Sample)
		}
		ds, ok := x.g.res.Lookup(t.Name)
		if !ok || x.onPath(t.Name) {
			return x.object(inline)
		}
		x.path = append(x.path, t.Name)
		defer x.pop()
		return x.object(mergeFields(x.g.res.Fields(ds), inline))
	case t.Kind == blueprint.TypeArray && !f.HasSample && len(f.Values) == 0 && len(f.Fields) == 0 && x.allOnPath(t.Elem):
		return jsonbody.NewArray()
	}
	h, ok := x.g.reg.For(f.Type)
	if !ok {
		return jsonbody.NewString(f.Sample)
	}
	return h.Example(f, x)
}

func (x *expansion) allOnPath(elems []blueprint.TypeRef) bool {
	if len(elems) == 0 {
		return false
	}
	for _, e := range elems {
		if !e.IsNamed() || !x.onPath(e.Name) {
			return false
		}
	}
	return true
}

func (x *expansion) named(name, sample string) jsonbody.Value {
	ds, ok := x.g.res.Lookup(name)
	if !ok {
		return jsonbody.NewString(sample)
	}
	if x.onPath(name) {
		if ds.Base.Kind == blueprint.TypeArray {
			return jsonbody.NewArray()
		}
		return jsonbody.NewObject()
	}
	x.path = append(x.path, name)
	defer x.pop()
	if ds.Base.IsNamed() || (ds.Base.Kind == blueprint.TypePrimitive && ds.Base.Name == blueprint.Object) {
		return x.object(x.g.res.Fields(ds))
	}
	// structures based on array, enum or a scalar type
	return x.field(&blueprint.FieldDef{
		Name: ds.Name, Type: ds.Base, Sample: sample, HasSample: sample != "",
		Fields: ds.Fields, Includes: ds.Includes,
	})
}

func (x *expansion) pop() {
	x.path = x.path[:len(x.path)-1]
}

// reorder puts object keys into declared field order, recursing through
// nested members, named structures and arrays of them.
func (x *expansion) reorder(v jsonbody.Value, fields []*blueprint.FieldDef) jsonbody.Value {
	switch v.Kind {
	case jsonbody.Array:
		items := make([]jsonbody.Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = x.reorder(item, fields)
		}
		return jsonbody.NewArray(items...)
	case jsonbody.Object:
	default:
		return v
	}
	if len(fields) == 0 {
		return v
	}
	names := make([]string, 0, len(fields))
	byName := make(map[string]*blueprint.FieldDef, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
		byName[f.Name] = f
	}
	out := jsonbody.Reorder(v, names)
	for i, m := range out.Members {
		if f, ok := byName[m.Key]; ok {
			out.Members[i].Value = x.reorder(m.Value, x.membersOf(f))
		}
	}
	return out
}

func (x *expansion) membersOf(f *blueprint.FieldDef) []*blueprint.FieldDef {
	if inline := x.g.res.FieldMembers(f); len(inline) > 0 {
		return inline
	}
	t := f.Type
	if t.Kind == blueprint.TypeArray && len(t.Elem) > 0 {
		t = t.Elem[0]
	}
	if t.IsNamed() {
		if ds, ok := x.g.res.Lookup(t.Name); ok {
			return x.g.res.Fields(ds)
		}
	}
	return nil
}

func mergeFields(base, more []*blueprint.FieldDef) []*blueprint.FieldDef {
	out := append([]*blueprint.FieldDef(nil), base...)
	for _, f := range more {
		replaced := false
		for i, b := range out {
			if b.Name == f.Name {
				out[i], replaced = f, true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out
}
