// Package resolver links type references in a built document to their data
// structure declarations and rejects documents whose structures would expand
// into themselves.
package resolver

import (
	"github.com/apib-renderer/renderer/internal/blueprint"
)

// Resolved is a document whose type references are all known to resolve.
// It is read-only and safe for concurrent use.
type Resolved struct {
	doc    *blueprint.Document
	byName map[string]*blueprint.DataStructureDef
	// expands holds inheritance and Include edges; links holds plain field references.
	expands map[string][]string
	links   map[string][]string
	order   []string
}

// Resolve checks every type reference of doc in document order. Structures
// are collected first, so forward references are allowed. isPrimitive
// reports built-in type names; nil means blueprint.IsPrimitive.
func Resolve(doc *blueprint.Document, isPrimitive func(string) bool) (*Resolved, error) {
	if isPrimitive == nil {
		isPrimitive = blueprint.IsPrimitive
	}
	r := &Resolved{
		doc:     doc,
		byName:  make(map[string]*blueprint.DataStructureDef),
		expands: make(map[string][]string),
		links:   make(map[string][]string),
	}
	for _, ds := range doc.DataStructures {
		if _, ok := r.byName[ds.Name]; !ok {
			r.byName[ds.Name] = ds
		}
	}

	c := &checker{r: r, isPrimitive: isPrimitive}
	for _, ds := range doc.DataStructures {
		c.structure(ds)
	}
	for _, res := range doc.Resources() {
		c.resource(res)
	}
	if c.err != nil {
		return nil, c.err
	}
	if err := r.checkCycles(); err != nil {
		return nil, err
	}
	return r, nil
}

// Document returns the resolved document.
func (r *Resolved) Document() *blueprint.Document {
	return r.doc
}

// Lookup returns the data structure declared with name.
func (r *Resolved) Lookup(name string) (*blueprint.DataStructureDef, bool) {
	ds, ok := r.byName[name]
	return ds, ok
}

// Order returns structure names with every structure after the ones it
// inherits from or includes.
func (r *Resolved) Order() []string {
	return append([]string(nil), r.order...)
}

// DependsOn returns the structures name refers to directly, by inheritance,
// Include or field type, in declaration order.
func (r *Resolved) DependsOn(name string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, dep := range append(append([]string(nil), r.expands[name]...), r.links[name]...) {
		if !seen[dep] {
			seen[dep] = true
			out = append(out, dep)
		}
	}
	return out
}

// IsRecursive reports whether name can reach itself through any reference.
// Such structures are rendered as links instead of being expanded.
func (r *Resolved) IsRecursive(name string) bool {
	seen := make(map[string]bool)
	stack := r.DependsOn(name)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == name {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, r.DependsOn(n)...)
	}
	return false
}

// Fields returns the members of def: inherited first, then included, then
// its own. A later member replaces an earlier one with the same name in place.
func (r *Resolved) Fields(def *blueprint.DataStructureDef) []*blueprint.FieldDef {
	var out []*blueprint.FieldDef
	if def.Base.IsNamed() {
		if base, ok := r.byName[def.Base.Name]; ok {
			out = r.Fields(base)
		}
	}
	out = merge(out, r.included(def.Includes))
	return merge(out, def.Fields)
}

// Members returns the effective fields of an attributes block.
func (r *Resolved) Members(a *blueprint.Attributes) []*blueprint.FieldDef {
	if a == nil {
		return nil
	}
	var out []*blueprint.FieldDef
	if a.Ref != nil && a.Ref.IsNamed() {
		if ds, ok := r.byName[a.Ref.Name]; ok {
			out = r.Fields(ds)
		}
	}
	out = merge(out, r.included(a.Includes))
	return merge(out, a.Fields)
}

// FieldMembers returns the nested members of f, including its mixins.
func (r *Resolved) FieldMembers(f *blueprint.FieldDef) []*blueprint.FieldDef {
	return merge(r.included(f.Includes), f.Fields)
}

func (r *Resolved) included(refs []blueprint.TypeRef) []*blueprint.FieldDef {
	var out []*blueprint.FieldDef
	for _, ref := range refs {
		if ds, ok := r.byName[ref.Name]; ok && ref.IsNamed() {
			out = merge(out, r.Fields(ds))
		}
	}
	return out
}

func merge(base, more []*blueprint.FieldDef) []*blueprint.FieldDef {
	if len(base) == 0 {
		return more
	}
	out := append([]*blueprint.FieldDef(nil), base...)
	index := make(map[string]int, len(out))
	for i, f := range out {
		index[f.Name] = i
	}
	for _, f := range more {
		if i, ok := index[f.Name]; ok && f.Name != "" {
			out[i] = f
			continue
		}
		index[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}

const (
	white = iota
	grey
	black
)

// checkCycles walks expansion edges depth first with an explicit stack and
// records a dependency-first order.
func (r *Resolved) checkCycles() error {
	color := make(map[string]int, len(r.byName))
	type entry struct {
		name string
		next int
	}
	for _, ds := range r.doc.DataStructures {
		if color[ds.Name] != white {
			continue
		}
		stack := []entry{{name: ds.Name}}
		color[ds.Name] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := r.expands[top.name]
			if top.next == len(edges) {
				color[top.name] = black
				r.order = append(r.order, top.name)
				stack = stack[:len(stack)-1]
				continue
			}
			dep := edges[top.next]
			top.next++
			switch color[dep] {
			case grey:
				var path []string
				for i := range stack {
					if stack[i].name == dep || len(path) > 0 {
						path = append(path, stack[i].name)
					}
				}
				path = append(path, dep)
				return &CyclicReferenceError{Path: path, Line: r.byName[dep].Line}
			case white:
				color[dep] = grey
				stack = append(stack, entry{name: dep})
			}
		}
	}
	return nil
}
