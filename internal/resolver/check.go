package resolver

import (
	"github.com/apib-renderer/renderer/internal/blueprint"
)

// checker visits every type reference and keeps the first failure.
type checker struct {
	r           *Resolved
	isPrimitive func(string) bool
	err         error
}

func (c *checker) ref(t blueprint.TypeRef, line int, context string) {
	for _, name := range t.Named() {
		c.name(name, line, context)
	}
}

func (c *checker) name(name string, line int, context string) {
	if c.err != nil || c.isPrimitive(name) {
		return
	}
	if _, ok := c.r.byName[name]; !ok {
		c.err = &UnresolvedReferenceError{Name: name, Line: line, Context: context}
	}
}

func (c *checker) structure(ds *blueprint.DataStructureDef) {
	context := "data structure " + ds.Name
	if ds.Base.IsNamed() {
		c.name(ds.Base.Name, ds.Line, context)
		c.expand(ds.Name, ds.Base.Name)
	} else {
		c.ref(ds.Base, ds.Line, context)
		c.link(ds.Name, ds.Base)
	}
	for _, inc := range ds.Includes {
		c.ref(inc, ds.Line, context)
		c.expand(ds.Name, inc.Name)
	}
	c.fields(ds.Name, ds.Fields, context)
}

// fields checks members; owner is the structure they belong to, or "" for
// inline attributes outside Data Structures.
func (c *checker) fields(owner string, fields []*blueprint.FieldDef, context string) {
	for _, f := range fields {
		fc := "attribute " + f.Name + " of " + context
		c.ref(f.Type, f.Line, fc)
		c.link(owner, f.Type)
		for _, inc := range f.Includes {
			c.ref(inc, f.Line, fc)
			c.expand(owner, inc.Name)
		}
		c.fields(owner, f.Fields, context)
	}
}

func (c *checker) expand(owner, dep string) {
	if owner == "" || dep == "" {
		return
	}
	if _, ok := c.r.byName[dep]; ok {
		c.r.expands[owner] = append(c.r.expands[owner], dep)
	}
}

func (c *checker) link(owner string, t blueprint.TypeRef) {
	if owner == "" {
		return
	}
	for _, name := range t.Named() {
		if _, ok := c.r.byName[name]; ok {
			c.r.links[owner] = append(c.r.links[owner], name)
		}
	}
}

func (c *checker) attributes(a *blueprint.Attributes, context string) {
	if a == nil {
		return
	}
	if a.Ref != nil {
		c.ref(*a.Ref, a.Line, context)
	}
	for _, inc := range a.Includes {
		c.ref(inc, a.Line, context)
	}
	c.fields("", a.Fields, context)
}

func (c *checker) parameters(params []*blueprint.Parameter, context string) {
	for _, p := range params {
		c.ref(p.Type, p.Line, "parameter "+p.Name+" of "+context)
	}
}

func (c *checker) resource(res *blueprint.Resource) {
	context := "resource " + res.URI
	if res.Name != "" {
		context = "resource " + res.Name
	}
	c.parameters(res.Parameters, context)
	c.attributes(res.Attributes, context)
	for _, a := range res.Actions {
		ac := "action " + a.Method + " " + res.URI
		if a.Name != "" {
			ac = "action " + a.Name
		}
		c.parameters(a.Parameters, ac)
		c.attributes(a.Attributes, ac)
		for _, p := range a.Requests {
			c.attributes(p.Attributes, "request of "+ac)
		}
		for _, p := range a.Responses {
			c.attributes(p.Attributes, "response "+p.Status+" of "+ac)
		}
	}
}
