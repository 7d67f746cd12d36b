package pipeline

import (
	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/result"
)

// checkTypes runs the type handlers over every attribute and parameter.
func (p *Pipeline) checkTypes(doc *blueprint.Document, out *result.RenderResult) {
	for _, ds := range doc.DataStructures {
		p.checkFields(ds.Fields, "data structure "+ds.Name, out)
	}
	for _, res := range doc.Resources() {
		context := "resource " + res.URI
		if res.Name != "" {
			context = "resource " + res.Name
		}
		p.checkParameters(res.Parameters, context, out)
		p.checkAttributes(res.Attributes, context, out)
		for _, a := range res.Actions {
			ac := "action " + a.Method + " " + res.URI
			if a.Name != "" {
				ac = "action " + a.Name
			}
			p.checkParameters(a.Parameters, ac, out)
			p.checkAttributes(a.Attributes, ac, out)
			for _, pl := range a.Requests {
				p.checkAttributes(pl.Attributes, "request of "+ac, out)
			}
			for _, pl := range a.Responses {
				p.checkAttributes(pl.Attributes, "response "+pl.Status+" of "+ac, out)
			}
		}
	}
}

func (p *Pipeline) checkAttributes(a *blueprint.Attributes, section string, out *result.RenderResult) {
	if a == nil {
		return
	}
	p.checkFields(a.Fields, section, out)
}

// checkParameters validates parameters as fields: the example is the sample.
func (p *Pipeline) checkParameters(params []*blueprint.Parameter, context string, out *result.RenderResult) {
	for _, prm := range params {
		f := &blueprint.FieldDef{
			Name: prm.Name, Type: prm.Type, Required: prm.Required,
			Sample: prm.Example, HasSample: prm.Example != "",
			Default: prm.Default, Values: prm.Values, Line: prm.Line,
		}
		p.checkField(f, "parameter "+prm.Name+" of "+context, out)
	}
}

func (p *Pipeline) checkFields(fields []*blueprint.FieldDef, section string, out *result.RenderResult) {
	for _, f := range fields {
		p.checkField(f, section, out)
		p.checkFields(f.Fields, section, out)
	}
}

func (p *Pipeline) checkField(f *blueprint.FieldDef, section string, out *result.RenderResult) {
	h, ok := p.reg.For(f.Type)
	if !ok {
		return
	}
	errs, warns := h.Validate(f)
	for _, e := range errs {
		if e.Section == "" {
			e.Section = section
		}
		out.Fail(e)
	}
	for _, w := range warns {
		if w.Section == "" {
			w.Section = section
		}
		out.Warnings = append(out.Warnings, w)
	}
}
