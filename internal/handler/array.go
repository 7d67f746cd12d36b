package handler

import (
	"strings"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/jsonbody"
	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/result"
)

type arrayHandler struct{}

func init() {
	registry.Default.Register(blueprint.Array, &arrayHandler{})
}

func (arrayHandler) TypeName() string { return blueprint.Array }

func (arrayHandler) Validate(f *blueprint.FieldDef) ([]result.Error, []result.Warning) {
	return nil, checkFixed(f)
}

// Example uses, in order: comma separated samples, declared members, nested
// members, or one generated element per declared element type.
func (arrayHandler) Example(f *blueprint.FieldDef, x registry.Expander) jsonbody.Value {
	elem := blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: blueprint.String}
	if len(f.Type.Elem) > 0 {
		elem = f.Type.Elem[0]
	}
	items := []jsonbody.Value{}
	switch s := sampleOf(f); {
	case s != "":
		for _, part := range strings.Split(s, ",") {
			items = append(items, x.Element(elem, strings.TrimSpace(part)))
		}
	case len(f.Values) > 0:
		for _, v := range f.Values {
			items = append(items, x.Element(elem, v.Value))
		}
	case len(f.Fields) > 0:
		for _, m := range f.Fields {
			t := m.Type
			if t.IsZero() {
				t = elem
			}
			items = append(items, x.Element(t, sampleOf(m)))
		}
	default:
		for _, t := range f.Type.Elem {
			items = append(items, x.Element(t, ""))
		}
	}
	return jsonbody.NewArray(items...)
}
