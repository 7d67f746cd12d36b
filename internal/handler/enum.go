package handler

import (
	"strconv"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/jsonbody"
	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/result"
)

type enumHandler struct{}

func init() {
	registry.Default.Register(blueprint.Enum, &enumHandler{})
}

func (enumHandler) TypeName() string { return blueprint.Enum }

func (enumHandler) Validate(f *blueprint.FieldDef) ([]result.Error, []result.Warning) {
	warns := checkFixed(f)
	if len(f.Values) == 0 {
		warns = append(warns, warning(f, "enumeration declares no members", "Add a `+ Members` block"))
		return nil, warns
	}
	for _, v := range []string{f.Sample, f.Default} {
		if v != "" && !hasValue(f.Values, v) {
			warns = append(warns, warning(f, "value "+strconv.Quote(v)+" is not one of the declared members", "Use one of the values listed under Members"))
		}
	}
	return nil, warns
}

func (enumHandler) Example(f *blueprint.FieldDef, x registry.Expander) jsonbody.Value {
	v := sampleOf(f)
	if v == "" && len(f.Values) > 0 {
		v = f.Values[0].Value
	}
	elem := blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: blueprint.String}
	if len(f.Type.Elem) > 0 {
		elem = f.Type.Elem[0]
	}
	return x.Element(elem, v)
}

func hasValue(values []blueprint.EnumValue, v string) bool {
	for _, ev := range values {
		if ev.Value == v {
			return true
		}
	}
	return false
}
