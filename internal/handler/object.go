package handler

import (
	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/jsonbody"
	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/result"
)

type objectHandler struct{}

func init() {
	registry.Default.Register(blueprint.Object, &objectHandler{})
}

func (objectHandler) TypeName() string { return blueprint.Object }

func (objectHandler) Validate(f *blueprint.FieldDef) ([]result.Error, []result.Warning) {
	var warns []result.Warning
	if f.HasSample && f.Sample != "" {
		warns = append(warns, warning(f, "object sample is ignored", "Declare nested members instead of an inline value"))
	}
	return nil, append(warns, checkFixed(f)...)
}

func (objectHandler) Example(f *blueprint.FieldDef, x registry.Expander) jsonbody.Value {
	return x.Object(f)
}
