package handler

import (
	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/jsonbody"
	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/result"
)

type stringHandler struct{}

func init() {
	registry.Default.Register(blueprint.String, &stringHandler{})
}

func (stringHandler) TypeName() string { return blueprint.String }

func (stringHandler) Validate(f *blueprint.FieldDef) ([]result.Error, []result.Warning) {
	return nil, checkFixed(f)
}

func (stringHandler) Example(f *blueprint.FieldDef, _ registry.Expander) jsonbody.Value {
	return jsonbody.NewString(sampleOf(f))
}
