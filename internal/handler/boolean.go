package handler

import (
	"strconv"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/jsonbody"
	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/result"
)

type booleanHandler struct{}

func init() {
	registry.Default.Register(blueprint.Boolean, &booleanHandler{})
}

func (booleanHandler) TypeName() string { return blueprint.Boolean }

func (booleanHandler) Validate(f *blueprint.FieldDef) ([]result.Error, []result.Warning) {
	warns := checkFixed(f)
	for _, v := range []string{f.Sample, f.Default} {
		if v != "" && v != "true" && v != "false" {
			warns = append(warns, warning(f, "value "+strconv.Quote(v)+" is not a boolean", "Use true or false"))
		}
	}
	return nil, warns
}

func (booleanHandler) Example(f *blueprint.FieldDef, _ registry.Expander) jsonbody.Value {
	return boolValue(sampleOf(f))
}

func boolValue(s string) jsonbody.Value {
	switch s {
	case "", "false":
		return jsonbody.NewBool(false)
	case "true":
		return jsonbody.NewBool(true)
	default:
		return jsonbody.NewString(s)
	}
}
