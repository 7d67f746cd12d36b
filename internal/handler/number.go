package handler

import (
	"strconv"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/jsonbody"
	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/result"
)

type numberHandler struct{}

func init() {
	registry.Default.Register(blueprint.Number, &numberHandler{})
}

func (numberHandler) TypeName() string { return blueprint.Number }

func (numberHandler) Validate(f *blueprint.FieldDef) ([]result.Error, []result.Warning) {
	warns := checkFixed(f)
	for _, v := range []string{f.Sample, f.Default} {
		if v != "" && !isNumber(v) {
			warns = append(warns, warning(f, "value "+strconv.Quote(v)+" is not a number", "Use a numeric sample such as 42 or 1.5"))
		}
	}
	return nil, warns
}

func (numberHandler) Example(f *blueprint.FieldDef, _ registry.Expander) jsonbody.Value {
	return numberValue(sampleOf(f))
}

func numberValue(s string) jsonbody.Value {
	switch {
	case s == "":
		return jsonbody.NewNumber("0")
	case isNumber(s):
		return jsonbody.NewNumber(s)
	default:
		return jsonbody.NewString(s)
	}
}

// isNumber reports whether s is a JSON number literal.
func isNumber(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	_, err := jsonbody.Parse(s)
	return err == nil
}
