package handler

import (
	"fmt"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/result"
)

// sampleOf returns the sample of f, falling back to its default.
func sampleOf(f *blueprint.FieldDef) string {
	if f.HasSample {
		return f.Sample
	}
	return f.Default
}

func warning(f *blueprint.FieldDef, message, suggestion string) result.Warning {
	return result.Warning{
		Type: "sample_warning", Severity: "warning", Line: f.Line,
		Message: fmt.Sprintf("attribute %q: %s", f.Name, message), Suggestion: suggestion,
	}
}

// checkFixed warns about fixed attributes that declare no value.
func checkFixed(f *blueprint.FieldDef) []result.Warning {
	if f.Fixed && sampleOf(f) == "" && len(f.Fields) == 0 && len(f.Values) == 0 {
		return []result.Warning{warning(f, "fixed attribute has no value", "Add a sample value or drop the fixed attribute")}
	}
	return nil
}
