package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// descriptions may carry inline HTML such as <a href> links
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// markdown converts a description to HTML. Empty input yields empty output.
func (r *Renderer) markdown(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.Wrap(err, "converting markdown")
	}
	return template.HTML(buf.String()), nil
}
