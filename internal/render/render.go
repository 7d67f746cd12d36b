// Package render turns a resolved document into a self-contained HTML bundle.
package render

import (
	"bytes"
	"html/template"
	"io/fs"
	"sort"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"

	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/render/templates"
	"github.com/apib-renderer/renderer/internal/resolver"
)

// CoverFile is the bundle entry holding the PDF cover page.
const CoverFile = "cover.html"

// templateFiles are parsed in this order into a single template set.
var templateFiles = []string{
	"style.tmpl",
	"layout.tmpl",
	"toc.tmpl",
	"sections.tmpl",
	"resource.tmpl",
	"structure.tmpl",
	"cover.tmpl",
}

// Options configures a Renderer.
type Options struct {
	// Name is the base name of the main page; "index" when empty.
	Name string
	// Cover adds a cover page to the bundle.
	Cover bool
	// Templates overrides built-in templates by file name. Files it lacks
	// fall back to the embedded set.
	Templates fs.FS
	// Registry supplies example values for built-in types; registry.Default when nil.
	Registry *registry.Registry
}

// Bundle is the rendered output: file name to contents.
type Bundle struct {
	Main  string
	Files map[string][]byte
}

// FileNames returns the bundle's file names, sorted.
func (b *Bundle) FileNames() []string {
	names := make([]string, 0, len(b.Files))
	for n := range b.Files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Renderer renders resolved documents. It is safe for concurrent use.
type Renderer struct {
	opts Options
	tmpl *template.Template
	md   goldmark.Markdown
}

// New parses the templates and returns a Renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Name == "" {
		opts.Name = "index"
	}
	t, err := buildTemplates(opts.Templates)
	if err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, tmpl: t, md: newMarkdown()}, nil
}

func loadTemplate(override fs.FS, name string) (string, error) {
	if override != nil {
		if b, err := fs.ReadFile(override, name); err == nil {
			return string(b), nil
		}
	}
	s, err := templates.Read(name)
	if err != nil {
		return "", errors.Wrapf(err, "loading template %s", name)
	}
	return s, nil
}

func buildTemplates(override fs.FS) (*template.Template, error) {
	t := template.New("layout")
	for _, name := range templateFiles {
		src, err := loadTemplate(override, name)
		if err != nil {
			return nil, err
		}
		if _, err := t.New(name).Parse(src); err != nil {
			return nil, errors.Wrapf(err, "parsing template %s", name)
		}
	}
	return t, nil
}

// Render produces the HTML bundle for res. Output depends only on the
// document, so rendering the same input twice yields identical bytes.
func (r *Renderer) Render(res *resolver.Resolved) (*Bundle, error) {
	return r.RenderNamed(res, r.opts.Name)
}

// RenderNamed is Render with the main page named <name>.html.
func (r *Renderer) RenderNamed(res *resolver.Resolved, name string) (*Bundle, error) {
	if name == "" {
		name = r.opts.Name
	}
	v := newView(r, res)
	page := v.page()
	if v.err != nil {
		return nil, v.err
	}
	main := name + ".html"
	b := &Bundle{Main: main, Files: make(map[string][]byte)}
	out, err := r.execute("layout", page)
	if err != nil {
		return nil, err
	}
	b.Files[main] = out
	if r.opts.Cover {
		out, err := r.execute("cover", page)
		if err != nil {
			return nil, err
		}
		b.Files[CoverFile] = out
	}
	return b, nil
}

func (r *Renderer) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrapf(err, "executing template %s", name)
	}
	return buf.Bytes(), nil
}
