package render

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/example"
	"github.com/apib-renderer/renderer/internal/resolver"
)

type pageData struct {
	Title      string
	Host       string
	Metadata   []blueprint.MetadataField
	Intro      template.HTML
	TOC        []*tocEntry
	Sections   []*sectionVM
	References []Reference
}

type tocEntry struct {
	Title       string
	Anchor      string
	Method      string
	MethodClass string
	Children    []*tocEntry
}

type sectionVM struct {
	Kind        string
	Anchor      string
	Heading     template.HTML
	Body        template.HTML
	Subsections []*sectionVM
	Group       *groupVM
	Structures  []*structureVM
}

type groupVM struct {
	Name        string
	Anchor      string
	Description template.HTML
	Resources   []*resourceVM
}

type resourceVM struct {
	Title       string
	Anchor      string
	URI         string
	Description template.HTML
	Parameters  []*paramVM
	Attributes  *attrsVM
	Actions     []*actionVM
	IgnoreTOC   bool
}

type actionVM struct {
	Title       string
	Anchor      string
	Method      string
	MethodClass string
	URI         string
	Description template.HTML
	Parameters  []*paramVM
	Attributes  *attrsVM
	Requests    []*payloadVM
	Responses   []*payloadVM
}

type payloadVM struct {
	Title       string
	Class       string
	MediaType   string
	Description template.HTML
	Headers     []blueprint.Header
	Attributes  *attrsVM
	Body        template.HTML
	Generated   bool
	Schema      template.HTML
}

type paramVM struct {
	Name        string
	Type        template.HTML
	Required    bool
	Example     string
	Default     string
	Description template.HTML
	Values      []blueprint.EnumValue
}

type attrsVM struct {
	Ref  template.HTML
	Rows []*fieldRow
}

type fieldRow struct {
	Name        string
	Depth       int
	Type        template.HTML
	Required    bool
	Fixed       bool
	Sample      string
	Default     string
	Description template.HTML
	Values      []blueprint.EnumValue
}

type structureVM struct {
	Name        string
	Anchor      string
	Base        template.HTML
	Includes    []template.HTML
	Description template.HTML
	Rows        []*fieldRow
}

// view turns a resolved document into template data. Anchors are assigned
// in a first pass over the whole document so that links to data structures
// declared later still resolve.
type view struct {
	r    *Renderer
	res  *resolver.Resolved
	gen  *example.Generator
	ids  *anchors
	refs *references
	err  error

	sections  map[*blueprint.Section]string
	groups    map[*blueprint.ResourceGroup]string
	resources map[*blueprint.Resource]string
	actions   map[*blueprint.Action]string
	types     map[string]string
}

func newView(r *Renderer, res *resolver.Resolved) *view {
	v := &view{
		r:         r,
		res:       res,
		gen:       example.New(res, r.opts.Registry),
		ids:       newAnchors(),
		refs:      newReferences(),
		sections:  make(map[*blueprint.Section]string),
		groups:    make(map[*blueprint.ResourceGroup]string),
		resources: make(map[*blueprint.Resource]string),
		actions:   make(map[*blueprint.Action]string),
		types:     make(map[string]string),
	}
	doc := res.Document()
	for _, s := range doc.Sections {
		v.assign(s)
	}
	for _, ds := range doc.DataStructures {
		if _, ok := v.types[ds.Name]; !ok {
			v.types[ds.Name] = v.ids.prefixed("datastructure", ds.Name)
		}
	}
	return v
}

func (v *view) assign(s *blueprint.Section) {
	switch s.Kind {
	case blueprint.SectionGroup:
		g := s.Group
		if g.Name != "" {
			v.groups[g] = v.ids.prefixed("group", g.Name)
		}
		for _, res := range g.Resources {
			v.resources[res] = v.ids.prefixed("resource", resourceTitle(res))
			for _, a := range res.Actions {
				v.actions[a] = v.ids.prefixed("action", actionTitle(a, res))
			}
		}
	case blueprint.SectionDataStructures:
		v.sections[s] = v.ids.prose(s.Title)
		for _, ds := range s.Structures {
			v.types[ds.Name] = v.ids.prefixed("datastructure", ds.Name)
		}
	default:
		v.sections[s] = v.ids.prose(s.Title)
		for _, sub := range s.Subsections {
			v.assign(sub)
		}
	}
}

func (v *view) page() *pageData {
	doc := v.res.Document()
	p := &pageData{
		Title:    doc.Title,
		Host:     doc.Host,
		Metadata: displayMetadata(doc.Metadata),
		Intro:    v.md(doc.Description),
	}
	if p.Title == "" {
		p.Title = "API Documentation"
	}
	for _, s := range doc.Sections {
		p.Sections = append(p.Sections, v.section(s))
		p.TOC = append(p.TOC, v.toc(s)...)
	}
	p.References = v.refs.list
	return p
}

// displayMetadata drops the header lines already shown elsewhere.
func displayMetadata(fields []blueprint.MetadataField) []blueprint.MetadataField {
	var out []blueprint.MetadataField
	for _, f := range fields {
		switch strings.ToUpper(f.Key) {
		case "FORMAT", "TITLE":
			continue
		}
		out = append(out, f)
	}
	return out
}

func (v *view) md(src string) template.HTML {
	v.refs.scan(src)
	out, err := v.r.markdown(src)
	if err != nil && v.err == nil {
		v.err = err
	}
	return out
}

func (v *view) toc(s *blueprint.Section) []*tocEntry {
	switch s.Kind {
	case blueprint.SectionGroup:
		var entries []*tocEntry
		for _, res := range s.Group.Resources {
			if res.IgnoreTOC {
				for _, a := range res.Actions {
					entries = append(entries, v.actionEntry(a, res))
				}
				continue
			}
			e := &tocEntry{Title: resourceTitle(res), Anchor: v.resources[res]}
			for _, a := range res.Actions {
				e.Children = append(e.Children, v.actionEntry(a, res))
			}
			entries = append(entries, e)
		}
		if s.Group.Name == "" {
			return entries
		}
		return []*tocEntry{{Title: s.Group.Name, Anchor: v.groups[s.Group], Children: entries}}
	case blueprint.SectionDataStructures:
		e := &tocEntry{Title: s.Title, Anchor: v.sections[s]}
		for _, ds := range s.Structures {
			e.Children = append(e.Children, &tocEntry{Title: ds.Name, Anchor: v.types[ds.Name]})
		}
		return []*tocEntry{e}
	default:
		e := &tocEntry{Title: s.Title, Anchor: v.sections[s]}
		for _, sub := range s.Subsections {
			e.Children = append(e.Children, v.toc(sub)...)
		}
		return []*tocEntry{e}
	}
}

func (v *view) actionEntry(a *blueprint.Action, res *blueprint.Resource) *tocEntry {
	return &tocEntry{
		Title:       actionTitle(a, res),
		Anchor:      v.actions[a],
		Method:      a.Method,
		MethodClass: strings.ToLower(a.Method),
	}
}

func (v *view) section(s *blueprint.Section) *sectionVM {
	vm := &sectionVM{Kind: s.Kind.String(), Anchor: v.sections[s]}
	switch s.Kind {
	case blueprint.SectionGroup:
		vm.Group = v.group(s.Group)
		return vm
	case blueprint.SectionDataStructures:
		vm.Heading = heading(2, vm.Anchor, s.Title)
		vm.Body = v.md(s.Body)
		for _, ds := range s.Structures {
			vm.Structures = append(vm.Structures, v.structure(ds))
		}
		return vm
	}
	vm.Heading = heading(s.Level, vm.Anchor, s.Title)
	vm.Body = v.md(s.Body)
	for _, sub := range s.Subsections {
		vm.Subsections = append(vm.Subsections, v.section(sub))
	}
	return vm
}

func heading(level int, id, text string) template.HTML {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return template.HTML(fmt.Sprintf(`<h%d id="%s">%s</h%d>`,
		level, html.EscapeString(id), html.EscapeString(text), level))
}

func (v *view) group(g *blueprint.ResourceGroup) *groupVM {
	vm := &groupVM{Name: g.Name, Anchor: v.groups[g], Description: v.md(g.Description)}
	for _, res := range g.Resources {
		vm.Resources = append(vm.Resources, v.resource(res))
	}
	return vm
}

func (v *view) resource(res *blueprint.Resource) *resourceVM {
	vm := &resourceVM{
		Title:       resourceTitle(res),
		Anchor:      v.resources[res],
		URI:         res.URI,
		Description: v.md(res.Description),
		Parameters:  v.parameters(res.Parameters),
		Attributes:  v.attributes(res.Attributes),
		IgnoreTOC:   res.IgnoreTOC,
	}
	for _, a := range res.Actions {
		vm.Actions = append(vm.Actions, v.action(a, res))
	}
	return vm
}

func (v *view) action(a *blueprint.Action, res *blueprint.Resource) *actionVM {
	vm := &actionVM{
		Title:       actionTitle(a, res),
		Anchor:      v.actions[a],
		Method:      a.Method,
		MethodClass: strings.ToLower(a.Method),
		URI:         actionURI(a, res),
		Description: v.md(a.Description),
		Parameters:  v.parameters(a.Parameters),
		Attributes:  v.attributes(a.Attributes),
	}
	for _, p := range a.Requests {
		vm.Requests = append(vm.Requests, v.payload(p, false))
	}
	for _, p := range a.Responses {
		vm.Responses = append(vm.Responses, v.payload(p, true))
	}
	return vm
}

var codeEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;")

// codeHTML escapes only what would start markup, so quotes and the rest of
// an example body reach the page as written.
func codeHTML(s string) template.HTML {
	return template.HTML(codeEscaper.Replace(s))
}

func (v *view) payload(p *blueprint.Payload, response bool) *payloadVM {
	vm := &payloadVM{
		MediaType:   p.MediaType,
		Description: v.md(p.Description),
		Headers:     payloadHeaders(p),
		Attributes:  v.attributes(p.Attributes),
		Body:        codeHTML(v.gen.Body(p)),
		Generated:   v.gen.Generated(p),
		Schema:      codeHTML(p.Schema),
	}
	if response {
		vm.Title = strings.TrimSpace("Response " + p.Status)
		vm.Class = "response"
		if code := p.StatusCode(); code >= 400 {
			vm.Class = "response response-error"
		}
	} else {
		vm.Title = strings.TrimSpace("Request " + p.Name)
		vm.Class = "request"
	}
	return vm
}

// payloadHeaders lists the payload headers, led by Content-Type when the
// media type is declared but no explicit Content-Type header is.
func payloadHeaders(p *blueprint.Payload) []blueprint.Header {
	if p.MediaType == "" {
		return p.Headers
	}
	if _, ok := p.Header("Content-Type"); ok {
		return p.Headers
	}
	return append([]blueprint.Header{{Name: "Content-Type", Value: p.MediaType}}, p.Headers...)
}

func (v *view) parameters(params []*blueprint.Parameter) []*paramVM {
	var out []*paramVM
	for _, p := range params {
		out = append(out, &paramVM{
			Name:        p.Name,
			Type:        v.typeHTML(p.Type),
			Required:    p.Required,
			Example:     p.Example,
			Default:     p.Default,
			Description: v.md(p.Description),
			Values:      p.Values,
		})
	}
	return out
}

func (v *view) attributes(a *blueprint.Attributes) *attrsVM {
	if a.Empty() {
		return nil
	}
	vm := &attrsVM{Rows: v.rows(v.res.Members(a), 0)}
	if a.Ref != nil {
		vm.Ref = v.typeHTML(*a.Ref)
	}
	return vm
}

func (v *view) structure(ds *blueprint.DataStructureDef) *structureVM {
	vm := &structureVM{
		Name:        ds.Name,
		Anchor:      v.types[ds.Name],
		Description: v.md(ds.Description),
		Rows:        v.rows(v.res.Fields(ds), 0),
	}
	if !ds.Base.IsZero() {
		vm.Base = v.typeHTML(ds.Base)
	}
	for _, inc := range ds.Includes {
		vm.Includes = append(vm.Includes, v.typeHTML(inc))
	}
	return vm
}

// rows flattens fields and their inline members into table rows. Named
// types are linked, never expanded, so recursive structures stay finite.
func (v *view) rows(fields []*blueprint.FieldDef, depth int) []*fieldRow {
	var out []*fieldRow
	for _, f := range fields {
		out = append(out, &fieldRow{
			Name:        f.Name,
			Depth:       depth,
			Type:        v.typeHTML(f.Type),
			Required:    f.Required,
			Fixed:       f.Fixed,
			Sample:      f.Sample,
			Default:     f.Default,
			Description: v.md(f.Description),
			Values:      f.Values,
		})
		if inline := v.res.FieldMembers(f); len(inline) > 0 {
			out = append(out, v.rows(inline, depth+1)...)
		}
	}
	return out
}

// typeHTML renders a type with in-page links to the data structures it names.
func (v *view) typeHTML(t blueprint.TypeRef) template.HTML {
	if t.IsZero() {
		return ""
	}
	if t.IsNamed() {
		name := html.EscapeString(t.Name)
		if id, ok := v.types[t.Name]; ok {
			return template.HTML(fmt.Sprintf(`<a href="#%s">%s</a>`, html.EscapeString(id), name))
		}
		return template.HTML(name)
	}
	if len(t.Elem) == 0 {
		return template.HTML(html.EscapeString(t.Name))
	}
	elems := make([]string, len(t.Elem))
	for i, e := range t.Elem {
		elems[i] = string(v.typeHTML(e))
	}
	return template.HTML(html.EscapeString(t.Name) + "[" + strings.Join(elems, ", ") + "]")
}

func resourceTitle(res *blueprint.Resource) string {
	if res.Name != "" {
		return res.Name
	}
	return res.URI
}

func actionTitle(a *blueprint.Action, res *blueprint.Resource) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Method + " " + actionURI(a, res)
}

func actionURI(a *blueprint.Action, res *blueprint.Resource) string {
	if a.URI != "" {
		return a.URI
	}
	return res.URI
}
