// Package builder assembles lexer tokens into a blueprint.Document.
package builder

import (
	"io"
	"regexp"
	"strings"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/lexer"
)

var statusRe = regexp.MustCompile(`^[0-9]{3}$`)

// TokenSource yields tokens until io.EOF. *lexer.Lexer implements it.
type TokenSource interface {
	Next() (lexer.Token, error)
}

// Parse lexes and builds text in one step.
func Parse(text string) (*blueprint.Document, error) {
	return Build(lexer.New(text))
}

// Build consumes src and returns the document tree. The first lexer or
// builder error aborts the build.
func Build(src TokenSource) (*blueprint.Document, error) {
	b := &builder{doc: &blueprint.Document{}}
	for {
		tok, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := b.handle(tok); err != nil {
			return nil, err
		}
	}
	b.finish()
	return b.doc, nil
}

type frameKind int

const (
	frameIgnore frameKind = iota
	frameProse
	frameParameters
	frameParameter
	frameAttributes
	frameField
	frameValues
	frameValue
	framePayload
	frameHeaders
	frameBody
	frameSchema
)

// frame mirrors one block context open in the lexer.
type frame struct {
	kind     frameKind
	params   *[]*blueprint.Parameter
	param    *blueprint.Parameter
	field    *blueprint.FieldDef
	fields   *[]*blueprint.FieldDef
	includes *[]blueprint.TypeRef
	values   *[]blueprint.EnumValue
	index    int
	payload  *blueprint.Payload
}

type builder struct {
	doc    *blueprint.Document
	frames []frame

	// open prose sections, outermost first
	prose []*blueprint.Section

	group      *blueprint.ResourceGroup
	groupLevel int
	resource   *blueprint.Resource
	resLevel   int
	action     *blueprint.Action
	actLevel   int

	dsSection *blueprint.Section
	dsLevel   int
	structure *blueprint.DataStructureDef
}

func (b *builder) handle(tok lexer.Token) error {
	if tok.Kind == lexer.KindMetadata {
		b.metadata(tok)
		return nil
	}
	if tok.Kind == lexer.KindHeading {
		b.frames = b.frames[:0]
		return b.heading(tok)
	}

	if tok.Depth < len(b.frames) {
		b.frames = b.frames[:tok.Depth]
	}
	var parent *frame
	if n := len(b.frames); n > 0 {
		parent = &b.frames[n-1]
	}

	var (
		next frame
		err  error
	)
	switch tok.Kind {
	case lexer.KindKeyword:
		next, err = b.keyword(tok, parent)
	case lexer.KindParameter:
		next = b.parameter(tok, parent)
	case lexer.KindAttribute:
		next, err = b.attribute(tok, parent)
	case lexer.KindValue:
		next = b.value(tok, parent)
	default:
		b.content(tok, parent)
		next = frame{kind: frameProse}
	}
	if err != nil {
		return err
	}
	if tok.Opens {
		b.frames = append(b.frames, next)
	}
	return nil
}

func (b *builder) metadata(tok lexer.Token) {
	b.doc.Metadata = append(b.doc.Metadata, blueprint.MetadataField{Key: tok.Key, Value: tok.Value})
	switch strings.ToUpper(tok.Key) {
	case "FORMAT":
		b.doc.Format = tok.Value
	case "HOST":
		b.doc.Host = tok.Value
	case "TITLE":
		b.doc.Title = tok.Value
	}
}

func (b *builder) heading(tok lexer.Token) error {
	level := tok.Level
	if b.dsSection != nil {
		if level > b.dsLevel {
			b.structureHeading(tok)
			return nil
		}
		b.dsSection, b.structure = nil, nil
	}
	b.closeTo(level)

	switch h := ParseHeading(tok.Text).(type) {
	case GroupHeading:
		b.closeStructural()
		g := &blueprint.ResourceGroup{Name: h.Name, Line: tok.Line}
		b.doc.Sections = append(b.doc.Sections, &blueprint.Section{
			Kind: blueprint.SectionGroup, Title: h.Name, Level: level, Line: tok.Line, Group: g,
		})
		b.group, b.groupLevel = g, level

	case DataStructuresHeading:
		b.prose = nil
		s := &blueprint.Section{Kind: blueprint.SectionDataStructures, Title: collapseSpaces(tok.Text), Level: level, Line: tok.Line}
		b.doc.Sections = append(b.doc.Sections, s)
		b.dsSection, b.dsLevel = s, level

	case ResourceHeading:
		b.prose = nil
		b.ensureGroup(level, tok.Line)
		r := &blueprint.Resource{Name: h.Name, URI: h.URI, Line: tok.Line}
		b.group.Resources = append(b.group.Resources, r)
		b.resource, b.resLevel = r, level
		b.action = nil

	case ActionHeading:
		if b.resource == nil {
			if h.URI == "" {
				return &UnknownSectionKindError{
					Keyword: h.Method, Line: tok.Line, Section: b.sectionName(),
					Reason: "action has no enclosing resource and no URI",
				}
			}
			b.prose = nil
			b.ensureGroup(level, tok.Line)
			r := &blueprint.Resource{Name: h.Name, URI: h.URI, IgnoreTOC: true, Line: tok.Line}
			b.group.Resources = append(b.group.Resources, r)
			b.resource, b.resLevel = r, level
		}
		a := &blueprint.Action{Name: h.Name, Method: h.Method, URI: h.URI, Line: tok.Line}
		b.resource.Actions = append(b.resource.Actions, a)
		b.action, b.actLevel = a, level

	case PlainHeading:
		if b.group != nil {
			appendMarkdown(b.markdownTarget(), strings.Repeat("#", level)+" "+h.Text, true)
			return nil
		}
		s := &blueprint.Section{Kind: blueprint.SectionProse, Title: h.Text, Level: level, Line: tok.Line}
		if n := len(b.prose); n > 0 {
			b.prose[n-1].Subsections = append(b.prose[n-1].Subsections, s)
		} else {
			b.doc.Sections = append(b.doc.Sections, s)
		}
		b.prose = append(b.prose, s)
		if level == 1 && b.doc.Title == "" {
			b.doc.Title = h.Text
		}
	}
	return nil
}

func (b *builder) structureHeading(tok lexer.Token) {
	name, spec := splitSpec(collapseSpaces(tok.Text))
	base := parseTypeArgument(spec)
	if base.IsZero() {
		base = blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: blueprint.Object}
	}
	def := &blueprint.DataStructureDef{Name: unquote(name), Base: base, Line: tok.Line}
	b.dsSection.Structures = append(b.dsSection.Structures, def)
	b.doc.DataStructures = append(b.doc.DataStructures, def)
	b.structure = def
}

// closeTo closes every open section whose heading level is >= level.
func (b *builder) closeTo(level int) {
	if b.action != nil && b.actLevel >= level {
		b.action = nil
	}
	if b.resource != nil && b.resLevel >= level {
		b.resource, b.action = nil, nil
	}
	if b.group != nil && b.groupLevel >= level {
		b.group, b.resource, b.action = nil, nil, nil
	}
	for len(b.prose) > 0 && b.prose[len(b.prose)-1].Level >= level {
		b.prose = b.prose[:len(b.prose)-1]
	}
}

func (b *builder) closeStructural() {
	b.prose = nil
	b.group, b.resource, b.action = nil, nil, nil
}

// ensureGroup opens a group for a resource heading at level. Resources
// outside any named group share an unnamed group for as long as it is the
// last top-level section.
func (b *builder) ensureGroup(level, line int) {
	if b.group != nil {
		return
	}
	if n := len(b.doc.Sections); n > 0 {
		last := b.doc.Sections[n-1]
		if last.Kind == blueprint.SectionGroup && last.Group.Name == "" {
			b.group, b.groupLevel = last.Group, level
			return
		}
	}
	g := &blueprint.ResourceGroup{Line: line}
	b.doc.Sections = append(b.doc.Sections, &blueprint.Section{
		Kind: blueprint.SectionGroup, Level: level, Line: line, Group: g,
	})
	b.group, b.groupLevel = g, level
}

func (b *builder) markdownTarget() *string {
	switch {
	case b.action != nil:
		return &b.action.Description
	case b.resource != nil:
		return &b.resource.Description
	case b.structure != nil:
		return &b.structure.Description
	case b.dsSection != nil:
		return &b.dsSection.Body
	case b.group != nil:
		return &b.group.Description
	case len(b.prose) > 0:
		return &b.prose[len(b.prose)-1].Body
	default:
		return &b.doc.Description
	}
}

func (b *builder) sectionName() string {
	switch {
	case b.action != nil && b.action.Name != "":
		return b.action.Name
	case b.action != nil:
		return b.action.Method + " " + b.action.URI
	case b.resource != nil && b.resource.Name != "":
		return b.resource.Name
	case b.resource != nil:
		return b.resource.URI
	case b.structure != nil:
		return b.structure.Name
	case b.dsSection != nil:
		return b.dsSection.Title
	case b.group != nil && b.group.Name != "":
		return b.group.Name
	case len(b.prose) > 0:
		return b.prose[len(b.prose)-1].Title
	default:
		return "document"
	}
}

func (b *builder) unknown(tok lexer.Token, reason string) error {
	return &UnknownSectionKindError{Keyword: tok.Keyword, Line: tok.Line, Section: b.sectionName(), Reason: reason}
}

func (b *builder) keyword(tok lexer.Token, parent *frame) (frame, error) {
	switch tok.Keyword {
	case lexer.KeywordParameters:
		switch {
		case parent != nil:
			return frame{}, b.unknown(tok, "is nested in another block")
		case b.action != nil:
			return frame{kind: frameParameters, params: &b.action.Parameters}, nil
		case b.resource != nil:
			return frame{kind: frameParameters, params: &b.resource.Parameters}, nil
		}
		return frame{}, b.unknown(tok, "appears outside any resource or action")

	case lexer.KeywordAttributes:
		attrs := &blueprint.Attributes{Line: tok.Line}
		if ref := parseTypeArgument(tok.Argument); !ref.IsZero() && !(ref.Kind == blueprint.TypePrimitive && ref.Name == blueprint.Object) {
			attrs.Ref = &ref
		}
		f := frame{kind: frameAttributes, fields: &attrs.Fields, includes: &attrs.Includes}
		switch {
		case parent != nil && parent.kind == framePayload:
			parent.payload.Attributes = attrs
		case parent != nil:
			return frame{}, b.unknown(tok, "is nested in another block")
		case b.action != nil:
			b.action.Attributes = attrs
		case b.resource != nil:
			b.resource.Attributes = attrs
		case b.structure != nil:
			f.fields, f.includes = &b.structure.Fields, &b.structure.Includes
		case b.dsSection != nil:
			return frame{}, b.unknown(tok, "appears directly under Data Structures without a structure heading")
		default:
			return frame{}, b.unknown(tok, "appears outside any resource or action")
		}
		return f, nil

	case lexer.KeywordRequest, lexer.KeywordResponse:
		if parent != nil {
			return frame{}, b.unknown(tok, "is nested in another block")
		}
		if b.action == nil {
			if b.resource != nil {
				return frame{}, b.unknown(tok, "appears in a resource without an action")
			}
			return frame{}, b.unknown(tok, "appears outside any resource or action")
		}
		p := &blueprint.Payload{Line: tok.Line}
		if tok.Keyword == lexer.KeywordRequest {
			p.Name, p.MediaType = splitMediaType(tok.Argument)
			b.action.Requests = append(b.action.Requests, p)
		} else {
			code, rest, _ := strings.Cut(strings.TrimSpace(tok.Argument), " ")
			if strings.HasPrefix(code, "(") {
				code, rest = "", tok.Argument
			}
			if code != "" && !statusRe.MatchString(code) {
				return frame{}, &lexer.MalformedStructureError{
					Line: tok.Line, Context: lexer.KeywordResponse, Text: tok.Text,
					Reason: "response status code is not a 3-digit code",
				}
			}
			p.Status = code
			_, p.MediaType = splitMediaType(rest)
			b.action.Responses = append(b.action.Responses, p)
		}
		return frame{kind: framePayload, payload: p}, nil

	case lexer.KeywordHeaders, lexer.KeywordBody, lexer.KeywordSchema:
		if parent == nil || parent.kind != framePayload {
			if b.action == nil && b.resource == nil {
				return frame{}, b.unknown(tok, "appears outside any resource or action")
			}
			return frame{}, b.unknown(tok, "appears outside a Request or Response")
		}
		kind := map[string]frameKind{
			lexer.KeywordHeaders: frameHeaders,
			lexer.KeywordBody:    frameBody,
			lexer.KeywordSchema:  frameSchema,
		}[tok.Keyword]
		return frame{kind: kind, payload: parent.payload}, nil

	case lexer.KeywordMembers, lexer.KeywordValues:
		switch {
		case parent != nil && parent.kind == frameField:
			return frame{kind: frameValues, values: &parent.field.Values}, nil
		case parent != nil && parent.kind == frameParameter:
			return frame{kind: frameValues, values: &parent.param.Values}, nil
		}
		return frame{}, nil

	case lexer.KeywordDefault:
		switch {
		case parent != nil && parent.kind == frameField:
			parent.field.Default = unquote(tok.Argument)
		case parent != nil && parent.kind == frameParameter:
			parent.param.Default = unquote(tok.Argument)
		}
		return frame{}, nil

	case lexer.KeywordInclude:
		ref := includeRef(tok.Argument)
		switch {
		case parent != nil && parent.includes != nil:
			*parent.includes = append(*parent.includes, ref)
		case parent == nil && b.structure != nil:
			b.structure.Includes = append(b.structure.Includes, ref)
		default:
			return frame{}, b.unknown(tok, "has no enclosing attributes or data structure")
		}
		return frame{}, nil
	}
	return frame{}, nil
}

func includeRef(arg string) blueprint.TypeRef {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "(") {
		return parseTypeArgument(arg)
	}
	return blueprint.ParseTypeRef(unquote(arg))
}

func (b *builder) parameter(tok lexer.Token, parent *frame) frame {
	if parent == nil || parent.kind != frameParameters {
		return frame{}
	}
	m := parseMember(tok.Text)
	p := &blueprint.Parameter{
		Name:        m.Name,
		Type:        m.Type,
		Required:    m.Required || !m.Optional,
		Description: m.Description,
		Line:        tok.Line,
	}
	if m.IsDefault {
		p.Default = m.Value
	} else {
		p.Example = m.Value
	}
	*parent.params = append(*parent.params, p)
	return frame{kind: frameParameter, param: p}
}

func (b *builder) attribute(tok lexer.Token, parent *frame) (frame, error) {
	var fields *[]*blueprint.FieldDef
	switch {
	case parent == nil && b.structure != nil:
		fields = &b.structure.Fields
	case parent == nil:
		return frame{}, &UnknownSectionKindError{
			Keyword: lexer.KeywordAttributes, Line: tok.Line, Section: b.sectionName(),
			Reason: "member appears without a data structure heading",
		}
	case parent.fields != nil:
		fields = parent.fields
	default:
		return frame{}, nil
	}

	m := parseMember(tok.Text)
	f := &blueprint.FieldDef{
		Name:        m.Name,
		Type:        m.Type,
		Required:    m.Required,
		Fixed:       m.Fixed,
		Description: m.Description,
		Line:        tok.Line,
	}
	if m.HasValue {
		if m.IsDefault {
			f.Default = m.Value
		} else {
			f.Sample, f.HasSample = m.Value, true
		}
	}
	*fields = append(*fields, f)
	return frame{kind: frameField, field: f, fields: &f.Fields, includes: &f.Includes}, nil
}

func (b *builder) value(tok lexer.Token, parent *frame) frame {
	if parent == nil || parent.kind != frameValues {
		return frame{}
	}
	m := parseMember(tok.Text)
	v := m.Name
	if v == "" {
		v = m.Value
	}
	*parent.values = append(*parent.values, blueprint.EnumValue{Value: v, Description: m.Description})
	return frame{kind: frameValue, values: parent.values, index: len(*parent.values) - 1}
}

// content attaches paragraphs, table rows and code to the innermost owner.
func (b *builder) content(tok lexer.Token, parent *frame) {
	if parent == nil || parent.kind == frameProse {
		appendMarkdown(b.markdownTarget(), tok.Raw, tok.BlankBefore)
		return
	}
	switch parent.kind {
	case frameParameter:
		appendText(&parent.param.Description, tok.Text)
	case frameField:
		appendText(&parent.field.Description, tok.Text)
	case frameValue:
		appendText(&(*parent.values)[parent.index].Description, tok.Text)
	case framePayload:
		if tok.Kind == lexer.KindCode {
			parent.payload.Body = tok.Content
		} else {
			appendMarkdown(&parent.payload.Description, tok.Text, tok.BlankBefore)
		}
	case frameHeaders:
		if tok.Kind == lexer.KindCode {
			parent.payload.Headers = append(parent.payload.Headers, parseHeaders(tok.Content)...)
		}
	case frameBody:
		if tok.Kind == lexer.KindCode {
			parent.payload.Body = tok.Content
		}
	case frameSchema:
		if tok.Kind == lexer.KindCode {
			parent.payload.Schema = tok.Content
		}
	}
}

func parseHeaders(content string) []blueprint.Header {
	var out []blueprint.Header
	for _, line := range strings.Split(content, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, blueprint.Header{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return out
}

func appendMarkdown(dst *string, line string, blankBefore bool) {
	switch {
	case *dst == "":
		*dst = line
	case blankBefore:
		*dst += "\n\n" + line
	default:
		*dst += "\n" + line
	}
}

func appendText(dst *string, text string) {
	if *dst == "" {
		*dst = text
		return
	}
	*dst += " " + text
}

// finish fills in implied types.
func (b *builder) finish() {
	for _, ds := range b.doc.DataStructures {
		defaultFieldTypes(ds.Fields)
	}
	for _, r := range b.doc.Resources() {
		defaultParamTypes(r.Parameters)
		defaultAttributeTypes(r.Attributes)
		for _, a := range r.Actions {
			defaultParamTypes(a.Parameters)
			defaultAttributeTypes(a.Attributes)
			for _, p := range a.Requests {
				defaultAttributeTypes(p.Attributes)
			}
			for _, p := range a.Responses {
				defaultAttributeTypes(p.Attributes)
			}
		}
	}
}

func defaultAttributeTypes(a *blueprint.Attributes) {
	if a != nil {
		defaultFieldTypes(a.Fields)
	}
}

func defaultFieldTypes(fields []*blueprint.FieldDef) {
	for _, f := range fields {
		if f.Type.IsZero() {
			switch {
			case len(f.Values) > 0:
				f.Type = blueprint.TypeRef{Kind: blueprint.TypeEnum, Name: blueprint.Enum}
			case len(f.Fields) > 0 || len(f.Includes) > 0:
				f.Type = blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: blueprint.Object}
			default:
				f.Type = blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: blueprint.String}
			}
		}
		defaultFieldTypes(f.Fields)
	}
}

func defaultParamTypes(params []*blueprint.Parameter) {
	for _, p := range params {
		if p.Type.IsZero() {
			if len(p.Values) > 0 {
				p.Type = blueprint.TypeRef{Kind: blueprint.TypeEnum, Name: blueprint.Enum}
			} else {
				p.Type = blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: blueprint.String}
			}
		}
	}
}
