// Package lexer turns API description text into a lazy sequence of structural
// tokens. Nesting of list blocks (parameters, attributes, payload sections) is
// tracked with an explicit stack of open block contexts keyed by indentation.
package lexer

import (
	"io"
	"regexp"
	"strings"
)

var (
	metadataRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_ \-]*):\s*(.*)$`)
	headingRe  = regexp.MustCompile(`^(#{1,6})(?:\s+(.*?))?(?:\s+#+)?\s*$`)
	listItemRe = regexp.MustCompile(`^[+\-*]\s+(.*)$`)

	// keyword argument grammars
	typeSpecRe    = regexp.MustCompile(`^(?:\([^()]*\))?$`)
	responseArgRe = regexp.MustCompile(`^(?:[0-9]+)?\s*(?:\([^()]*\))?$`)
	requestArgRe  = regexp.MustCompile(`^[^()]*?\s*(?:\([^()]*\))?$`)
)

type blockKind int

const (
	blockKeyword blockKind = iota + 1
	blockParameter
	blockAttribute
	blockValue
	blockProse
)

// block is one open context on the nesting stack.
type block struct {
	kind    blockKind
	keyword string
	indent  int
}

func (b block) name() string {
	switch b.kind {
	case blockKeyword:
		return b.keyword
	case blockParameter:
		return "parameter"
	case blockAttribute:
		return "attribute"
	case blockValue:
		return "value"
	default:
		return "list"
	}
}

// codeThreshold is the minimal extra indentation of a body written directly
// under a Request or Response item.
const codeThreshold = 8

// Lexer produces tokens on demand. It is not safe for concurrent use.
type Lexer struct {
	lines []string
	pos   int
	stack []block

	inMetadata bool
	dsMode     bool
	dsLevel    int
	blank      bool

	err error
}

// New returns a lexer over text. Tabs are expanded to four spaces and line
// endings normalised before scanning.
func New(text string) *Lexer {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(strings.ReplaceAll(lines[i], "\t", "    "), " ")
	}
	return &Lexer{lines: lines, inMetadata: true}
}

// Tokenize drains a lexer over text.
func Tokenize(text string) ([]Token, error) {
	l := New(text)
	var out []Token
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
}

// Next returns the next token, io.EOF when the input is drained, or a
// *MalformedStructureError. Errors are sticky.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	for l.pos < len(l.lines) {
		tok, ok, err := l.scan()
		if err != nil {
			l.err = err
			return Token{}, err
		}
		if ok {
			return tok, nil
		}
	}
	l.err = io.EOF
	return Token{}, io.EOF
}

func (l *Lexer) scan() (Token, bool, error) {
	lineNo := l.pos + 1
	raw := l.lines[l.pos]
	trimmed := strings.TrimSpace(raw)
	indent := indentOf(raw)

	if trimmed == "" {
		l.pos++
		l.blank = true
		return Token{}, false, nil
	}

	if l.inMetadata {
		if m := metadataRe.FindStringSubmatch(raw); m != nil {
			l.pos++
			tok := Token{Kind: KindMetadata, Line: lineNo, Key: strings.TrimSpace(m[1]), Value: strings.TrimSpace(m[2]), Raw: raw}
			return l.emit(tok, indent), true, nil
		}
		l.inMetadata = false
	}

	l.popTo(indent)

	if l.absorbsCode(indent) {
		return l.scanCode(lineNo, indent), true, nil
	}

	if m := headingRe.FindStringSubmatch(trimmed); m != nil && indent <= 3 {
		l.pos++
		return l.heading(lineNo, raw, len(m[1]), strings.TrimSpace(m[2])), true, nil
	}

	if m := listItemRe.FindStringSubmatch(trimmed); m != nil {
		l.pos++
		return l.listItem(lineNo, raw, indent, strings.TrimSpace(m[1]))
	}

	top := l.top()
	if strings.HasPrefix(trimmed, "```") && (top == nil || top.kind == blockProse) {
		return l.scanFence(lineNo, indent)
	}

	l.pos++
	if top == nil && strings.HasPrefix(trimmed, "|") {
		return l.emit(Token{Kind: KindTableRow, Line: lineNo, Cells: splitRow(trimmed), Text: trimmed, Raw: raw}, indent), true, nil
	}
	return l.emit(Token{Kind: KindParagraph, Line: lineNo, Text: trimmed, Raw: raw}, indent), true, nil
}

func (l *Lexer) heading(lineNo int, raw string, level int, text string) Token {
	l.stack = l.stack[:0]
	switch {
	case strings.EqualFold(text, "Data Structures"):
		l.dsMode = true
		l.dsLevel = level
	case l.dsMode && level <= l.dsLevel:
		l.dsMode = false
	}
	return l.emit(Token{Kind: KindHeading, Line: lineNo, Level: level, Text: text, Raw: raw}, 0)
}

func (l *Lexer) listItem(lineNo int, raw string, indent int, text string) (Token, bool, error) {
	top := l.top()
	kw, arg, isKeyword := matchKeyword(text)
	malformed := func(reason string) (Token, bool, error) {
		return Token{}, false, &MalformedStructureError{Line: lineNo, Context: l.contextName(), Text: text, Reason: reason}
	}
	keyword := func() (Token, bool, error) {
		tok := Token{Kind: KindKeyword, Line: lineNo, Keyword: kw, Argument: arg, Text: text, Raw: raw, Opens: true}
		return l.open(tok, indent, block{kind: blockKeyword, keyword: kw, indent: indent}), true, nil
	}
	member := func(kind Kind, bk blockKind) (Token, bool, error) {
		tok := Token{Kind: kind, Line: lineNo, Text: text, Raw: raw, Opens: true}
		return l.open(tok, indent, block{kind: bk, indent: indent}), true, nil
	}

	if top == nil {
		switch {
		case isKeyword && (kw == KeywordMembers || kw == KeywordValues || kw == KeywordDefault):
			return malformed(kw + " has no enclosing parameter or attribute")
		case isKeyword && kw == KeywordInclude && !l.dsMode:
			return malformed("Include has no enclosing attributes")
		case isKeyword:
			return keyword()
		case l.dsMode:
			return member(KindAttribute, blockAttribute)
		case indent > 0:
			return malformed("indented list item has no enclosing block")
		default:
			return member(KindParagraph, blockProse)
		}
	}

	switch top.kind {
	case blockProse:
		if isKeyword && sectionKeyword(kw) {
			return keyword()
		}
		return member(KindParagraph, blockProse)
	case blockParameter:
		if isKeyword && (kw == KeywordMembers || kw == KeywordValues || kw == KeywordDefault) {
			return keyword()
		}
		return malformed("unexpected list item inside parameter")
	case blockAttribute:
		if isKeyword && (kw == KeywordMembers || kw == KeywordValues || kw == KeywordDefault || kw == KeywordInclude) {
			return keyword()
		}
		return member(KindAttribute, blockAttribute)
	case blockValue:
		return malformed("unexpected list item inside enumeration value")
	}

	switch top.keyword {
	case KeywordParameters:
		return member(KindParameter, blockParameter)
	case KeywordAttributes:
		if isKeyword && kw == KeywordInclude {
			return keyword()
		}
		return member(KindAttribute, blockAttribute)
	case KeywordMembers, KeywordValues:
		return member(KindValue, blockValue)
	case KeywordRequest, KeywordResponse:
		if isKeyword && (kw == KeywordHeaders || kw == KeywordBody || kw == KeywordSchema || kw == KeywordAttributes) {
			return keyword()
		}
		return malformed("expected Headers, Body, Schema or Attributes")
	default:
		return malformed("unexpected list item")
	}
}

// absorbsCode reports whether a line at indent belongs to a code block of the
// innermost open context.
func (l *Lexer) absorbsCode(indent int) bool {
	top := l.top()
	if top == nil || top.kind != blockKeyword {
		return false
	}
	switch top.keyword {
	case KeywordBody, KeywordHeaders, KeywordSchema:
		return indent > top.indent
	case KeywordRequest, KeywordResponse:
		return indent >= top.indent+codeThreshold
	default:
		return false
	}
}

func (l *Lexer) scanCode(lineNo, base int) Token {
	var lines []string
	for l.pos < len(l.lines) {
		line := l.lines[l.pos]
		if strings.TrimSpace(line) != "" && indentOf(line) < base {
			break
		}
		if len(line) >= base {
			lines = append(lines, line[base:])
		} else {
			lines = append(lines, "")
		}
		l.pos++
	}
	trailing := 0
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
		trailing++
	}
	raw := strings.Join(l.lines[lineNo-1:lineNo-1+len(lines)], "\n")
	tok := l.emit(Token{Kind: KindCode, Line: lineNo, Content: strings.Join(lines, "\n"), Raw: raw}, base)
	if trailing > 0 {
		l.blank = true
	}
	return tok
}

func (l *Lexer) scanFence(lineNo, indent int) (Token, bool, error) {
	start := l.lines[l.pos]
	raws := []string{start}
	var inner []string
	l.pos++
	for l.pos < len(l.lines) {
		line := l.lines[l.pos]
		raws = append(raws, line)
		l.pos++
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			tok := Token{Kind: KindCode, Line: lineNo, Fenced: true, Content: strings.Join(inner, "\n"), Raw: strings.Join(raws, "\n")}
			return l.emit(tok, indent), true, nil
		}
		if len(line) >= indent {
			inner = append(inner, line[indent:])
		} else {
			inner = append(inner, strings.TrimLeft(line, " "))
		}
	}
	return Token{}, false, &MalformedStructureError{Line: lineNo, Context: l.contextName(), Text: strings.TrimSpace(start), Reason: "unterminated fenced code block"}
}

func (l *Lexer) emit(tok Token, indent int) Token {
	tok.Indent = indent
	tok.Depth = len(l.stack)
	tok.BlankBefore = l.blank
	l.blank = false
	return tok
}

func (l *Lexer) open(tok Token, indent int, b block) Token {
	tok = l.emit(tok, indent)
	l.stack = append(l.stack, b)
	return tok
}

func (l *Lexer) popTo(indent int) {
	for len(l.stack) > 0 && l.stack[len(l.stack)-1].indent >= indent {
		l.stack = l.stack[:len(l.stack)-1]
	}
}

func (l *Lexer) top() *block {
	if len(l.stack) == 0 {
		return nil
	}
	return &l.stack[len(l.stack)-1]
}

func (l *Lexer) contextName() string {
	if top := l.top(); top != nil {
		return top.name()
	}
	if l.dsMode {
		return "data structures"
	}
	return "document"
}

func matchKeyword(text string) (keyword, argument string, ok bool) {
	for _, kw := range keywords {
		if !strings.HasPrefix(text, kw) {
			continue
		}
		rest := text[len(kw):]
		if rest != "" && rest[0] != ' ' && rest[0] != '(' && rest[0] != ':' {
			continue
		}
		rest = strings.TrimSpace(rest)
		if !argumentFits(kw, rest) {
			return "", "", false
		}
		if kw == KeywordDefault {
			rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		}
		return kw, rest, true
	}
	return "", "", false
}

// argumentFits reports whether rest is a valid argument of kw. A list item
// that starts with a keyword but does not fit its argument grammar is prose,
// e.g. "Headers are case-insensitive." or an attribute named "Body: text".
func argumentFits(kw, rest string) bool {
	switch kw {
	case KeywordResponse:
		return responseArgRe.MatchString(rest)
	case KeywordRequest:
		return requestArgRe.MatchString(rest) && !endsSentence(rest)
	case KeywordDefault:
		return rest == "" || strings.HasPrefix(rest, ":")
	case KeywordInclude:
		return rest != "" && !strings.ContainsAny(rest, ":") && !endsSentence(rest)
	default:
		return typeSpecRe.MatchString(rest)
	}
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, ",") || strings.HasSuffix(s, ";") ||
		strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// sectionKeyword reports whether kw opens a structural section, as opposed
// to the member-level Members, Values, Default and Include.
func sectionKeyword(kw string) bool {
	switch kw {
	case KeywordParameters, KeywordAttributes, KeywordRequest, KeywordResponse,
		KeywordBody, KeywordHeaders, KeywordSchema:
		return true
	}
	return false
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	parts := strings.Split(row, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}
