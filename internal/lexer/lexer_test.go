package lexer

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s ...string) string {
	return strings.Join(s, "\n")
}

// shape is the subset of a token the table tests compare.
type shape struct {
	Kind  Kind
	Line  int
	Depth int
	Text  string
}

func shapes(toks []Token) []shape {
	out := make([]shape, 0, len(toks))
	for _, t := range toks {
		s := shape{Kind: t.Kind, Line: t.Line, Depth: t.Depth, Text: t.Text}
		switch t.Kind {
		case KindMetadata:
			s.Text = t.Key + "=" + t.Value
		case KindKeyword:
			s.Text = t.Keyword + "|" + t.Argument
		case KindCode:
			s.Text = t.Content
		}
		out = append(out, s)
	}
	return out
}

var prose = lines(
	"## Overview",
	"- Headers are case-insensitive.",
	"- Body size is limited to 1 MB.",
	"- Response times vary",
	"- Default values apply.",
	"- Include the token.",
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []shape
	}{
		{
			name:  "metadata and heading",
			input: lines("FORMAT: 1A", "HOST: http://example.com", "", "# Title"),
			expected: []shape{
				{KindMetadata, 1, 0, "FORMAT=1A"},
				{KindMetadata, 2, 0, "HOST=http://example.com"},
				{KindHeading, 4, 0, "Title"},
			},
		},
		{
			name:  "metadata ends at first other line",
			input: lines("FORMAT: 1A", "Some intro", "Note: not metadata"),
			expected: []shape{
				{KindMetadata, 1, 0, "FORMAT=1A"},
				{KindParagraph, 2, 0, "Some intro"},
				{KindParagraph, 3, 0, "Note: not metadata"},
			},
		},
		{
			name: "parameters with members",
			input: lines(
				"## Note [/notes/{id}]",
				"+ Parameters",
				"    + id: `1` (number) - Note id",
				"        + Members",
				"            + `1`",
			),
			expected: []shape{
				{KindHeading, 1, 0, "Note [/notes/{id}]"},
				{KindKeyword, 2, 0, "Parameters|"},
				{KindParameter, 3, 1, "id: `1` (number) - Note id"},
				{KindKeyword, 4, 2, "Members|"},
				{KindValue, 5, 3, "`1`"},
			},
		},
		{
			name: "response body indented under response",
			input: lines(
				"### Get [GET]",
				"+ Response 200 (application/json)",
				"",
				"        {",
				`          "a": 1`,
				"        }",
				"",
				"Trailing text",
			),
			expected: []shape{
				{KindHeading, 1, 0, "Get [GET]"},
				{KindKeyword, 2, 0, "Response|200 (application/json)"},
				{KindCode, 4, 1, "{\n  \"a\": 1\n}"},
				{KindParagraph, 8, 0, "Trailing text"},
			},
		},
		{
			name: "headers and body sections",
			input: lines(
				"+ Response 201",
				"    + Headers",
				"",
				"            Location: /x",
				"",
				"    + Body",
				"",
				"            {}",
			),
			expected: []shape{
				{KindKeyword, 1, 0, "Response|201"},
				{KindKeyword, 2, 1, "Headers|"},
				{KindCode, 4, 2, "Location: /x"},
				{KindKeyword, 6, 1, "Body|"},
				{KindCode, 8, 2, "{}"},
			},
		},
		{
			name: "data structures mode",
			input: lines(
				"# Data Structures",
				"## Choice",
				"+ choice: Swift (string)",
				"    + Include Base",
				"# Group Questions",
				"+ a list item",
			),
			expected: []shape{
				{KindHeading, 1, 0, "Data Structures"},
				{KindHeading, 2, 0, "Choice"},
				{KindAttribute, 3, 0, "choice: Swift (string)"},
				{KindKeyword, 4, 1, "Include|Base"},
				{KindHeading, 5, 0, "Group Questions"},
				{KindParagraph, 6, 0, "a list item"},
			},
		},
		{
			name: "nested attributes",
			input: lines(
				"+ Attributes (Question)",
				"    + author (object)",
				"        + name: Ann",
				"    + tags (array)",
			),
			expected: []shape{
				{KindKeyword, 1, 0, "Attributes|(Question)"},
				{KindAttribute, 2, 1, "author (object)"},
				{KindAttribute, 3, 2, "name: Ann"},
				{KindAttribute, 4, 1, "tags (array)"},
			},
		},
		{
			name:  "keyword-like attribute name",
			input: lines("+ Attributes", "    + Body: text (string)"),
			expected: []shape{
				{KindKeyword, 1, 0, "Attributes|"},
				{KindAttribute, 2, 1, "Body: text (string)"},
			},
		},
		{
			name:  "default keyword",
			input: lines("+ Parameters", "    + page: 1 (number, optional)", "        + Default: `1`"),
			expected: []shape{
				{KindKeyword, 1, 0, "Parameters|"},
				{KindParameter, 2, 1, "page: 1 (number, optional)"},
				{KindKeyword, 3, 2, "Default|`1`"},
			},
		},
		{
			name:  "fenced code in prose",
			input: lines("# Intro", "", "```json", "{}", "```", "| a | b |"),
			expected: []shape{
				{KindHeading, 1, 0, "Intro"},
				{KindCode, 3, 0, "{}"},
				{KindTableRow, 6, 0, "| a | b |"},
			},
		},
		{
			name:  "heading text keeps inner hash",
			input: lines("## Learn C#", "## Closed ##"),
			expected: []shape{
				{KindHeading, 1, 0, "Learn C#"},
				{KindHeading, 2, 0, "Closed"},
			},
		},
		{
			name:  "keyword words in prose bullets",
			input: prose,
			expected: []shape{
				{KindHeading, 1, 0, "Overview"},
				{KindParagraph, 2, 0, "Headers are case-insensitive."},
				{KindParagraph, 3, 0, "Body size is limited to 1 MB."},
				{KindParagraph, 4, 0, "Response times vary"},
				{KindParagraph, 5, 0, "Default values apply."},
				{KindParagraph, 6, 0, "Include the token."},
			},
		},
		{
			name:  "section keyword nested in a prose list",
			input: lines("+ Notes", "    + Attributes (Missing)", "    + Members are listed below"),
			expected: []shape{
				{KindParagraph, 1, 0, "Notes"},
				{KindKeyword, 2, 1, "Attributes|(Missing)"},
				{KindParagraph, 3, 1, "Members are listed below"},
			},
		},
		{
			name:  "prose lists nest",
			input: lines("+ one", "    + two", "+ three"),
			expected: []shape{
				{KindParagraph, 1, 0, "one"},
				{KindParagraph, 2, 1, "two"},
				{KindParagraph, 3, 0, "three"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Tokenize(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, shapes(toks))
		})
	}
}

func TestMatchKeyword(t *testing.T) {
	tests := []struct {
		text     string
		keyword  string
		argument string
	}{
		{"Parameters", KeywordParameters, ""},
		{"Attributes (Question Data)", KeywordAttributes, "(Question Data)"},
		{"Attributes(array[Note])", KeywordAttributes, "(array[Note])"},
		{"Response 200 (application/json; charset=utf-8)", KeywordResponse, "200 (application/json; charset=utf-8)"},
		{"Response 2000", KeywordResponse, "2000"},
		{"Response (text/plain)", KeywordResponse, "(text/plain)"},
		{"Request Create Item (application/json)", KeywordRequest, "Create Item (application/json)"},
		{"Request", KeywordRequest, ""},
		{"Body", KeywordBody, ""},
		{"Default: `1`", KeywordDefault, "`1`"},
		{"Include Base", KeywordInclude, "Base"},
		{"Headers are case-insensitive.", "", ""},
		{"Body size is limited.", "", ""},
		{"Body: text (string)", "", ""},
		{"Attributes are listed below", "", ""},
		{"Response times vary", "", ""},
		{"Request limits apply.", "", ""},
		{"Default values apply", "", ""},
		{"Schemas", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			kw, arg, ok := matchKeyword(tc.text)
			assert.Equal(t, tc.keyword != "", ok)
			assert.Equal(t, tc.keyword, kw)
			assert.Equal(t, tc.argument, arg)
		})
	}
}

func TestTokenize_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		context string
	}{
		{
			name:    "parameter member without parameters block",
			input:   lines("# API", "", "    + id: 1 (number)"),
			line:    3,
			context: "document",
		},
		{
			name:    "members without enclosing parameter",
			input:   lines("## Note [/notes]", "+ Members"),
			line:    2,
			context: "document",
		},
		{
			name:    "plain item inside response",
			input:   lines("+ Response 200", "    + something"),
			line:    2,
			context: KeywordResponse,
		},
		{
			name:    "nested item inside enumeration value",
			input:   lines("+ Parameters", "    + id", "        + Members", "            + a", "                + b"),
			line:    5,
			context: "value",
		},
		{
			name:    "unterminated fence",
			input:   lines("# A", "```", "code"),
			line:    2,
			context: "document",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize(tc.input)
			require.Error(t, err)
			var merr *MalformedStructureError
			require.True(t, errors.As(err, &merr), "got %T", err)
			assert.Equal(t, tc.line, merr.Line)
			assert.Equal(t, tc.context, merr.Context)
			assert.Equal(t, "malformed_structure", merr.ErrorType())
		})
	}
}

func TestLexer_Next(t *testing.T) {
	t.Run("eof is repeated", func(t *testing.T) {
		l := New("# A")
		tok, err := l.Next()
		require.NoError(t, err)
		assert.Equal(t, KindHeading, tok.Kind)
		for i := 0; i < 2; i++ {
			_, err = l.Next()
			assert.Equal(t, io.EOF, err)
		}
	})
	t.Run("errors are sticky", func(t *testing.T) {
		l := New(lines("    + x", "# B"))
		_, err := l.Next()
		require.Error(t, err)
		_, again := l.Next()
		assert.Same(t, err, again)
	})
	t.Run("tabs and carriage returns", func(t *testing.T) {
		toks, err := Tokenize("+ Parameters\r\n\t+ id\r\n")
		require.NoError(t, err)
		require.Len(t, toks, 2)
		assert.Equal(t, KindParameter, toks[1].Kind)
		assert.Equal(t, 4, toks[1].Indent)
		assert.Equal(t, "id", toks[1].Text)
	})
	t.Run("blank before", func(t *testing.T) {
		toks, err := Tokenize(lines("# A", "one", "", "two"))
		require.NoError(t, err)
		require.Len(t, toks, 3)
		assert.False(t, toks[1].BlankBefore)
		assert.True(t, toks[2].BlankBefore)
	})
}
