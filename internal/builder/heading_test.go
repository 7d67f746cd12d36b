package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apib-renderer/renderer/internal/blueprint"
)

func TestParseHeading(t *testing.T) {
	tests := []struct {
		text     string
		expected Heading
	}{
		{"Group Questions", GroupHeading{Name: "Questions"}},
		{"Data Structures", DataStructuresHeading{}},
		{"data structures", DataStructuresHeading{}},
		{"Questions Collection [/questions]", ResourceHeading{Name: "Questions Collection", URI: "/questions"}},
		{"Question  Detail   [/questions/{id}]", ResourceHeading{Name: "Question Detail", URI: "/questions/{id}"}},
		{"[/]", ResourceHeading{URI: "/"}},
		{"/notes/{id}", ResourceHeading{URI: "/notes/{id}"}},
		{"List All Questions [GET]", ActionHeading{Name: "List All Questions", Method: "GET"}},
		{"Vote [POST /questions/{id}/choices/{id}]", ActionHeading{Name: "Vote", Method: "POST", URI: "/questions/{id}/choices/{id}"}},
		{"GET /questions{?page}", ActionHeading{Method: "GET", URI: "/questions{?page}"}},
		{"Unlink [UNLINK]", ActionHeading{Name: "Unlink", Method: "UNLINK"}},
		{"Overview", PlainHeading{Text: "Overview"}},
		{"Notes [draft]", PlainHeading{Text: "Notes [draft]"}},
		{"Fetch [get]", PlainHeading{Text: "Fetch [get]"}},
		{"Grouping rules", PlainHeading{Text: "Grouping rules"}},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseHeading(tc.text))
		})
	}
}

func TestParseMember(t *testing.T) {
	named := func(n string) blueprint.TypeRef { return blueprint.TypeRef{Kind: blueprint.TypeNamed, Name: n} }
	tests := []struct {
		text     string
		expected member
	}{
		{
			text: "id: `1` (number, required) - ID of the Question",
			expected: member{Name: "id", Value: "1", HasValue: true, Required: true, Description: "ID of the Question",
				Type: blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: "number"}},
		},
		{
			text: "choices (array[Choice, Answer], required) - Available answers",
			expected: member{Name: "choices", Required: true, Description: "Available answers",
				Type: blueprint.TypeRef{Kind: blueprint.TypeArray, Name: "array", Elem: []blueprint.TypeRef{named("Choice"), named("Answer")}}},
		},
		{
			text:     "self (Node)",
			expected: member{Name: "self", Type: named("Node")},
		},
		{
			text:     "published_at: `2015-08-05T08:40:51 - 00` (string)",
			expected: member{Name: "published_at", Value: "2015-08-05T08:40:51 - 00", HasValue: true, Type: blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: "string"}},
		},
		{
			text:     "page: 1 (number, optional, default)",
			expected: member{Name: "page", Value: "1", HasValue: true, Optional: true, IsDefault: true, Type: blueprint.TypeRef{Kind: blueprint.TypePrimitive, Name: "number"}},
		},
		{
			text:     "url: /questions/1",
			expected: member{Name: "url", Value: "/questions/1", HasValue: true},
		},
		{
			text:     "`open` - Still accepting votes",
			expected: member{Name: "open", Description: "Still accepting votes"},
		},
		{
			text:     "status: active (enum[string], fixed)",
			expected: member{Name: "status", Value: "active", HasValue: true, Fixed: true, Type: blueprint.TypeRef{Kind: blueprint.TypeEnum, Name: "enum", Elem: []blueprint.TypeRef{{Kind: blueprint.TypePrimitive, Name: "string"}}}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseMember(tc.text))
		})
	}
}
