package example

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/builder"
	"github.com/apib-renderer/renderer/internal/fixtures"
	_ "github.com/apib-renderer/renderer/internal/handler"
	"github.com/apib-renderer/renderer/internal/resolver"
)

func generator(t *testing.T, text string) (*Generator, *blueprint.Document) {
	t.Helper()
	doc, err := builder.Parse(text)
	require.NoError(t, err)
	res, err := resolver.Resolve(doc, nil)
	require.NoError(t, err)
	return New(res, nil), doc
}

func TestBody_Polls(t *testing.T) {
	g, doc := generator(t, fixtures.Polls)
	resources := doc.Resources()

	t.Run("literal body without attributes is untouched", func(t *testing.T) {
		p := resources[0].Actions[0].Responses[0]
		assert.Equal(t, p.Body, g.Body(p))
		assert.False(t, g.Generated(p))
	})
	t.Run("generated from attributes", func(t *testing.T) {
		p := resources[1].Actions[0].Responses[0]
		assert.True(t, g.Generated(p))
		expected := `{
  "question": "Favourite programming language?",
  "published_at": "2015-08-05T08:40:51.620Z",
  "url": "/questions/1",
  "choices": [
    {
      "choice": "Swift",
      "url": "/questions/1/choices/1",
      "votes": 2048
    }
  ]
}`
		assert.Equal(t, expected, g.Body(p))
	})
	t.Run("literal body reordered to declared order", func(t *testing.T) {
		p := resources[3].Actions[1].Responses[0]
		expected := `{
  "question": "Favourite programming language?",
  "published_at": "2015-08-05T08:40:51.620Z",
  "url": "/questions/2",
  "choices": [
    {
      "choice": "Swift",
      "url": "/questions/2/choices/1",
      "votes": 0
    }
  ]
}`
		assert.Equal(t, expected, g.Body(p))
	})
}

func TestBody_Recursive(t *testing.T) {
	g, doc := generator(t, strings.Join([]string{
		"## Tree [/tree]",
		"### Get [GET]",
		"+ Response 200 (application/json)",
		"    + Attributes (Node)",
		"# Data Structures",
		"## Node",
		"+ name: root",
		"+ self (Node)",
		"+ children (array[Node])",
	}, "\n"))
	p := doc.Resources()[0].Actions[0].Responses[0]
	assert.Equal(t, "{\n  \"name\": \"root\",\n  \"self\": {},\n  \"children\": []\n}", g.Body(p))
}

func TestBody_Samples(t *testing.T) {
	g, doc := generator(t, strings.Join([]string{
		"## Item [/item]",
		"### Create [POST]",
		"+ Request (application/json)",
		"    + Attributes",
		"        + id: 42 (number)",
		"        + active: true (boolean)",
		"        + ratio (number)",
		"        + tags: a, b (array[string])",
		"        + state (enum[string])",
		"            + Members",
		"                + `open`",
		"                + `closed`",
		"        + owner (object)",
		"            + name: Ann",
		"        + Include Stamp",
		"+ Response 204",
		"# Data Structures",
		"## Stamp",
		"+ created: 2016-01-12",
	}, "\n"))
	p := doc.Resources()[0].Actions[0].Requests[0]
	expected := `{
  "created": "2016-01-12",
  "id": 42,
  "active": true,
  "ratio": 0,
  "tags": [
    "a",
    "b"
  ],
  "state": "open",
  "owner": {
    "name": "Ann"
  }
}`
	assert.Equal(t, expected, g.Body(p))
}

func TestBody_NonJSONBodyKept(t *testing.T) {
	g, doc := generator(t, strings.Join([]string{
		"## Note [/note]",
		"### Get [GET]",
		"+ Response 200 (text/plain)",
		"    + Attributes",
		"        + text: hello",
		"    + Body",
		"",
		"            hello   world",
	}, "\n"))
	p := doc.Resources()[0].Actions[0].Responses[0]
	assert.Equal(t, "hello   world", g.Body(p))
}
