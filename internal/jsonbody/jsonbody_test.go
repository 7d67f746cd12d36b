package jsonbody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsOrderAndLiterals(t *testing.T) {
	v, err := Parse(`{"votes": 2048, "ratio": 1.50, "big": 12345678901234567890, "name": "Swift", "ok": true, "none": null}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"votes", "ratio", "big", "name", "ok", "none"}, v.Keys())
	assert.Equal(t,
		`{"votes":2048,"ratio":1.50,"big":12345678901234567890,"name":"Swift","ok":true,"none":null}`,
		Encode(v, ""))
}

func TestParse_Errors(t *testing.T) {
	for _, raw := range []string{"", "{", `{"a": 1} {}`, `[1, ]`} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.Error(t, err)
		})
	}
}

func TestEncode_Indent(t *testing.T) {
	v, err := Parse(`{"a":[1,{"b":"<x>"}],"c":{},"d":[]}`)
	require.NoError(t, err)
	expected := `{
  "a": [
    1,
    {
      "b": "<x>"
    }
  ],
  "c": {},
  "d": []
}`
	assert.Equal(t, expected, Encode(v, "  "))
}

func TestReorder(t *testing.T) {
	v, err := Parse(`{"url": "/q/2", "extra": 1, "question": "Q?", "choices": []}`)
	require.NoError(t, err)

	out := Reorder(v, []string{"question", "published_at", "url", "choices"})
	assert.Equal(t, []string{"question", "url", "choices", "extra"}, out.Keys())
	// the input is not modified
	assert.Equal(t, []string{"url", "extra", "question", "choices"}, v.Keys())

	arr := NewArray(NewNumber("1"))
	assert.Equal(t, arr, Reorder(arr, []string{"a"}))
}

func TestConstructors(t *testing.T) {
	v := NewObject(
		Member{Key: "s", Value: NewString("x")},
		Member{Key: "n", Value: NewNumber("3")},
		Member{Key: "b", Value: NewBool(false)},
		Member{Key: "l", Value: NewArray()},
	)
	got, ok := v.Get("n")
	require.True(t, ok)
	assert.Equal(t, "3", got.Text)
	_, ok = v.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, `{"s":"x","n":3,"b":false,"l":[]}`, Encode(v, ""))
}
