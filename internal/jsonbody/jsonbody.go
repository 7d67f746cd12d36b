// Package jsonbody is a small JSON value model that keeps object key order
// and number literals exactly as written.
package jsonbody

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Value is one JSON value. Text holds the string value or the number literal.
type Value struct {
	Kind    Kind
	Bool    bool
	Text    string
	Items   []Value
	Members []Member
}

// Member is one key of an object.
type Member struct {
	Key   string
	Value Value
}

func NewString(s string) Value { return Value{Kind: String, Text: s} }

func NewNumber(lit string) Value { return Value{Kind: Number, Text: lit} }

func NewBool(b bool) Value { return Value{Kind: Bool, Bool: b} }

func NewArray(items ...Value) Value { return Value{Kind: Array, Items: items} }

func NewObject(members ...Member) Value { return Value{Kind: Object, Members: members} }

// Get returns the member value stored under key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Keys returns object keys in order.
func (v Value) Keys() []string {
	out := make([]string, len(v.Members))
	for i, m := range v.Members {
		out[i] = m.Key
	}
	return out
}

// Parse decodes exactly one JSON value from raw.
func Parse(raw string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	v, err := decode(dec)
	if err != nil {
		return Value{}, errors.Wrap(err, "parse json body")
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, errors.New("parse json body: unexpected data after top-level value")
	}
	return v, nil
}

func decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Value{Kind: Null}, nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			v := Value{Kind: Array, Items: []Value{}}
			for dec.More() {
				item, err := decode(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = append(v.Items, item)
			}
			_, err := dec.Token()
			return v, err
		case '{':
			v := Value{Kind: Object, Members: []Member{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, _ := keyTok.(string)
				val, err := decode(dec)
				if err != nil {
					return Value{}, err
				}
				v.Members = append(v.Members, Member{Key: key, Value: val})
			}
			_, err := dec.Token()
			return v, err
		}
	}
	return Value{}, errors.Errorf("unexpected token %v", tok)
}

// Encode renders v with one level of indent per nesting depth. An empty
// indent gives compact output.
func Encode(v Value, indent string) string {
	var buf bytes.Buffer
	encode(&buf, v, indent, 0)
	return buf.String()
}

func encode(buf *bytes.Buffer, v Value, indent string, depth int) {
	newline := func(d int) {
		if indent == "" {
			return
		}
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(indent, d))
	}
	switch v.Kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(v.Text)
	case String:
		buf.WriteString(quote(v.Text))
	case Array:
		if len(v.Items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(depth + 1)
			encode(buf, item, indent, depth+1)
		}
		newline(depth)
		buf.WriteByte(']')
	case Object:
		if len(v.Members) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(depth + 1)
			buf.WriteString(quote(m.Key))
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			encode(buf, m.Value, indent, depth+1)
		}
		newline(depth)
		buf.WriteByte('}')
	}
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Reorder returns a copy of an object with the keys listed in order first,
// in that order, followed by the remaining keys in their original order.
// Non-object values are returned unchanged.
func Reorder(v Value, order []string) Value {
	if v.Kind != Object || len(order) == 0 {
		return v
	}
	out := Value{Kind: Object, Members: make([]Member, 0, len(v.Members))}
	used := make([]bool, len(v.Members))
	for _, key := range order {
		for i, m := range v.Members {
			if !used[i] && m.Key == key {
				used[i] = true
				out.Members = append(out.Members, m)
				break
			}
		}
	}
	for i, m := range v.Members {
		if !used[i] {
			out.Members = append(out.Members, m)
		}
	}
	return out
}
