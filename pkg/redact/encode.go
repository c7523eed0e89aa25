package redact

import (
	"bytes"
	"encoding/json"
	"strings"
)

// maxIndent matches the JSON.stringify cap on indentation width.
const maxIndent = 10

// encoder writes canonical trees as JSON. HTML characters are left
// unescaped so placeholders such as <HTML DOCUMENT></HTML> stay readable.
type encoder struct {
	buf bytes.Buffer
	enc *json.Encoder
}

func newEncoder() *encoder {
	e := &encoder{}
	e.enc = json.NewEncoder(&e.buf)
	e.enc.SetEscapeHTML(false)
	return e
}

// encode renders v with indent spaces per level; indent <= 0 is compact.
func encode(v any, indent int) string {
	e := newEncoder()
	e.value(v)
	if indent <= 0 {
		return e.buf.String()
	}
	if indent > maxIndent {
		indent = maxIndent
	}

	var out bytes.Buffer
	if err := json.Indent(&out, e.buf.Bytes(), "", strings.Repeat(" ", indent)); err != nil {
		return e.buf.String()
	}
	return out.String()
}

func (e *encoder) value(v any) {
	switch t := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case *Object:
		if t == nil {
			e.buf.WriteString("null")
			return
		}
		e.buf.WriteByte('{')
		for i, k := range t.keys {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.scalar(k)
			e.buf.WriteByte(':')
			e.value(t.values[k])
		}
		e.buf.WriteByte('}')
	case []any:
		e.buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.value(item)
		}
		e.buf.WriteByte(']')
	case json.Number:
		if !isNumberLiteral(string(t)) {
			e.scalar(string(t))
			return
		}
		e.buf.WriteString(string(t))
	case bool, string, int64, uint64, float64:
		e.scalar(t)
	default:
		e.value(Canonicalize(v))
	}
}

// scalar encodes a primitive and strips the trailing newline json.Encoder adds.
func (e *encoder) scalar(v any) {
	mark := e.buf.Len()
	if err := e.enc.Encode(v); err != nil {
		e.buf.Truncate(mark)
		e.buf.WriteString("null")
		return
	}
	e.buf.Truncate(e.buf.Len() - 1)
}

func isNumberLiteral(s string) bool {
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		return false
	}
	return json.Valid([]byte(s))
}
