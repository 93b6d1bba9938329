package qrcard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds object/array nesting on both the sanitize and the
// tagged decode paths.
const DefaultMaxDepth = 64

var errTooDeep = errors.New("nesting exceeds maximum depth")

// taggedCodec implements Codec for the tagged dialect (ordered JSON).
type taggedCodec struct {
	prefix   string
	indent   string
	maxDepth int // 0 means DefaultMaxDepth
}

// Tagged returns the tagged-dialect codec. Output is compact.
func Tagged() Codec {
	return &taggedCodec{}
}

// TaggedIndent returns the tagged-dialect codec with indented output.
func TaggedIndent(prefix, indent string) Codec {
	return &taggedCodec{prefix: prefix, indent: indent}
}

// ContentType returns the MIME type for the tagged dialect.
func (c *taggedCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes a *Record or Value in the tagged dialect.
func (c *taggedCodec) Marshal(v any) ([]byte, error) {
	switch t := v.(type) {
	case *Record:
		return appendValue(nil, ObjectValue(t), c.prefix, c.indent, 0)
	case Value:
		return appendValue(nil, t, c.prefix, c.indent, 0)
	case nil:
		return []byte("null"), nil
	}
	return nil, fmt.Errorf("tagged codec cannot marshal %T", v)
}

// Unmarshal decodes tagged-dialect text into a *Record.
func (c *taggedCodec) Unmarshal(data []byte, v any) error {
	dst, ok := v.(*Record)
	if !ok || dst == nil {
		return fmt.Errorf("tagged codec cannot unmarshal into %T", v)
	}
	depth := c.maxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	r, err := parseTagged(data, depth)
	if err != nil {
		return err
	}
	*dst = *r
	return nil
}

// MarshalTagged encodes r in the compact tagged dialect.
func MarshalTagged(r *Record) (string, error) {
	b, err := appendValue(nil, ObjectValue(r), "", "", 0)
	if err != nil {
		return "", newCodecError(ErrMarshal, err)
	}
	return string(b), nil
}

// appendValue writes v to buf. With a non-empty indent, objects and arrays
// are laid out one element per line like json.MarshalIndent.
func appendValue(buf []byte, v Value, prefix, indent string, depth int) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(buf, "null"...), nil
	case KindText:
		return appendString(buf, v.text), nil
	case KindNumber:
		if !isFinite(v.num) {
			return nil, fmt.Errorf("unsupported number %v", v.num)
		}
		return append(buf, formatNumber(v.num)...), nil
	case KindBool:
		return strconv.AppendBool(buf, v.b), nil
	case KindObject:
		if v.obj.Len() == 0 {
			return append(buf, "{}"...), nil
		}
		buf = append(buf, '{')
		i := 0
		for k, fv := range v.obj.All() {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendNewline(buf, prefix, indent, depth+1)
			buf = appendString(buf, k)
			buf = append(buf, ':')
			if indent != "" {
				buf = append(buf, ' ')
			}
			var err error
			if buf, err = appendValue(buf, fv, prefix, indent, depth+1); err != nil {
				return nil, err
			}
			i++
		}
		buf = appendNewline(buf, prefix, indent, depth)
		return append(buf, '}'), nil
	case KindArray:
		if len(v.arr) == 0 {
			return append(buf, "[]"...), nil
		}
		buf = append(buf, '[')
		for i, elem := range v.arr {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendNewline(buf, prefix, indent, depth+1)
			var err error
			if buf, err = appendValue(buf, elem, prefix, indent, depth+1); err != nil {
				return nil, err
			}
		}
		buf = appendNewline(buf, prefix, indent, depth)
		return append(buf, ']'), nil
	}
	return nil, fmt.Errorf("unknown value kind %s", v.kind)
}

func appendNewline(buf []byte, prefix, indent string, depth int) []byte {
	if indent == "" && prefix == "" {
		return buf
	}
	buf = append(buf, '\n')
	buf = append(buf, prefix...)
	for range depth {
		buf = append(buf, indent...)
	}
	return buf
}

// appendString quotes s. encoding/json never fails on a string, and it
// escapes <, > and & which keeps payloads safe to embed in HTML.
func appendString(buf []byte, s string) []byte {
	b, _ := json.Marshal(s)
	return append(buf, b...)
}

// formatNumber prints integral values below 1e21 without exponent, and
// everything else in the shortest round-trippable form.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		if f == 0 {
			return "0"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// parseTagged parses a tagged-dialect object. Any malformation yields a
// DecodeError of kind MalformedStructured and no partial record.
func parseTagged(data []byte, maxDepth int) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, newDecodeError(MalformedStructured, 0, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, newDecodeError(MalformedStructured, 0, fmt.Errorf("expected object, got %v", tok))
	}

	r, err := parseObject(dec, 1, maxDepth)
	if err != nil {
		return nil, newDecodeError(MalformedStructured, 0, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data after object")
		}
		return nil, newDecodeError(MalformedStructured, 0, err)
	}
	return r, nil
}

// parseObject reads members until the closing brace. The opening brace has
// already been consumed.
func parseObject(dec *json.Decoder, depth, maxDepth int) (*Record, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	r := NewRecord()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return r, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		v, err := parseValue(dec, depth, maxDepth)
		if err != nil {
			return nil, err
		}
		r.Set(key, v)
	}
}

func parseArray(dec *json.Decoder, depth, maxDepth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, errTooDeep
	}
	arr := []Value{}
	for {
		if !dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return Value{}, unexpectedEOF(err)
			}
			if d, ok := tok.(json.Delim); ok && d == ']' {
				return ArrayValue(arr...), nil
			}
			return Value{}, fmt.Errorf("expected ']', got %v", tok)
		}
		v, err := parseValue(dec, depth, maxDepth)
		if err != nil {
			return Value{}, err
		}
		arr = append(arr, v)
	}
}

func parseValue(dec *json.Decoder, depth, maxDepth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, unexpectedEOF(err)
	}
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return TextValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return Value{}, fmt.Errorf("number %s: %w", t, err)
		}
		return NumberValue(f), nil
	case json.Delim:
		switch t {
		case '{':
			obj, err := parseObject(dec, depth+1, maxDepth)
			if err != nil {
				return Value{}, err
			}
			return ObjectValue(obj), nil
		case '[':
			return parseArray(dec, depth+1, maxDepth)
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// isWrappedObject reports whether s looks like an embedded tagged object.
func isWrappedObject(s string) bool {
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}
