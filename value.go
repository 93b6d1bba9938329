package qrcard

import (
	"fmt"
	"iter"
	"math"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a single record value: text, number, boolean, nested record,
// ordered sequence, or null. The zero Value is null.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
	obj  *Record
	arr  []Value
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// NumberValue wraps a number.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ObjectValue wraps a nested record. A nil record becomes an empty one.
func ObjectValue(r *Record) Value {
	if r == nil {
		r = NewRecord()
	}
	return Value{kind: KindObject, obj: r}
}

// ArrayValue wraps an ordered sequence of values.
func ArrayValue(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: KindArray, arr: vs}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the string held by v.
func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

// Number returns the number held by v.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean held by v.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Object returns the nested record held by v.
func (v Value) Object() (*Record, bool) { return v.obj, v.kind == KindObject }

// Array returns the sequence held by v. The slice is shared with v.
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.Clone()}
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i, elem := range v.arr {
			arr[i] = elem.Clone()
		}
		return Value{kind: KindArray, arr: arr}
	default:
		return v
	}
}

// Equal reports whether v and o hold the same variant and contents.
// NaN never equals anything, matching float comparison.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindObject:
		return v.obj.Equal(o.obj)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v for display. Objects and arrays use the tagged dialect.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindText:
		return v.text
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	}
	var buf []byte
	buf, err := appendValue(buf, v, "", "", 0)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.kind, err)
	}
	return string(buf)
}

// isFinite reports whether f can be written as a tagged-dialect number.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Record is an ordered mapping from field name to Value.
// Iteration follows insertion order; replacing a key keeps its position.
// A nil *Record reads as empty.
type Record struct {
	keys   []string
	fields map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]Value)}
}

// Set stores v under key, appending the key if it is new.
func (r *Record) Set(key string, v Value) *Record {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
	return r
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (r *Record) Delete(key string) {
	if r == nil {
		return
	}
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field names in order. The slice is a copy.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// All iterates fields in order.
func (r *Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.fields[k]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := NewRecord()
	for k, v := range r.All() {
		out.Set(k, v.Clone())
	}
	return out
}

// Equal reports whether r and o hold the same keys with equal values.
// Key order is not compared.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	for k, v := range r.All() {
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// String renders r in the compact tagged dialect.
func (r *Record) String() string {
	return ObjectValue(r).String()
}
