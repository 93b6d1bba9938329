// Package msgpack provides a MessagePack export codec for records.
package msgpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"github.com/zoobzio/qrcard"
)

// msgpackCodec implements qrcard.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() qrcard.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes a *qrcard.Record as a MessagePack map in field order.
// Integral numbers are written as integers, others as float64.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	r, ok := v.(*qrcard.Record)
	if !ok || r == nil {
		return nil, fmt.Errorf("msgpack: cannot marshal %T", v)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeRecord(enc, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a MessagePack map into a *qrcard.Record.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	dst, ok := v.(*qrcard.Record)
	if !ok || dst == nil {
		return fmt.Errorf("msgpack: cannot unmarshal into %T", v)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if !isMap(code) {
		return fmt.Errorf("msgpack: top level is not a map (code 0x%x)", code)
	}
	r, err := decodeRecord(dec)
	if err != nil {
		return err
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("msgpack: trailing data after record")
	}
	*dst = *r
	return nil
}

func encodeRecord(enc *msgpack.Encoder, r *qrcard.Record) error {
	if err := enc.EncodeMapLen(r.Len()); err != nil {
		return err
	}
	for k, v := range r.All() {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := encodeValue(enc, v); err != nil {
			return fmt.Errorf("msgpack: field %q: %w", k, err)
		}
	}
	return nil
}

func encodeValue(enc *msgpack.Encoder, v qrcard.Value) error {
	switch v.Kind() {
	case qrcard.KindText:
		s, _ := v.Text()
		return enc.EncodeString(s)
	case qrcard.KindNumber:
		f, _ := v.Number()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite number")
		}
		if f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
			return enc.EncodeInt(int64(f))
		}
		return enc.EncodeFloat64(f)
	case qrcard.KindBool:
		b, _ := v.Bool()
		return enc.EncodeBool(b)
	case qrcard.KindObject:
		obj, _ := v.Object()
		return encodeRecord(enc, obj)
	case qrcard.KindArray:
		arr, _ := v.Array()
		if err := enc.EncodeArrayLen(len(arr)); err != nil {
			return err
		}
		for _, e := range arr {
			if err := encodeValue(enc, e); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.EncodeNil()
}

func decodeRecord(dec *msgpack.Decoder) (*qrcard.Record, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	r := qrcard.NewRecord()
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("msgpack: key %d: %w", i, err)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("msgpack: field %q: %w", key, err)
		}
		r.Set(key, v)
	}
	return r, nil
}

func decodeValue(dec *msgpack.Decoder) (qrcard.Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return qrcard.Value{}, err
	}

	switch {
	case code == msgpcode.Nil:
		return qrcard.NullValue(), dec.DecodeNil()
	case code == msgpcode.True || code == msgpcode.False:
		b, err := dec.DecodeBool()
		return qrcard.BoolValue(b), err
	case msgpcode.IsString(code):
		s, err := dec.DecodeString()
		return qrcard.TextValue(s), err
	case isNumber(code):
		f, err := dec.DecodeFloat64()
		return qrcard.NumberValue(f), err
	case isMap(code):
		obj, err := decodeRecord(dec)
		if err != nil {
			return qrcard.Value{}, err
		}
		return qrcard.ObjectValue(obj), nil
	case isArray(code):
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return qrcard.Value{}, err
		}
		elems := make([]qrcard.Value, 0, max(n, 0))
		for i := 0; i < n; i++ {
			e, err := decodeValue(dec)
			if err != nil {
				return qrcard.Value{}, err
			}
			elems = append(elems, e)
		}
		return qrcard.ArrayValue(elems...), nil
	}
	return qrcard.Value{}, fmt.Errorf("unsupported code 0x%x", code)
}

func isMap(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func isArray(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}

func isNumber(c byte) bool {
	if msgpcode.IsFixedNum(c) {
		return true
	}
	switch c {
	case msgpcode.Float, msgpcode.Double,
		msgpcode.Uint8, msgpcode.Uint16, msgpcode.Uint32, msgpcode.Uint64,
		msgpcode.Int8, msgpcode.Int16, msgpcode.Int32, msgpcode.Int64:
		return true
	}
	return false
}
