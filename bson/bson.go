// Package bson provides a BSON export codec for records.
package bson

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/zoobzio/qrcard"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bsonCodec implements qrcard.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() qrcard.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes a *qrcard.Record as an ordered BSON document.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	r, ok := v.(*qrcard.Record)
	if !ok || r == nil {
		return nil, fmt.Errorf("bson: cannot marshal %T", v)
	}
	doc, err := toD(r)
	if err != nil {
		return nil, err
	}
	return bson.Marshal(doc)
}

// Unmarshal decodes a BSON document into a *qrcard.Record.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	dst, ok := v.(*qrcard.Record)
	if !ok || dst == nil {
		return fmt.Errorf("bson: cannot unmarshal into %T", v)
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	r, err := fromD(doc)
	if err != nil {
		return err
	}
	*dst = *r
	return nil
}

func toD(r *qrcard.Record) (bson.D, error) {
	doc := make(bson.D, 0, r.Len())
	for k, v := range r.All() {
		bv, err := toBSON(v)
		if err != nil {
			return nil, fmt.Errorf("bson: field %q: %w", k, err)
		}
		doc = append(doc, bson.E{Key: k, Value: bv})
	}
	return doc, nil
}

func toBSON(v qrcard.Value) (any, error) {
	switch v.Kind() {
	case qrcard.KindText:
		s, _ := v.Text()
		return s, nil
	case qrcard.KindNumber:
		f, _ := v.Number()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite number")
		}
		if f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
			return int64(f), nil
		}
		return f, nil
	case qrcard.KindBool:
		b, _ := v.Bool()
		return b, nil
	case qrcard.KindObject:
		obj, _ := v.Object()
		return toD(obj)
	case qrcard.KindArray:
		arr, _ := v.Array()
		out := make(bson.A, 0, len(arr))
		for _, e := range arr {
			bv, err := toBSON(e)
			if err != nil {
				return nil, err
			}
			out = append(out, bv)
		}
		return out, nil
	}
	return nil, nil
}

func fromD(doc bson.D) (*qrcard.Record, error) {
	r := qrcard.NewRecord()
	for _, e := range doc {
		v, err := fromBSON(e.Value)
		if err != nil {
			return nil, fmt.Errorf("bson: field %q: %w", e.Key, err)
		}
		r.Set(e.Key, v)
	}
	return r, nil
}

func fromBSON(x any) (qrcard.Value, error) {
	switch t := x.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return qrcard.NullValue(), nil
	case string:
		return qrcard.TextValue(t), nil
	case bool:
		return qrcard.BoolValue(t), nil
	case int32:
		return qrcard.NumberValue(float64(t)), nil
	case int64:
		return qrcard.NumberValue(float64(t)), nil
	case float64:
		return qrcard.NumberValue(t), nil
	case bson.D:
		obj, err := fromD(t)
		if err != nil {
			return qrcard.Value{}, err
		}
		return qrcard.ObjectValue(obj), nil
	case bson.M:
		return fromMap(t)
	case map[string]any:
		return fromMap(t)
	case bson.A:
		return fromSlice(t)
	case []any:
		return fromSlice(t)
	case primitive.ObjectID:
		return qrcard.TextValue(t.Hex()), nil
	case primitive.DateTime:
		return qrcard.TextValue(t.Time().UTC().Format(time.RFC3339Nano)), nil
	case primitive.Decimal128:
		return qrcard.TextValue(t.String()), nil
	}
	return qrcard.Value{}, fmt.Errorf("unsupported BSON value %T", x)
}

// fromMap converts an unordered document, sorting keys for stable output.
func fromMap(m map[string]any) (qrcard.Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	obj := qrcard.NewRecord()
	for _, k := range keys {
		v, err := fromBSON(m[k])
		if err != nil {
			return qrcard.Value{}, err
		}
		obj.Set(k, v)
	}
	return qrcard.ObjectValue(obj), nil
}

func fromSlice(s []any) (qrcard.Value, error) {
	elems := make([]qrcard.Value, 0, len(s))
	for _, x := range s {
		v, err := fromBSON(x)
		if err != nil {
			return qrcard.Value{}, err
		}
		elems = append(elems, v)
	}
	return qrcard.ArrayValue(elems...), nil
}
