// Package xml provides an XML export codec for records.
//
// A record is written as
//
//	<record>
//	  <field name="name" type="text">Jane</field>
//	  <field name="address" type="object"><field name="city" type="text">Springfield</field></field>
//	  <field name="tags" type="array"><item type="text">admin</item></field>
//	</record>
//
// so any field name survives, including ones that are not valid XML names.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/zoobzio/qrcard"
)

const (
	elemRecord = "record"
	elemField  = "field"
	elemItem   = "item"
	attrName   = "name"
	attrType   = "type"
)

// xmlCodec implements qrcard.Codec for XML.
type xmlCodec struct{}

// New returns an XML codec.
func New() qrcard.Codec {
	return &xmlCodec{}
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes a *qrcard.Record as XML.
func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	r, ok := v.(*qrcard.Record)
	if !ok || r == nil {
		return nil, fmt.Errorf("xml: cannot marshal %T", v)
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	root := xml.StartElement{Name: xml.Name{Local: elemRecord}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	if err := encodeFields(enc, r); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes XML produced by Marshal into a *qrcard.Record.
func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	dst, ok := v.(*qrcard.Record)
	if !ok || dst == nil {
		return fmt.Errorf("xml: cannot unmarshal into %T", v)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("xml: no <%s> element", elemRecord)
			}
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != elemRecord {
			return fmt.Errorf("xml: root element <%s>, want <%s>", start.Name.Local, elemRecord)
		}
		r, err := decodeFields(dec)
		if err != nil {
			return err
		}
		*dst = *r
		return nil
	}
}

func encodeFields(enc *xml.Encoder, r *qrcard.Record) error {
	for k, v := range r.All() {
		start := xml.StartElement{
			Name: xml.Name{Local: elemField},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: attrName}, Value: k},
				{Name: xml.Name{Local: attrType}, Value: v.Kind().String()},
			},
		}
		if err := encodeValue(enc, start, v); err != nil {
			return fmt.Errorf("xml: field %q: %w", k, err)
		}
	}
	return nil
}

func encodeValue(enc *xml.Encoder, start xml.StartElement, v qrcard.Value) error {
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	switch v.Kind() {
	case qrcard.KindObject:
		obj, _ := v.Object()
		if err := encodeFields(enc, obj); err != nil {
			return err
		}
	case qrcard.KindArray:
		arr, _ := v.Array()
		for _, e := range arr {
			item := xml.StartElement{
				Name: xml.Name{Local: elemItem},
				Attr: []xml.Attr{{Name: xml.Name{Local: attrType}, Value: e.Kind().String()}},
			}
			if err := encodeValue(enc, item, e); err != nil {
				return err
			}
		}
	case qrcard.KindNull:
	case qrcard.KindNumber:
		f, _ := v.Number()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite number")
		}
		if err := enc.EncodeToken(xml.CharData(v.String())); err != nil {
			return err
		}
	default:
		if err := enc.EncodeToken(xml.CharData(v.String())); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// decodeFields reads <field> children until the enclosing end element.
func decodeFields(dec *xml.Decoder) (*qrcard.Record, error) {
	r := qrcard.NewRecord()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != elemField {
				return nil, fmt.Errorf("xml: unexpected <%s> in object", t.Name.Local)
			}
			name, ok := attr(t, attrName)
			if !ok {
				return nil, fmt.Errorf("xml: <%s> without %s attribute", elemField, attrName)
			}
			typ, _ := attr(t, attrType)
			v, err := decodeValue(dec, typ)
			if err != nil {
				return nil, fmt.Errorf("xml: field %q: %w", name, err)
			}
			r.Set(name, v)
		case xml.EndElement:
			return r, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("xml: unexpected text %q in object", t)
			}
		}
	}
}

// decodeValue reads the body of a field or item whose start element has
// already been consumed, through its end element.
func decodeValue(dec *xml.Decoder, typ string) (qrcard.Value, error) {
	switch typ {
	case "object":
		obj, err := decodeFields(dec)
		if err != nil {
			return qrcard.Value{}, err
		}
		return qrcard.ObjectValue(obj), nil
	case "array":
		return decodeItems(dec)
	}

	text, err := decodeText(dec)
	if err != nil {
		return qrcard.Value{}, err
	}
	switch typ {
	case "null":
		return qrcard.NullValue(), nil
	case "number":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return qrcard.Value{}, err
		}
		return qrcard.NumberValue(f), nil
	case "bool":
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return qrcard.Value{}, err
		}
		return qrcard.BoolValue(b), nil
	case "text", "":
		return qrcard.TextValue(text), nil
	}
	return qrcard.Value{}, fmt.Errorf("unknown type %q", typ)
}

func decodeItems(dec *xml.Decoder) (qrcard.Value, error) {
	var elems []qrcard.Value
	for {
		tok, err := dec.Token()
		if err != nil {
			return qrcard.Value{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != elemItem {
				return qrcard.Value{}, fmt.Errorf("unexpected <%s> in array", t.Name.Local)
			}
			typ, _ := attr(t, attrType)
			e, err := decodeValue(dec, typ)
			if err != nil {
				return qrcard.Value{}, fmt.Errorf("[%d]: %w", len(elems), err)
			}
			elems = append(elems, e)
		case xml.EndElement:
			return qrcard.ArrayValue(elems...), nil
		}
	}
}

func decodeText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			return "", fmt.Errorf("unexpected <%s> in scalar", t.Name.Local)
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func attr(e xml.StartElement, name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
