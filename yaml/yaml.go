// Package yaml provides a YAML export codec for records.
//
// Records are written as a mapping node in insertion order. Text that would
// read back as another scalar type is quoted, so a round trip keeps every
// value's kind.
package yaml

import (
	"fmt"
	"math"

	"github.com/zoobzio/qrcard"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements qrcard.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() qrcard.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes a *qrcard.Record as a YAML mapping.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	r, ok := v.(*qrcard.Record)
	if !ok || r == nil {
		return nil, fmt.Errorf("yaml: cannot marshal %T", v)
	}
	node, err := recordNode(r)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

// Unmarshal decodes a YAML mapping into a *qrcard.Record.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	dst, ok := v.(*qrcard.Record)
	if !ok || dst == nil {
		return fmt.Errorf("yaml: cannot unmarshal into %T", v)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		*dst = *qrcard.NewRecord()
		return nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("yaml: top level is not a mapping")
	}
	r, err := nodeRecord(root)
	if err != nil {
		return err
	}
	*dst = *r
	return nil
}

func recordNode(r *qrcard.Record) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range r.All() {
		vn, err := valueNode(v)
		if err != nil {
			return nil, fmt.Errorf("yaml: field %q: %w", k, err)
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			vn,
		)
	}
	return n, nil
}

func valueNode(v qrcard.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case qrcard.KindText:
		s, _ := v.Text()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}, nil
	case qrcard.KindNumber:
		f, _ := v.Number()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite number")
		}
		tag := "!!float"
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}, nil
	case qrcard.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.String()}, nil
	case qrcard.KindObject:
		obj, _ := v.Object()
		return recordNode(obj)
	case qrcard.KindArray:
		arr, _ := v.Array()
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range arr {
			en, err := valueNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
}

func nodeRecord(n *yaml.Node) (*qrcard.Record, error) {
	r := qrcard.NewRecord()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("yaml: line %d: non-scalar key", key.Line)
		}
		v, err := nodeValue(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		r.Set(key.Value, v)
	}
	return r, nil
}

func nodeValue(n *yaml.Node) (qrcard.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		obj, err := nodeRecord(n)
		if err != nil {
			return qrcard.Value{}, err
		}
		return qrcard.ObjectValue(obj), nil
	case yaml.SequenceNode:
		elems := make([]qrcard.Value, 0, len(n.Content))
		for _, c := range n.Content {
			e, err := nodeValue(c)
			if err != nil {
				return qrcard.Value{}, err
			}
			elems = append(elems, e)
		}
		return qrcard.ArrayValue(elems...), nil
	}

	switch n.ShortTag() {
	case "!!null":
		return qrcard.NullValue(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return qrcard.Value{}, err
		}
		return qrcard.BoolValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return qrcard.Value{}, err
		}
		return qrcard.NumberValue(f), nil
	}
	return qrcard.TextValue(n.Value), nil
}
