package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a single YAML document. An empty document yields an
// empty map; a root that is not a mapping is an error.
func ParseYAML(data []byte) (*Map, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if root.Kind == 0 {
		return NewMap(), nil
	}
	v, err := FromNode(&root)
	if err != nil {
		return nil, err
	}
	return rootMap(v)
}

// ParseJSON decodes a single JSON document, keeping object key order.
func ParseJSON(data []byte) (*Map, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewMap(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal JSON: unexpected data after top-level value")
	}
	return rootMap(v)
}

func rootMap(v Value) (*Map, error) {
	switch t := v.(type) {
	case *Map:
		return t, nil
	case Scalar:
		if t.V == nil {
			return NewMap(), nil
		}
	}
	return nil, fmt.Errorf("document root must be a mapping")
}

// FromNode converts a decoded yaml.v3 node into a Value.
func FromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Scalar{}, nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.MappingNode:
		m := NewMap()
		var bases []*Map
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			if isMergeKey(keyNode) {
				b, err := mergeBases(valNode)
				if err != nil {
					return nil, err
				}
				bases = append(bases, b...)
				continue
			}
			if m.Has(keyNode.Value) {
				return nil, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, keyNode.Value)
			}
			v, err := FromNode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, v)
		}
		return withMergeBases(m, bases), nil
	case yaml.SequenceNode:
		seq := make(Sequence, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := FromNode(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.ScalarNode:
		var x any
		if err := n.Decode(&x); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return normalizeScalar(x)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

// isMergeKey reports whether k is the YAML merge key "<<". A quoted "<<" is
// an ordinary key.
func isMergeKey(k *yaml.Node) bool {
	return k.Value == "<<" && (k.Tag == "" || k.ShortTag() == "!!merge")
}

// mergeBases returns the mappings named by a merge key value: one mapping
// or a sequence of them, usually aliases.
func mergeBases(n *yaml.Node) ([]*Map, error) {
	v, err := FromNode(n)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case *Map:
		return []*Map{t}, nil
	case Sequence:
		bases := make([]*Map, 0, len(t))
		for _, item := range t {
			b, ok := item.(*Map)
			if !ok {
				return nil, fmt.Errorf("line %d: merge key values must be mappings", n.Line)
			}
			bases = append(bases, b)
		}
		return bases, nil
	default:
		return nil, fmt.Errorf("line %d: merge key values must be mappings", n.Line)
	}
}

// withMergeBases lays explicit over bases. Among bases the first one to
// name a key wins. Base keys come first, in base order.
func withMergeBases(explicit *Map, bases []*Map) *Map {
	if len(bases) == 0 {
		return explicit
	}
	out := NewMap()
	for _, b := range bases {
		for _, k := range b.Keys() {
			if !out.Has(k) {
				v, _ := b.Get(k)
				out.Set(k, v)
			}
		}
	}
	for _, k := range explicit.Keys() {
		v, _ := explicit.Get(k)
		out.Set(k, v)
	}
	return out
}

// ToNode converts a Value into a yaml.v3 node tree.
func ToNode(v Value) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.keys {
			child, err := ToNode(t.values[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child)
		}
		return n, nil
	case Sequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range t {
			child, err := ToNode(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case Scalar:
		n := &yaml.Node{}
		if err := n.Encode(t.V); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// Decode fills out, a pointer to a typed struct, from v using the yaml
// struct tags of out.
func Decode(v Value, out any) error {
	n, err := ToNode(v)
	if err != nil {
		return err
	}
	return n.Decode(out)
}

// MarshalYAML renders v as YAML text.
func MarshalYAML(v Value) ([]byte, error) {
	n, err := ToNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(n)
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return normalizeScalar(tok)
	}
	switch delim {
	case '{':
		m := NewMap()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
			}
			if m.Has(key) {
				return nil, fmt.Errorf("duplicate key %q", key)
			}
			v, err := decodeJSON(dec)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil
	case '[':
		seq := Sequence{}
		for dec.More() {
			v, err := decodeJSON(dec)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// UnmarshalYAML lets typed structs embed an ordered map.
func (m *Map) UnmarshalYAML(n *yaml.Node) error {
	v, err := FromNode(n)
	if err != nil {
		return err
	}
	decoded, err := rootMap(v)
	if err != nil {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	*m = *decoded
	return nil
}
