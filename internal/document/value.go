// Package document defines the configuration tree shared by every stage of
// kiln: a closed set of node types (Map, Sequence, Scalar) and the deep-merge
// rule that folds cascading documents into one configuration.
//
// Values are immutable once built. Merge returns new containers and may share
// unchanged subtrees with its inputs, so callers must never modify a Value
// that has been handed to another stage.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Value is one node of a configuration tree.
// The implementations are *Map, Sequence and Scalar.
type Value interface {
	isValue()
}

// Map is an ordered mapping from unique string keys to values.
type Map struct {
	keys   []string
	values map[string]Value
}

// Sequence is an ordered list of values.
type Sequence []Value

// Scalar is a leaf value: string, bool, int64, float64 or nil.
type Scalar struct {
	V any
}

func (*Map) isValue()     {}
func (Sequence) isValue() {}
func (Scalar) isValue()   {}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set assigns a value to key, keeping the key's original position when it
// already exists. Set is meant for building a new map only.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Without returns a copy of m with the given keys removed.
func (m *Map) Without(keys ...string) *Map {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	out := NewMap()
	for _, k := range m.Keys() {
		if !drop[k] {
			out.Set(k, m.values[k])
		}
	}
	return out
}

// String returns the string stored under key, if key holds a string scalar.
func (m *Map) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(Scalar)
	if !ok {
		return "", false
	}
	str, ok := s.V.(string)
	return str, ok
}

// MarshalJSON writes the map as a JSON object, keeping key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes the scalar's underlying value.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.V)
}

// MarshalYAML lets yaml.v3 encode a map with its key order intact.
func (m *Map) MarshalYAML() (interface{}, error) {
	return ToNode(m)
}

// MarshalYAML encodes the scalar as its underlying value.
func (s Scalar) MarshalYAML() (interface{}, error) {
	return s.V, nil
}

// Plain converts v into the untyped form used by encoding/json, CUE and
// JSONPath: map[string]any, []any and scalar values.
func Plain(v Value) any {
	switch t := v.(type) {
	case *Map:
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = Plain(t.values[k])
		}
		return out
	case Sequence:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Plain(item)
		}
		return out
	case Scalar:
		return t.V
	default:
		return nil
	}
}

// FromPlain converts an untyped tree into a Value. Map keys are sorted since
// Go maps carry no order.
func FromPlain(x any) (Value, error) {
	switch t := x.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			v, err := FromPlain(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m.Set(k, v)
		}
		return m, nil
	case []any:
		seq := make(Sequence, len(t))
		for i, item := range t {
			v, err := FromPlain(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = v
		}
		return seq, nil
	default:
		s, err := normalizeScalar(t)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// normalizeScalar folds the numeric types produced by the decoders into
// int64 and float64.
func normalizeScalar(x any) (Scalar, error) {
	switch t := x.(type) {
	case nil, string, bool, int64, float64:
		return Scalar{V: t}, nil
	case int:
		return Scalar{V: int64(t)}, nil
	case int32:
		return Scalar{V: int64(t)}, nil
	case uint64:
		return Scalar{V: t}, nil
	case float32:
		return Scalar{V: float64(t)}, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Scalar{V: i}, nil
		}
		f, err := t.Float64()
		if err != nil {
			return Scalar{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Scalar{V: f}, nil
	default:
		// Timestamps and other tagged scalars keep their text form.
		return Scalar{V: fmt.Sprint(t)}, nil
	}
}
