// Package export flattens projects into plain resolved data and writes it as
// JSON, YAML or SQLite.
//
// An instance becomes a record of its effective field values keyed by field
// key. A type becomes a record of its direct children keyed by name, where
// child types recurse and child instances flatten.
package export

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Record is a mapping that remembers insertion order. Values are field data
// (string, float64, bool) or nested *Record.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: map[string]any{}}
}

// Set stores v under key. Setting an existing key keeps its position.
func (r *Record) Set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string { return append([]string(nil), r.keys...) }

// Len returns the number of keys.
func (r *Record) Len() int { return len(r.keys) }

// Map converts the record, and nested records, to plain maps.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		if sub, ok := r.values[k].(*Record); ok {
			out[k] = sub.Map()
			continue
		}
		out[k] = r.values[k]
	}
	return out
}

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		var val yaml.Node
		if err := val.Encode(r.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &val)
	}
	return node, nil
}
