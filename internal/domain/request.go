package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Request is a single MARS retrieval request: an ordered mapping of
// archive keyword to value.
type Request struct {
	keys   []string
	values map[string]string
}

// NewRequest returns an empty request.
func NewRequest() *Request {
	return &Request{values: make(map[string]string)}
}

// Set inserts or overwrites a keyword. New keywords are appended.
func (r *Request) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether it is present.
func (r *Request) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Delete removes key, keeping the order of the remaining keywords.
func (r *Request) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			return
		}
	}
}

// Rename moves the value stored under from to the key to, in place.
// It is a no-op if from is absent.
func (r *Request) Rename(from, to string) {
	v, ok := r.values[from]
	if !ok || from == to {
		return
	}
	if _, exists := r.values[to]; exists {
		r.Delete(to)
	}
	delete(r.values, from)
	r.values[to] = v
	for i, k := range r.keys {
		if k == from {
			r.keys[i] = to
			return
		}
	}
}

// Keys returns the keywords in order.
func (r *Request) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keywords.
func (r *Request) Len() int { return len(r.keys) }

// Map returns an unordered copy of the request.
func (r *Request) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the request as a JSON object in keyword order.
func (r *Request) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the request as a YAML mapping in keyword order.
func (r *Request) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.values[k]},
		)
	}
	return node, nil
}
