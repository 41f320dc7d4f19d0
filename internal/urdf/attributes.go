package urdf

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Attr is a single key/value pair of an element.
type Attr struct {
	Key   string
	Value string
}

// Attributes is an ordered string-to-string mapping with unique keys.
// Order is document order; values are never coerced.
type Attributes struct {
	items []Attr
}

// NewAttributes builds an attribute set from pairs. A repeated key
// overwrites the earlier value in place.
func NewAttributes(pairs ...Attr) Attributes {
	var a Attributes
	for _, p := range pairs {
		a.Set(p.Key, p.Value)
	}
	return a
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	for _, it := range a.items {
		if it.Key == key {
			return it.Value, true
		}
	}
	return "", false
}

// Value returns the value under key or def when absent.
func (a Attributes) Value(key, def string) string {
	if v, ok := a.Get(key); ok {
		return v
	}
	return def
}

func (a Attributes) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

func (a *Attributes) Set(key, value string) {
	for i := range a.items {
		if a.items[i].Key == key {
			a.items[i].Value = value
			return
		}
	}
	a.items = append(a.items, Attr{Key: key, Value: value})
}

func (a Attributes) Len() int { return len(a.items) }

func (a Attributes) Keys() []string {
	keys := make([]string, len(a.items))
	for i, it := range a.items {
		keys[i] = it.Key
	}
	return keys
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range a.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(it.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(it.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a Attributes) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, it := range a.items {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: it.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: it.Value},
		)
	}
	return m, nil
}
