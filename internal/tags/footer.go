package tags

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Footer is an insertion-ordered set of footer tags. The zero value is empty
// and ready to use.
type Footer struct {
	keys   []string
	values map[string]*string
}

// NewFooter builds a Footer from tags in order. Later duplicates overwrite
// earlier values without changing position.
func NewFooter(tags ...Tag) Footer {
	var f Footer
	for _, t := range tags {
		f.set(t.Key, t.Value)
	}
	return f
}

func (f *Footer) set(key string, value *string) {
	if f.values == nil {
		f.values = make(map[string]*string)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Set stores value under key. Transform hooks use it to derive tags.
func (f *Footer) Set(key, value string) {
	f.set(key, &value)
}

// Len returns the number of tags.
func (f Footer) Len() int {
	return len(f.keys)
}

// Has reports whether key is present, with or without a value.
func (f Footer) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Lookup returns the raw value pointer and whether the key exists.
func (f Footer) Lookup(key string) (*string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Get returns the value of key. ok is false when the key is missing or has
// no value.
func (f Footer) Get(key string) (string, bool) {
	v := f.values[key]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Value returns the value of key or "".
func (f Footer) Value(key string) string {
	v, _ := f.Get(key)
	return v
}

// Find returns the value of the first key equal to name ignoring case.
func (f Footer) Find(name string) (string, bool) {
	for _, k := range f.keys {
		if strings.EqualFold(k, name) {
			return f.Get(k)
		}
	}
	return "", false
}

// Keys returns the keys in insertion order.
func (f Footer) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Tags returns the tags in insertion order.
func (f Footer) Tags() []Tag {
	out := make([]Tag, 0, len(f.keys))
	for _, k := range f.keys {
		out = append(out, Tag{Key: k, Value: f.values[k]})
	}
	return out
}

// String formats the footer back into "key: value" lines.
func (f Footer) String() string {
	lines := make([]string, 0, len(f.keys))
	for _, t := range f.Tags() {
		if t.Value == nil {
			lines = append(lines, t.Key+":")
			continue
		}
		lines = append(lines, t.Key+": "+*t.Value)
	}
	return strings.Join(lines, "\n")
}

// MarshalYAML emits an ordered mapping.
func (f Footer) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, t := range f.Tags() {
		valueNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if t.Value != nil {
			valueNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: *t.Value}
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t.Key},
			valueNode,
		)
	}
	return node, nil
}

// UnmarshalYAML reads an ordered mapping.
func (f *Footer) UnmarshalYAML(value *yaml.Node) error {
	*f = Footer{}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("footer must be a mapping, got line %d", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if v.Tag == "!!null" {
			f.set(k.Value, nil)
			continue
		}
		var s string
		if err := v.Decode(&s); err != nil {
			return fmt.Errorf("decoding footer tag %s: %w", k.Value, err)
		}
		f.set(k.Value, &s)
	}
	return nil
}

// MarshalJSON emits an ordered object.
func (f Footer) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range f.Tags() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.Value)
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
