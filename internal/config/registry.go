package config

import (
	"sort"
	"sync"
)

// Options are the sibling keys given next to a preset name.
type Options map[string]Value

// Get returns the raw option value.
func (o Options) Get(key string) (Value, bool) {
	v, ok := o[key]
	return v, ok && v != nil
}

// String returns a string option, or def when absent or not a string.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(String); ok {
		return string(s)
	}
	return def
}

// Bool returns a boolean option, or def when absent or not a boolean.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(Bool); ok {
		return bool(b)
	}
	return def
}

// Int returns a numeric option truncated to int, or def.
func (o Options) Int(key string, def int) int {
	if n, ok := o[key].(Number); ok {
		return int(n)
	}
	return def
}

// Objects returns the elements of an array option that are objects.
func (o Options) Objects(key string) []Options {
	arr, ok := o[key].(Array)
	if !ok {
		return nil
	}
	out := make([]Options, 0, len(arr))
	for _, e := range arr {
		if obj, ok := e.(Object); ok {
			out = append(out, Options(obj))
		}
	}
	return out
}

// Preset builds the value for a property from its options. It typically
// returns a Func closing over the options, or a literal.
type Preset func(opts Options) (Value, error)

// Registry maps property name to preset name to preset. Register before
// sharing; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]map[string]Preset
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]map[string]Preset)}
}

// Register adds or replaces a named preset for a property.
func (r *Registry) Register(property, name string, p Preset) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.presets[property] == nil {
		r.presets[property] = make(map[string]Preset)
	}
	r.presets[property][name] = p
	return r
}

// Lookup finds a preset. A nil registry has no presets.
func (r *Registry) Lookup(property, name string) (Preset, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[property][name]
	return p, ok
}

// Names lists the presets registered for a property, sorted.
func (r *Registry) Names(property string) []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.presets[property]))
	for name := range r.presets[property] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
