package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidPreset is returned when a named preset does not exist.
	ErrInvalidPreset = errors.New("invalid preset")
	// ErrInvalidOptionValue is returned when a value does not match its property.
	ErrInvalidOptionValue = errors.New("invalid option value")
)

// Resolved maps every known property to a concrete value.
type Resolved map[string]Value

// Resolver turns user configuration into a Resolved configuration.
type Resolver struct {
	Descriptors map[string]Descriptor
	Registry    *Registry
}

// NewResolver returns a resolver over the default descriptors.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{Descriptors: Defaults(), Registry: registry}
}

// Resolve applies defaults, expands presets and validates every property.
// Keys without a descriptor are dropped.
func (r *Resolver) Resolve(user map[string]Value) (Resolved, error) {
	props := make([]string, 0, len(r.Descriptors))
	for prop := range r.Descriptors {
		props = append(props, prop)
	}
	sort.Strings(props)

	out := make(Resolved, len(props))
	for _, prop := range props {
		d := r.Descriptors[prop]

		// 1. Default.
		v := user[prop]
		if v == nil {
			v = d.Default
		}

		// 2. Presets.
		v, err := r.expand(prop, d, v)
		if err != nil {
			return nil, err
		}

		// 3. Kinds.
		if !d.matches(v) {
			return nil, invalidValue(prop, d, v)
		}
		out[prop] = v
	}
	return out, nil
}

func (r *Resolver) expand(prop string, d Descriptor, v Value) (Value, error) {
	if !d.AllowsPresets {
		return v, nil
	}
	if arr, ok := v.(Array); ok && d.accepts(KindArray) {
		out := make(Array, 0, len(arr))
		for _, e := range arr {
			resolved, err := r.expandOne(prop, e, true)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
		return out, nil
	}
	return r.expandOne(prop, v, d.accepts(KindString))
}

// expandOne resolves a single preset-shaped value. Unknown bare strings are
// kept as literals when keepStrings is set.
func (r *Resolver) expandOne(prop string, v Value, keepStrings bool) (Value, error) {
	switch t := v.(type) {
	case PresetRef:
		return r.apply(prop, t.Name, t.Options)
	case Object:
		name, ok := t["preset"].(String)
		if !ok {
			return v, nil
		}
		opts := make(Options, len(t)-1)
		for k, e := range t {
			if k != "preset" {
				opts[k] = e
			}
		}
		return r.apply(prop, string(name), opts)
	case String:
		if _, ok := r.Registry.Lookup(prop, string(t)); ok {
			return r.apply(prop, string(t), nil)
		}
		if keepStrings {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %s.%s", ErrInvalidPreset, prop, string(t))
	}
	return v, nil
}

func (r *Resolver) apply(prop, name string, opts Options) (Value, error) {
	preset, ok := r.Registry.Lookup(prop, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrInvalidPreset, prop, name)
	}
	if opts == nil {
		opts = Options{}
	}
	v, err := preset(opts)
	if err != nil {
		return nil, fmt.Errorf("configuring %s preset %s: %w", prop, name, err)
	}
	if f, ok := v.(Func); ok && f.Name == "" {
		f.Name = name
		v = f
	}
	return v, nil
}

// matches checks v against the accepted kinds. Every element of an array
// value must match one of the kinds.
func (d Descriptor) matches(v Value) bool {
	if arr, ok := v.(Array); ok {
		for _, e := range arr {
			if !d.matchesOne(e) {
				return false
			}
		}
		return true
	}
	return d.matchesOne(v)
}

func (d Descriptor) matchesOne(v Value) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(PresetRef); ok {
		return false
	}
	if !d.accepts(v.Kind()) {
		return false
	}
	if f, ok := v.(Func); ok && d.Check != nil {
		return d.Check(f.Impl)
	}
	return true
}

func invalidValue(prop string, d Descriptor, v Value) error {
	kinds := make([]string, 0, len(d.Kinds))
	for _, k := range d.Kinds {
		kinds = append(kinds, k.String())
	}
	got := "undefined"
	if v != nil {
		got = v.Kind().String()
	}
	return fmt.Errorf("%w: %s. The `%s` option expects a %s, but instead got a %s",
		ErrInvalidOptionValue, format(v), prop, strings.Join(kinds, " or "), got)
}
