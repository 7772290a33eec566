package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind is the shape of a configuration value.
type Kind int

const (
	KindString Kind = iota
	KindBoolean
	KindNumber
	KindFunction
	KindObject
	KindArray
)

var kindNames = map[Kind]string{
	KindString:   "string",
	KindBoolean:  "boolean",
	KindNumber:   "number",
	KindFunction: "function",
	KindObject:   "object",
	KindArray:    "array",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is one configuration value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	// String is a literal string, or the name of a preset.
	String string
	// Bool is a literal boolean.
	Bool bool
	// Number is a literal number.
	Number float64
	// Object is a mapping. An Object with a string "preset" key names a preset.
	Object map[string]Value
	// Array is a list of values.
	Array []Value
)

// Func is a resolved hook. Impl holds the Go function; Name records the
// preset it came from, if any.
type Func struct {
	Name string
	Impl any
}

// PresetRef names a preset together with its options.
type PresetRef struct {
	Name    string
	Options Options
}

func (String) Kind() Kind    { return KindString }
func (Bool) Kind() Kind      { return KindBoolean }
func (Number) Kind() Kind    { return KindNumber }
func (Object) Kind() Kind    { return KindObject }
func (Array) Kind() Kind     { return KindArray }
func (Func) Kind() Kind      { return KindFunction }
func (PresetRef) Kind() Kind { return KindObject }

func (String) isValue()    {}
func (Bool) isValue()      {}
func (Number) isValue()    {}
func (Object) isValue()    {}
func (Array) isValue()     {}
func (Func) isValue()      {}
func (PresetRef) isValue() {}

// Literal wraps a Go hook function so it bypasses preset lookup.
func Literal(fn any) Func {
	return Func{Impl: fn}
}

// Ref builds a preset reference.
func Ref(name string, opts Options) PresetRef {
	return PresetRef{Name: name, Options: opts}
}

// FromAny converts decoded YAML, JSON or koanf data into a Value. Go
// functions become Func values. Unsupported types return nil.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return nil
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Number(t)
	case int64:
		return Number(t)
	case uint64:
		return Number(t)
	case float64:
		return Number(t)
	case []string:
		arr := make(Array, 0, len(t))
		for _, s := range t {
			arr = append(arr, String(s))
		}
		return arr
	case []any:
		arr := make(Array, 0, len(t))
		for _, e := range t {
			arr = append(arr, FromAny(e))
		}
		return arr
	case map[string]any:
		obj := make(Object, len(t))
		for k, e := range t {
			obj[k] = FromAny(e)
		}
		return obj
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return Func{Impl: v}
	}
	return nil
}

// FromMap converts a decoded mapping into user configuration.
func FromMap(m map[string]any) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}

// format renders a value for error messages.
func format(v Value) string {
	switch t := v.(type) {
	case nil:
		return "undefined"
	case String:
		return string(t)
	case Bool:
		return strconv.FormatBool(bool(t))
	case Number:
		return strconv.FormatFloat(float64(t), 'f', -1, 64)
	case Func:
		if t.Name != "" {
			return "function " + t.Name
		}
		return "function"
	case PresetRef:
		return "preset " + t.Name
	case Array:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, format(e))
		}
		return strings.Join(parts, ",")
	case Object:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+format(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(v)
}
