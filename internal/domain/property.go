package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"podmanager/internal/topology"
)

// SemanticType is the declared type of a property in the vertex schema
type SemanticType string

const (
	SemanticString    SemanticType = "string"
	SemanticInteger   SemanticType = "integer"
	SemanticDecimal   SemanticType = "decimal"
	SemanticBoolean   SemanticType = "boolean"
	SemanticEnum      SemanticType = "enum"
	SemanticTimestamp SemanticType = "timestamp"
	SemanticLocation  SemanticType = "location"
	SemanticStrings   SemanticType = "strings"
)

// Valid reports whether s is a known semantic type
func (s SemanticType) Valid() bool {
	switch s {
	case SemanticString, SemanticInteger, SemanticDecimal, SemanticBoolean,
		SemanticEnum, SemanticTimestamp, SemanticLocation, SemanticStrings:
		return true
	}
	return false
}

// Descriptor is the untyped view of a property used by schemas and mappers
type Descriptor interface {
	Name() string
	Semantic() SemanticType
}

// Property describes a named, typed object property
type Property[T any] struct {
	name     string
	semantic SemanticType
	encode   func(T) any
	decode   func(any) (T, bool)
}

// Name returns the property name
func (p Property[T]) Name() string { return p.name }

// Semantic returns the property semantic type
func (p Property[T]) Semantic() SemanticType { return p.semantic }

// StringProperty declares a string property
func StringProperty(name string) Property[string] {
	return Property[string]{
		name:     name,
		semantic: SemanticString,
		encode:   func(v string) any { return v },
		decode: func(v any) (string, bool) {
			s, ok := v.(string)
			return s, ok
		},
	}
}

// IntProperty declares an integer property
func IntProperty(name string) Property[int64] {
	return Property[int64]{
		name:     name,
		semantic: SemanticInteger,
		encode:   func(v int64) any { return v },
		decode: func(v any) (int64, bool) {
			n, ok := v.(int64)
			return n, ok
		},
	}
}

// DecimalProperty declares a floating point property
func DecimalProperty(name string) Property[float64] {
	return Property[float64]{
		name:     name,
		semantic: SemanticDecimal,
		encode:   func(v float64) any { return v },
		decode: func(v any) (float64, bool) {
			f, ok := v.(float64)
			return f, ok
		},
	}
}

// BoolProperty declares a boolean property
func BoolProperty(name string) Property[bool] {
	return Property[bool]{
		name:     name,
		semantic: SemanticBoolean,
		encode:   func(v bool) any { return v },
		decode: func(v any) (bool, bool) {
			b, ok := v.(bool)
			return b, ok
		},
	}
}

// EnumProperty declares a property holding one of a string enumeration
func EnumProperty[T ~string](name string) Property[T] {
	return Property[T]{
		name:     name,
		semantic: SemanticEnum,
		encode:   func(v T) any { return string(v) },
		decode: func(v any) (T, bool) {
			s, ok := v.(string)
			return T(s), ok
		},
	}
}

// TimestampProperty declares a point-in-time property
func TimestampProperty(name string) Property[time.Time] {
	return Property[time.Time]{
		name:     name,
		semantic: SemanticTimestamp,
		encode:   func(v time.Time) any { return v.UTC().Format(time.RFC3339Nano) },
		decode: func(v any) (time.Time, bool) {
			s, ok := v.(string)
			if !ok {
				return time.Time{}, false
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			return t, err == nil
		},
	}
}

// LocationProperty declares a physical location property
func LocationProperty(name string) Property[topology.Location] {
	return Property[topology.Location]{
		name:     name,
		semantic: SemanticLocation,
		encode:   func(v topology.Location) any { return v.String() },
		decode: func(v any) (topology.Location, bool) {
			s, ok := v.(string)
			if !ok {
				return topology.Location{}, false
			}
			loc, err := topology.ParseLocation(s)
			return loc, err == nil
		},
	}
}

// StringsProperty declares a list-of-strings property
func StringsProperty(name string) Property[[]string] {
	return Property[[]string]{
		name:     name,
		semantic: SemanticStrings,
		encode: func(v []string) any {
			out := make([]string, len(v))
			copy(out, v)
			return out
		},
		decode: func(v any) ([]string, bool) {
			s, ok := v.([]string)
			return s, ok
		},
	}
}

// Get reads a typed property, returning the zero value when it is unset
func Get[T any](o *Object, p Property[T]) T {
	v, _ := Lookup(o, p)
	return v
}

// Lookup reads a typed property and reports whether it is set
func Lookup[T any](o *Object, p Property[T]) (T, bool) {
	var zero T
	raw, ok := o.props[p.name]
	if !ok {
		return zero, false
	}
	return p.decode(raw)
}

// Set writes a typed property
func Set[T any](o *Object, p Property[T], v T) {
	o.put(p.name, p.encode(v))
}

// Clear removes a property
func Clear[T any](o *Object, p Property[T]) {
	o.remove(p.name)
}

// Convert normalizes a decoded value (JSON, Go literal or stored form) into the
// stored form of semantic type s. A nil value converts to nil.
func Convert(s SemanticType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch s {
	case SemanticString, SemanticEnum:
		if str, ok := v.(string); ok {
			return str, nil
		}
		if str, ok := v.(fmt.Stringer); ok {
			return str.String(), nil
		}
		// named string types such as State or ServiceType
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	case SemanticInteger:
		if n, ok := toInt(v); ok {
			return n, nil
		}
	case SemanticDecimal:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case SemanticBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case SemanticTimestamp:
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format(time.RFC3339Nano), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp %q: %w", t, err)
			}
			return parsed.UTC().Format(time.RFC3339Nano), nil
		}
	case SemanticLocation:
		switch l := v.(type) {
		case topology.Location:
			return l.String(), nil
		case string:
			loc, err := topology.ParseLocation(l)
			if err != nil {
				return nil, err
			}
			return loc.String(), nil
		case map[string]any:
			loc, err := locationFromMap(l)
			if err != nil {
				return nil, err
			}
			return loc.String(), nil
		}
	case SemanticStrings:
		switch list := v.(type) {
		case []string:
			out := make([]string, len(list))
			copy(out, list)
			return out, nil
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				str, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("cannot convert %T element to %s", item, s)
				}
				out = append(out, str)
			}
			return out, nil
		}
	default:
		return nil, fmt.Errorf("unknown semantic type %q", s)
	}
	return nil, fmt.Errorf("cannot convert %T to %s", v, s)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// locationOrder fixes the coordinate order of locations reported as JSON objects
var locationOrder = []string{"Pod", "Rack", "Drawer", "Module", "Blade", "Switch", "Port"}

func locationFromMap(m map[string]any) (topology.Location, error) {
	var loc topology.Location
	add := func(key string) error {
		raw, ok := m[key]
		if !ok || raw == nil {
			return nil
		}
		n, ok := toInt(raw)
		if !ok {
			return fmt.Errorf("location coordinate %s is not an integer", key)
		}
		loc = loc.With(key, int(n))
		return nil
	}

	known := make(map[string]bool, len(locationOrder))
	for _, key := range locationOrder {
		known[key] = true
		if err := add(key); err != nil {
			return topology.Location{}, err
		}
	}

	var rest []string
	for key := range m {
		if !known[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if err := add(key); err != nil {
			return topology.Location{}, err
		}
	}
	return loc, nil
}
