package taskgen

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// InheritMarker is the configuration value meaning "reuse the value of the
// previous sibling sub-task".
const InheritMarker = "~"

// Inheritable is a configuration field that holds either a literal value or
// the inherit marker. The zero value is an absent field.
//
// In JSON documents the marker is the string "~"; any other value decodes as a
// literal. Programmatic callers use Literal and Inherit, which keeps a literal
// "~" string expressible.
type Inheritable[T any] struct {
	value    T
	set      bool
	inherit  bool
	resolved bool
}

// Literal returns a field holding v.
func Literal[T any](v T) Inheritable[T] {
	return Inheritable[T]{value: v, set: true}
}

// Inherit returns a field holding the inherit marker.
func Inherit[T any]() Inheritable[T] {
	return Inheritable[T]{inherit: true}
}

// Value returns the held value, or the zero value when none is held.
func (i Inheritable[T]) Value() T {
	return i.value
}

// Get returns the held value and whether one is held.
func (i Inheritable[T]) Get() (T, bool) {
	return i.value, i.set
}

// IsSet reports whether a value is held. After inheritance resolution an
// inherited field holds the sibling's value and reports true.
func (i Inheritable[T]) IsSet() bool {
	return i.set
}

// IsInherit reports whether the field was declared with the inherit marker.
// The flag survives resolution.
func (i Inheritable[T]) IsInherit() bool {
	return i.inherit
}

// IsZero reports whether the field is absent.
func (i Inheritable[T]) IsZero() bool {
	return !i.set && !i.inherit
}

// pending reports whether the field holds an inherit marker that has not been
// resolved yet.
func (i Inheritable[T]) pending() bool {
	return i.inherit && !i.resolved
}

// resolvedFrom returns the field after taking over stored's value.
func (i Inheritable[T]) resolvedFrom(stored Inheritable[T]) Inheritable[T] {
	return Inheritable[T]{value: stored.value, set: stored.set, inherit: true, resolved: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Inheritable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte(`"`+InheritMarker+`"`)) {
		*i = Inherit[T]()
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		*i = Inheritable[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInheritable, err)
	}
	*i = Literal(v)
	return nil
}

// MarshalJSON implements json.Marshaler. Unresolved markers encode as "~".
func (i Inheritable[T]) MarshalJSON() ([]byte, error) {
	switch {
	case i.set:
		return json.Marshal(i.value)
	case i.inherit:
		return json.Marshal(InheritMarker)
	default:
		return []byte("null"), nil
	}
}
