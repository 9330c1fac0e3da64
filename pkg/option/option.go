// Package option provides a generic Option type for optional values.
package option

import (
	"bytes"
	"encoding/json"
)

// Option represents an optional value.
//
// An Option encodes to JSON as its value when present and as null when empty,
// so it can be used directly for optional fields of persisted records.
type Option[T any] struct {
	value *T
}

// Some creates an Option with a value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: &value}
}

// None creates an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome returns true if the Option contains a value.
func (o Option[T]) IsSome() bool {
	return o.value != nil
}

// IsNone returns true if the Option is empty.
func (o Option[T]) IsNone() bool {
	return o.value == nil
}

// IsZero reports whether the Option is empty. yaml.v3 consults it for
// omitempty.
func (o Option[T]) IsZero() bool {
	return o.value == nil
}

// Get returns the value and whether it was present.
func (o Option[T]) Get() (T, bool) {
	if o.value == nil {
		var zero T
		return zero, false
	}
	return *o.value, true
}

// UnwrapOr returns the value or a default if empty.
func (o Option[T]) UnwrapOr(defaultValue T) T {
	if o.value == nil {
		return defaultValue
	}
	return *o.value
}

// UnwrapOrElse returns the value or calls a function to get a default.
func (o Option[T]) UnwrapOrElse(f func() T) T {
	if o.value == nil {
		return f()
	}
	return *o.value
}

// Map transforms the value if present.
func Map[T, U any](o Option[T], f func(T) U) Option[U] {
	if o.value == nil {
		return None[U]()
	}
	return Some(f(*o.value))
}

// Filter returns the Option if the predicate is satisfied, otherwise None.
func (o Option[T]) Filter(predicate func(T) bool) Option[T] {
	if o.value != nil && predicate(*o.value) {
		return o
	}
	return None[T]()
}

// MarshalJSON implements json.Marshaler.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if o.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.value = &v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (o Option[T]) MarshalYAML() (any, error) {
	if o.value == nil {
		return nil, nil
	}
	return *o.value, nil
}
