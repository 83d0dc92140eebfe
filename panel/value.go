// ABOUTME: Literal-or-lazy value wrapper used throughout the panel configuration.
// ABOUTME: Lazy values are materialized on every Resolve call and never cached.

package panel

import "encoding/json"

// Value holds either a literal T or a producer of T.
// The zero Value is unset and resolves to the zero T.
type Value[T any] struct {
	literal T
	produce func() T
	set     bool
}

// Literal wraps a plain value
func Literal[T any](v T) Value[T] {
	return Value[T]{literal: v, set: true}
}

// Lazy wraps a zero-argument producer. A nil producer yields an unset Value.
func Lazy[T any](produce func() T) Value[T] {
	if produce == nil {
		return Value[T]{}
	}
	return Value[T]{produce: produce, set: true}
}

// IsSet reports whether a literal or producer was supplied
func (v Value[T]) IsSet() bool {
	return v.set
}

// IsLazy reports whether the value is backed by a producer
func (v Value[T]) IsLazy() bool {
	return v.produce != nil
}

// Resolve returns the literal, or invokes the producer.
func (v Value[T]) Resolve() T {
	if v.produce != nil {
		return v.produce()
	}
	return v.literal
}

// Materialize resolves the value and returns it as a literal.
func (v Value[T]) Materialize() Value[T] {
	if !v.set {
		return v
	}
	return Literal(v.Resolve())
}

// MarshalJSON encodes the resolved value; producers are invoked.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.Resolve())
}
