package scaleencode

import "github.com/wippyai/scale-encode/scaletype"

// Option is an optional value. It encodes as the variant "None" with no
// fields or "Some" with a single unnamed field.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present Option.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// EncodeAsTypeTo implements Encodable.
func (o Option[T]) EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	if !o.ok {
		return encodeVariant("None", nil, id, types, out)
	}
	return encodeVariant("Some", Composite{{Value: o.value}}, id, types, out)
}

// Result is either a success value or an error value. It encodes as the
// variant "Ok" or "Err", each with a single unnamed field.
type Result[T, E any] struct {
	value T
	err   E
	isErr bool
}

// Ok returns a successful Result.
func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{value: v}
}

// Err returns a failed Result.
func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{err: e, isErr: true}
}

// IsErr reports whether r holds an error value.
func (r Result[T, E]) IsErr() bool {
	return r.isErr
}

// EncodeAsTypeTo implements Encodable.
func (r Result[T, E]) EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	if r.isErr {
		return encodeVariant("Err", Composite{{Value: r.err}}, id, types, out)
	}
	return encodeVariant("Ok", Composite{{Value: r.value}}, id, types, out)
}
