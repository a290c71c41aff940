//
// Package partial provides the building block for records whose fields may or may not have been
// learned yet. A record is a plain struct of Value fields; merging another Value only ever moves a
// field from unknown to known, or replaces one known value with a newer one.
//
package partial

//
// Value is a single field that is either known (holding a value) or unknown. The zero Value is
// unknown.
//
type Value[T any] struct {
	v     T
	known bool
}

//
// Of returns a known Value holding v.
//
func Of[T any](v T) Value[T] {
	return Value[T]{v: v, known: true}
}

//
// Unknown returns an unknown Value. It is equivalent to the zero Value and exists for readability at
// call sites.
//
func Unknown[T any]() Value[T] {
	return Value[T]{}
}

//
// Get returns the held value and true, or the zero value of T and false if the field is unknown.
//
func (o Value[T]) Get() (T, bool) {
	return o.v, o.known
}

func (o Value[T]) Known() bool {
	return o.known
}

//
// Merge overwrites the field with update if update is known. An unknown update is a no-op, so a
// known field never reverts to unknown.
//
func (o *Value[T]) Merge(update Value[T]) {
	if update.known {
		*o = update
	}
}
