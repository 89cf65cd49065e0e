package serdes

import "reflect"

// Option is the optional shape: either a value or nothing. Decoding an empty
// node into an Option yields None without error.
type Option[T any] struct {
	v  T
	ok bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] { return Option[T]{v: v, ok: true} }

// None returns an empty Option.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.v, o.ok }

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.ok }

// IsNone reports whether the Option is empty.
func (o Option[T]) IsNone() bool { return !o.ok }

// OrElse returns the value when present and def otherwise.
func (o Option[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}
	return o.v
}

// optionValue is the reflection view the registry uses to build the
// Option[T] parser without knowing T statically.
type optionValue interface {
	optionElem() reflect.Type
	someValue(v reflect.Value) reflect.Value
	getValue() (reflect.Value, bool)
}

func (o Option[T]) optionElem() reflect.Type { return reflect.TypeFor[T]() }

func (o Option[T]) someValue(v reflect.Value) reflect.Value {
	var t T
	reflect.ValueOf(&t).Elem().Set(v)
	return reflect.ValueOf(Some(t))
}

func (o Option[T]) getValue() (reflect.Value, bool) {
	if !o.ok {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(&o.v).Elem(), true
}
