package serdes

import (
	"reflect"

	"github.com/reoring/serdes/ref"
)

// Nullable is implemented by Parsers whose shape has an empty state. A struct
// field decoded by a nullable Parser may be absent from its object.
type Nullable interface {
	Nullable() bool
}

func isNullable(p any) bool {
	n, ok := p.(Nullable)
	return ok && n.Nullable()
}

// emptyShape is implemented by Parsers whose value type has its own empty
// state (Option, pointer, Shared) and by the wrappers forwarding to them.
// Slices and maps read null as nil but are not empty shapes.
type emptyShape interface {
	holdsEmpty() bool
}

func holdsEmpty(p any) bool {
	e, ok := p.(emptyShape)
	return ok && e.holdsEmpty()
}

// nullableParser handles every shape that can be empty (optional, owned
// pointer, shared pointer). On read an empty node yields the empty W without
// consulting inner; on write an empty W is emitted as a null marker.
type nullableParser[T, W any] struct {
	inner  Parser[T]
	wrap   func(T) W
	unwrap func(W) (T, bool)
	empty  func() W
}

func (p nullableParser[T, W]) Read(r Reader, v InputVar) Result[W] {
	if r.IsEmpty(v) {
		return Ok(p.empty())
	}
	return Transform(p.inner.Read(r, v), p.wrap)
}

func (p nullableParser[T, W]) Write(w Writer, v W, parent Parent) {
	t, ok := p.unwrap(v)
	if !ok {
		parent.AddNull(w)
		return
	}
	p.inner.Write(w, t, parent)
}

func (nullableParser[T, W]) Nullable() bool   { return true }
func (nullableParser[T, W]) holdsEmpty() bool { return true }

// nonNullParser handles Ref: there is no empty state, so an empty node fails
// unless inner is itself an empty shape.
type nonNullParser[T, W any] struct {
	inner  Parser[T]
	wrap   func(T) W
	unwrap func(W) T
}

func (p nonNullParser[T, W]) Read(r Reader, v InputVar) Result[W] {
	if r.IsEmpty(v) && !holdsEmpty(p.inner) {
		return Fail[W](emptyRefError())
	}
	return Transform(p.inner.Read(r, v), p.wrap)
}

func emptyRefError() *Error {
	return NewError(CodeShapeMismatch, "non-null reference cannot be decoded from an empty node")
}

func (p nonNullParser[T, W]) Write(w Writer, v W, parent Parent) {
	p.inner.Write(w, p.unwrap(v), parent)
}

// Optional decodes Option[T]: an empty node is None, anything else is Some of
// inner's result.
func Optional[T any](inner Parser[T]) Parser[Option[T]] {
	return nullableParser[T, Option[T]]{
		inner:  inner,
		wrap:   Some[T],
		unwrap: Option[T].Get,
		empty:  None[T],
	}
}

// Pointer decodes a uniquely owned *T: an empty node is nil, anything else is
// a fresh allocation.
func Pointer[T any](inner Parser[T]) Parser[*T] {
	return nullableParser[T, *T]{
		inner: inner,
		wrap:  func(v T) *T { return &v },
		unwrap: func(p *T) (T, bool) {
			if p == nil {
				var zero T
				return zero, false
			}
			return *p, true
		},
		empty: func() *T { return nil },
	}
}

// SharedPtr decodes a nullable shared handle.
func SharedPtr[T any](inner Parser[T]) Parser[ref.Shared[T]] {
	return nullableParser[T, ref.Shared[T]]{
		inner:  inner,
		wrap:   ref.Share[T],
		unwrap: ref.Shared[T].Get,
		empty:  func() ref.Shared[T] { return ref.Shared[T]{} },
	}
}

// RefOf decodes a non-null shared handle. An empty node is an error unless
// inner is Optional, Pointer or SharedPtr.
func RefOf[T any](inner Parser[T]) Parser[ref.Ref[T]] {
	return nonNullParser[T, ref.Ref[T]]{
		inner:  inner,
		wrap:   ref.Make[T],
		unwrap: ref.Ref[T].Get,
	}
}

// Reflective instantiations used by the registry.

func reflectPointer(t reflect.Type, elem Parser[reflect.Value]) Parser[reflect.Value] {
	return nullableParser[reflect.Value, reflect.Value]{
		inner: elem,
		wrap: func(v reflect.Value) reflect.Value {
			p := reflect.New(t.Elem())
			p.Elem().Set(v)
			return p
		},
		unwrap: func(v reflect.Value) (reflect.Value, bool) {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			return v.Elem(), true
		},
		empty: func() reflect.Value { return reflect.Zero(t) },
	}
}

func reflectOption(t reflect.Type, elem Parser[reflect.Value]) Parser[reflect.Value] {
	proto := reflect.Zero(t).Interface().(optionValue)
	return nullableParser[reflect.Value, reflect.Value]{
		inner: elem,
		wrap:  proto.someValue,
		unwrap: func(v reflect.Value) (reflect.Value, bool) {
			return v.Interface().(optionValue).getValue()
		},
		empty: func() reflect.Value { return reflect.Zero(t) },
	}
}

func reflectHandle(t reflect.Type, elem Parser[reflect.Value]) Parser[reflect.Value] {
	proto := reflect.Zero(t).Interface().(ref.Handle)
	wrap := func(v reflect.Value) reflect.Value {
		return reflect.ValueOf(proto.Store(v))
	}
	if !proto.CanBeEmpty() {
		return nonNullParser[reflect.Value, reflect.Value]{
			inner: elem,
			wrap:  wrap,
			unwrap: func(v reflect.Value) reflect.Value {
				ev, _ := v.Interface().(ref.Handle).Load()
				return ev
			},
		}
	}
	return nullableParser[reflect.Value, reflect.Value]{
		inner: elem,
		wrap:  wrap,
		unwrap: func(v reflect.Value) (reflect.Value, bool) {
			return v.Interface().(ref.Handle).Load()
		},
		empty: func() reflect.Value { return reflect.Zero(t) },
	}
}
