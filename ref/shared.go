package ref

import "reflect"

// Shared is a nullable shared handle. The zero value is empty.
type Shared[T any] struct {
	p *T
}

// Share allocates a new T holding v.
func Share[T any](v T) Shared[T] { return Shared[T]{p: &v} }

// Adopt wraps p, which may be nil.
func Adopt[T any](p *T) Shared[T] { return Shared[T]{p: p} }

// IsNil reports whether the handle is empty.
func (s Shared[T]) IsNil() bool { return s.p == nil }

// Get returns a copy of the pointee and whether the handle is non-empty.
func (s Shared[T]) Get() (T, bool) {
	if s.p == nil {
		var zero T
		return zero, false
	}
	return *s.p, true
}

// Ptr returns the shared pointer, nil when empty.
func (s Shared[T]) Ptr() *T { return s.p }

// Ref upgrades a non-empty handle to a Ref sharing the same allocation.
func (s Shared[T]) Ref() (Ref[T], bool) { return Of(s.p) }

// Share returns the nullable view of r. It shares r's allocation; a zero Ref
// yields an empty Shared.
func (r Ref[T]) Share() Shared[T] { return Shared[T]{p: r.p} }

func (s Shared[T]) ElemType() reflect.Type { return reflect.TypeFor[T]() }
func (s Shared[T]) CanBeEmpty() bool       { return true }

func (s Shared[T]) Load() (reflect.Value, bool) {
	if s.p == nil {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(s.p).Elem(), true
}

func (s Shared[T]) Store(v reflect.Value) Handle {
	p := new(T)
	reflect.ValueOf(p).Elem().Set(v)
	return Shared[T]{p: p}
}
