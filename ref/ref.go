// Package ref provides shared ownership handles.
//
// Ref is a handle that always denotes a value: there is no constructor that
// yields an empty Ref, and decoding a Ref from an empty input node fails.
// Shared is the nullable counterpart.
//
// Copying either handle shares the underlying allocation. Lifetime is managed
// by the garbage collector, so copies may be created and dropped from many
// goroutines at once; mutation of the shared value is not synchronized.
package ref

import (
	"cmp"
	"fmt"
	"reflect"
	"unsafe"
)

// Ref is a non-null shared handle to a T.
//
// The zero Ref[T] (a declared but unconstructed variable) holds no
// allocation. Get on it returns the zero T; Ptr and Set panic with
// ErrZeroRef as the message. Build Refs with Make, New, Of or Convert.
type Ref[T any] struct {
	p *T
}

// ErrZeroRef is the panic message of Ptr and Set on a zero Ref.
const ErrZeroRef = "ref: use of zero Ref; build it with Make, New, Of or Convert"

// Make allocates a new T holding v.
func Make[T any](v T) Ref[T] { return Ref[T]{p: &v} }

// New allocates a default-constructed T.
func New[T any]() Ref[T] { return Ref[T]{p: new(T)} }

// Of adopts an existing allocation. It reports false when p is nil.
func Of[T any](p *T) (Ref[T], bool) {
	if p == nil {
		return Ref[T]{}, false
	}
	return Ref[T]{p: p}, true
}

// Convert builds a Ref[T] from a Ref[U] by converting the pointee into a new
// allocation. The result never shares storage with r.
func Convert[U, T any](r Ref[U], conv func(U) T) Ref[T] {
	return Make(conv(r.Get()))
}

// IsZero reports whether r was never constructed.
func (r Ref[T]) IsZero() bool { return r.p == nil }

// Get returns a copy of the pointee, or the zero T for a zero Ref.
func (r Ref[T]) Get() T {
	if r.p == nil {
		var zero T
		return zero
	}
	return *r.p
}

// Ptr returns the shared pointer. Writes through it are visible to every copy
// of r.
func (r Ref[T]) Ptr() *T {
	if r.p == nil {
		panic(ErrZeroRef)
	}
	return r.p
}

// Set replaces the pointee. Every copy of r observes the new value.
func (r Ref[T]) Set(v T) {
	if r.p == nil {
		panic(ErrZeroRef)
	}
	*r.p = v
}

// Same reports whether r and o share one allocation. A zero Ref shares
// nothing, not even with another zero Ref.
func (r Ref[T]) Same(o Ref[T]) bool { return r.p != nil && r.p == o.p }

// Addr returns the address of the allocation, for ordering and hashing. It is
// 0 for a zero Ref.
func (r Ref[T]) Addr() uintptr { return uintptr(unsafe.Pointer(r.p)) }

// Swap exchanges the allocations held by r and o.
func (r *Ref[T]) Swap(o *Ref[T]) { r.p, o.p = o.p, r.p }

// String prints the allocation address, like printing the raw pointer.
func (r Ref[T]) String() string { return fmt.Sprintf("%p", r.p) }

// Compare orders two handles by allocation address. Zero Refs sort before
// every constructed Ref and compare equal to each other; use Same to test
// sharing.
func Compare[T any](a, b Ref[T]) int { return cmp.Compare(a.Addr(), b.Addr()) }

// Handle is the type-erased view of Ref and Shared used by reflection-driven
// decoders.
type Handle interface {
	// ElemType is the pointee type.
	ElemType() reflect.Type
	// CanBeEmpty distinguishes Shared (true) from Ref (false).
	CanBeEmpty() bool
	// Load returns the pointee, or false when the handle is empty.
	Load() (reflect.Value, bool)
	// Store returns a handle of the same type owning a new allocation that
	// holds v.
	Store(v reflect.Value) Handle
}

func (r Ref[T]) ElemType() reflect.Type { return reflect.TypeFor[T]() }
func (r Ref[T]) CanBeEmpty() bool       { return false }

// Load returns the pointee. A zero Ref loads as the zero T.
func (r Ref[T]) Load() (reflect.Value, bool) {
	if r.p == nil {
		return reflect.Zero(reflect.TypeFor[T]()), true
	}
	return reflect.ValueOf(r.p).Elem(), true
}

func (r Ref[T]) Store(v reflect.Value) Handle {
	p := new(T)
	reflect.ValueOf(p).Elem().Set(v)
	return Ref[T]{p: p}
}
