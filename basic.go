package serdes

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// ToBasic reads v as a leaf of Go type T. Backend failures are coercion
// diagnostics; values outside the range of T are coercion diagnostics too.
func ToBasic[T Basic](r Reader, v InputVar) Result[T] {
	return Transform(readScalar(r, v, reflect.TypeFor[T]()), func(rv reflect.Value) T {
		return rv.Interface().(T)
	})
}

// readScalar is the conversion boundary for leaves. A backend that panics
// while converting produces a coercion diagnostic instead of a crash.
func readScalar(r Reader, v InputVar, t reflect.Type) (res Result[reflect.Value]) {
	kind, ok := scalarKindOf(t)
	if !ok {
		return Fail[reflect.Value](UnsupportedType(t.String()))
	}
	defer func() {
		if rec := recover(); rec != nil {
			res = Fail[reflect.Value](Coercion(errors.Newf("%v", rec)))
		}
	}()
	s := r.ToBasic(v, kind)
	if !s.OK() {
		return Forward[reflect.Value](s)
	}
	out := reflect.New(t).Elem()
	if err := setScalar(out, s.val); err != nil {
		return Fail[reflect.Value](err)
	}
	return Ok(out)
}

type basicParser[T Basic] struct{}

// BasicParser returns the Parser for a leaf type.
func BasicParser[T Basic]() Parser[T] { return basicParser[T]{} }

func (basicParser[T]) Read(r Reader, v InputVar) Result[T] { return ToBasic[T](r, v) }
func (basicParser[T]) Write(w Writer, v T, p Parent)       { p.AddValue(w, ScalarOf(v)) }

type reflectBasic struct{ t reflect.Type }

func (b reflectBasic) Read(r Reader, v InputVar) Result[reflect.Value] { return readScalar(r, v, b.t) }
func (b reflectBasic) Write(w Writer, v reflect.Value, p Parent)       { p.AddValue(w, scalarFromValue(v)) }
