package serdes

import (
	"encoding"
	"reflect"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// InputDecoder is implemented by *T for types that construct themselves from
// any backend's input instead of being decoded structurally.
type InputDecoder interface {
	DecodeInput(r Reader, v InputVar) error
}

// OutputEncoder is implemented by types that write themselves to any backend.
type OutputEncoder interface {
	EncodeOutput(w Writer, p Parent)
}

var (
	inputDecoderType    = reflect.TypeFor[InputDecoder]()
	outputEncoderType   = reflect.TypeFor[OutputEncoder]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// UseCustomConstructor builds a T through its own constructor: InputDecoder
// when *T implements it, otherwise the Reader's format-specific hook. Every
// failure, including a panic inside the constructor, is reported as a
// custom_constructor diagnostic. Diagnostics returned by the constructor are
// passed through unchanged.
func UseCustomConstructor[T any](r Reader, v InputVar) Result[T] {
	return Transform(construct(r, v, reflect.TypeFor[T]()), func(rv reflect.Value) T {
		return rv.Interface().(T)
	})
}

func construct(r Reader, v InputVar, t reflect.Type) (res Result[reflect.Value]) {
	defer func() {
		if rec := recover(); rec != nil {
			L().Warn("serdes: custom constructor panicked", zap.Stringer("type", t), zap.Any("panic", rec))
			res = Fail[reflect.Value](customError(errors.Newf("custom constructor for %s panicked: %v", t, rec)))
		}
	}()
	dst := reflect.New(t)
	var err error
	switch {
	case dst.Type().Implements(inputDecoderType):
		err = dst.Interface().(InputDecoder).DecodeInput(r, v)
	case r.HasCustomConstructor(t):
		err = r.UseCustomConstructor(v, dst.Interface())
	default:
		err = Errorf(CodeCustomConstructor, "type %s has no custom constructor", t)
	}
	if err != nil {
		return Fail[reflect.Value](customError(err))
	}
	return Ok(dst.Elem())
}

func customError(err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	e := NewError(CodeCustomConstructor, err.Error())
	e.Cause = err
	return e
}

// customParser serves types implementing InputDecoder or OutputEncoder. A
// direction the type does not cover falls back to structural decoding when
// one can be built.
type customParser struct {
	t        reflect.Type
	fallback Parser[reflect.Value]
}

func (p customParser) Read(r Reader, v InputVar) Result[reflect.Value] {
	if reflect.PointerTo(p.t).Implements(inputDecoderType) || p.fallback == nil {
		return construct(r, v, p.t)
	}
	return p.fallback.Read(r, v)
}

func (p customParser) Write(w Writer, v reflect.Value, parent Parent) {
	if enc, ok := outputEncoder(v); ok {
		enc.EncodeOutput(w, parent)
		return
	}
	if p.fallback == nil {
		L().Error("serdes: type has no encoder, writing null", zap.Stringer("type", p.t))
		parent.AddNull(w)
		return
	}
	p.fallback.Write(w, v, parent)
}

func (p customParser) Nullable() bool   { return p.fallback != nil && isNullable(p.fallback) }
func (p customParser) holdsEmpty() bool { return p.fallback != nil && holdsEmpty(p.fallback) }

func outputEncoder(v reflect.Value) (OutputEncoder, bool) {
	if v.Type().Implements(outputEncoderType) {
		return v.Interface().(OutputEncoder), true
	}
	if !reflect.PointerTo(v.Type()).Implements(outputEncoderType) {
		return nil, false
	}
	if !v.CanAddr() {
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	}
	return v.Addr().Interface().(OutputEncoder), true
}

// textParser serves encoding.TextMarshaler types (time.Time, net.IP, ...) as
// string leaves.
type textParser struct{ t reflect.Type }

func (p textParser) Read(r Reader, v InputVar) Result[reflect.Value] {
	s := ToBasic[string](r, v)
	if !s.OK() {
		return Forward[reflect.Value](s)
	}
	dst := reflect.New(p.t)
	if err := dst.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s.val)); err != nil {
		return Fail[reflect.Value](Coercion(err))
	}
	return Ok(dst.Elem())
}

func (p textParser) Write(w Writer, v reflect.Value, parent Parent) {
	b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		L().Error("serdes: MarshalText failed, writing null", zap.Stringer("type", p.t), zap.Error(err))
		parent.AddNull(w)
		return
	}
	parent.AddValue(w, StringScalar(string(b)))
}

// hookParser lets the Reader's format-specific constructor take over for a
// named type when the backend recognizes one.
type hookParser struct {
	t     reflect.Type
	inner Parser[reflect.Value]
}

func (p hookParser) Read(r Reader, v InputVar) Result[reflect.Value] {
	if r.HasCustomConstructor(p.t) {
		return construct(r, v, p.t)
	}
	return p.inner.Read(r, v)
}

func (p hookParser) Write(w Writer, v reflect.Value, parent Parent) { p.inner.Write(w, v, parent) }
func (p hookParser) Nullable() bool                                 { return isNullable(p.inner) }
func (p hookParser) holdsEmpty() bool                               { return holdsEmpty(p.inner) }
