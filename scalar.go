package serdes

import (
	"math"
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"
)

// ScalarKind enumerates the leaf kinds every backend supports.
type ScalarKind uint8

const (
	ScalarString ScalarKind = iota + 1
	ScalarBool
	ScalarInt
	ScalarUint
	ScalarFloat
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarString:
		return "string"
	case ScalarBool:
		return "bool"
	case ScalarInt:
		return "int"
	case ScalarUint:
		return "uint"
	case ScalarFloat:
		return "float"
	default:
		return "invalid"
	}
}

// Basic is the closed set of Go types a Scalar can be built from. Using any
// other type with ScalarOf or ToBasic is a compile-time error.
type Basic interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Scalar is a leaf value exchanged with backends.
type Scalar struct {
	kind ScalarKind
	s    string
	b    bool
	i    int64
	u    uint64
	f    float64
}

// ScalarOf builds a Scalar from any Basic value.
func ScalarOf[T Basic](v T) Scalar { return scalarFromValue(reflect.ValueOf(v)) }

func StringScalar(s string) Scalar { return Scalar{kind: ScalarString, s: s} }
func BoolScalar(b bool) Scalar     { return Scalar{kind: ScalarBool, b: b} }
func IntScalar(i int64) Scalar     { return Scalar{kind: ScalarInt, i: i} }
func UintScalar(u uint64) Scalar   { return Scalar{kind: ScalarUint, u: u} }
func FloatScalar(f float64) Scalar { return Scalar{kind: ScalarFloat, f: f} }
func (s Scalar) Kind() ScalarKind  { return s.kind }
func (s Scalar) AsString() string  { return s.s }
func (s Scalar) AsBool() bool      { return s.b }
func (s Scalar) AsInt() int64      { return s.i }
func (s Scalar) AsUint() uint64    { return s.u }
func (s Scalar) AsFloat() float64  { return s.f }

// String renders the scalar for logs and messages.
func (s Scalar) String() string {
	switch s.kind {
	case ScalarString:
		return strconv.Quote(s.s)
	case ScalarBool:
		return strconv.FormatBool(s.b)
	case ScalarInt:
		return strconv.FormatInt(s.i, 10)
	case ScalarUint:
		return strconv.FormatUint(s.u, 10)
	case ScalarFloat:
		return strconv.FormatFloat(s.f, 'g', -1, 64)
	default:
		return "<invalid>"
	}
}

// Interface returns the scalar as a plain Go value (string, bool, int64,
// uint64 or float64).
func (s Scalar) Interface() any {
	switch s.kind {
	case ScalarString:
		return s.s
	case ScalarBool:
		return s.b
	case ScalarInt:
		return s.i
	case ScalarUint:
		return s.u
	case ScalarFloat:
		return s.f
	default:
		return nil
	}
}

func scalarFromValue(rv reflect.Value) Scalar {
	switch rv.Kind() {
	case reflect.String:
		return StringScalar(rv.String())
	case reflect.Bool:
		return BoolScalar(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntScalar(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return UintScalar(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return FloatScalar(rv.Float())
	}
	panic("serdes: scalarFromValue on non-basic kind " + rv.Kind().String())
}

func scalarKindOf(t reflect.Type) (ScalarKind, bool) {
	switch t.Kind() {
	case reflect.String:
		return ScalarString, true
	case reflect.Bool:
		return ScalarBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ScalarInt, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ScalarUint, true
	case reflect.Float32, reflect.Float64:
		return ScalarFloat, true
	}
	return 0, false
}

// setScalar stores s into dst, converting between numeric kinds when the
// value fits. Out-of-range values are coercion errors.
func setScalar(dst reflect.Value, s Scalar) error {
	switch dst.Kind() {
	case reflect.String:
		if s.kind != ScalarString {
			return mismatch(s, dst.Type())
		}
		dst.SetString(s.s)
	case reflect.Bool:
		if s.kind != ScalarBool {
			return mismatch(s, dst.Type())
		}
		dst.SetBool(s.b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		switch s.kind {
		case ScalarInt:
			i = s.i
		case ScalarUint:
			if s.u > math.MaxInt64 {
				return overflow(s, dst.Type())
			}
			i = int64(s.u)
		case ScalarFloat:
			if s.f != math.Trunc(s.f) || s.f < math.MinInt64 || s.f >= math.MaxInt64 {
				return mismatch(s, dst.Type())
			}
			i = int64(s.f)
		default:
			return mismatch(s, dst.Type())
		}
		if dst.OverflowInt(i) {
			return overflow(s, dst.Type())
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint64
		switch s.kind {
		case ScalarUint:
			u = s.u
		case ScalarInt:
			if s.i < 0 {
				return overflow(s, dst.Type())
			}
			u = uint64(s.i)
		case ScalarFloat:
			if s.f != math.Trunc(s.f) || s.f < 0 || s.f >= math.MaxUint64 {
				return mismatch(s, dst.Type())
			}
			u = uint64(s.f)
		default:
			return mismatch(s, dst.Type())
		}
		if dst.OverflowUint(u) {
			return overflow(s, dst.Type())
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		var f float64
		switch s.kind {
		case ScalarFloat:
			f = s.f
		case ScalarInt:
			f = float64(s.i)
		case ScalarUint:
			f = float64(s.u)
		default:
			return mismatch(s, dst.Type())
		}
		if dst.Kind() == reflect.Float32 && dst.OverflowFloat(f) {
			return overflow(s, dst.Type())
		}
		dst.SetFloat(f)
	default:
		return mismatch(s, dst.Type())
	}
	return nil
}

func mismatch(s Scalar, t reflect.Type) error {
	return Coercion(errors.Newf("cannot convert %s value %s to %s", s.kind, s, t))
}

func overflow(s Scalar, t reflect.Type) error {
	return Coercion(errors.Newf("value %s overflows %s", s, t))
}
