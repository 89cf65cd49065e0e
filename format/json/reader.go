package json

import (
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/reoring/serdes"
	eng "github.com/reoring/serdes/internal/engine"
)

// Reader implements serdes.Reader over documents produced by Parse.
//
// Scalars are strictly typed: a JSON string never reads as a number or a
// boolean unless ReadOpt.CoerceStrings is set.
type Reader struct {
	opt serdes.ReadOpt
}

var (
	_ serdes.Reader     = (*Reader)(nil)
	_ serdes.Classifier = (*Reader)(nil)
)

// NewReader returns a Reader configured by the last of opts.
func NewReader(opts ...serdes.ReadOpt) *Reader {
	return &Reader{opt: serdes.LastReadOpt(opts)}
}

func (r *Reader) GetField(name string, obj serdes.InputObject) serdes.Result[serdes.InputVar] {
	n := nodeOf(obj.Node())
	for i := len(n.Members) - 1; i >= 0; i-- {
		if n.Members[i].Key == name {
			return serdes.Ok(serdes.NewInputVar(n.Members[i].Value))
		}
	}
	return serdes.Fail[serdes.InputVar](withOffset(serdes.MissingField(name), n))
}

func (r *Reader) IsEmpty(v serdes.InputVar) bool {
	if v.IsZero() {
		return true
	}
	n := nodeOf(v.Node())
	return n == nil || n.Kind == eng.KindNull
}

func (r *Reader) ToBasic(v serdes.InputVar, kind serdes.ScalarKind) serdes.Result[serdes.Scalar] {
	n := nodeOf(v.Node())
	s, err := r.scalar(n, kind)
	if err != nil {
		return serdes.Fail[serdes.Scalar](withOffset(serdes.Coercion(err), n))
	}
	return serdes.Ok(s)
}

func (r *Reader) scalar(n *eng.Node, kind serdes.ScalarKind) (serdes.Scalar, error) {
	if n == nil {
		return serdes.Scalar{}, errors.Newf("cannot convert absent value to %s", kind)
	}
	switch {
	case kind == serdes.ScalarString && n.Kind == eng.KindString:
		return serdes.StringScalar(n.Text), nil
	case kind == serdes.ScalarBool && n.Kind == eng.KindBool:
		return serdes.BoolScalar(n.Bool), nil
	case kind != serdes.ScalarString && kind != serdes.ScalarBool && n.Kind == eng.KindNumber:
		return parseNumber(n.Text, kind)
	case r.opt.CoerceStrings && n.Kind == eng.KindString && kind != serdes.ScalarString:
		if kind == serdes.ScalarBool {
			b, err := strconv.ParseBool(n.Text)
			if err != nil {
				return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to bool", n.Text)
			}
			return serdes.BoolScalar(b), nil
		}
		return parseNumber(n.Text, kind)
	}
	return serdes.Scalar{}, errors.Newf("cannot convert %s to %s", kindName(n), kind)
}

func parseNumber(text string, kind serdes.ScalarKind) (serdes.Scalar, error) {
	switch kind {
	case serdes.ScalarInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to int", text)
		}
		return serdes.IntScalar(i), nil
	case serdes.ScalarUint:
		u, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to uint", text)
		}
		return serdes.UintScalar(u), nil
	default:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to float", text)
		}
		return serdes.FloatScalar(f), nil
	}
}

func (r *Reader) ToArray(v serdes.InputVar) serdes.Result[serdes.InputArray] {
	n := nodeOf(v.Node())
	if n == nil || !n.IsArray() {
		return serdes.Fail[serdes.InputArray](withOffset(serdes.ShapeMismatch("array"), n))
	}
	return serdes.Ok(serdes.NewInputArray(n))
}

// ToObject never rejects keys: JSON member names are always text.
func (r *Reader) ToObject(v serdes.InputVar) serdes.Result[serdes.InputObject] {
	n := nodeOf(v.Node())
	if n == nil || !n.IsObject() {
		return serdes.Fail[serdes.InputObject](withOffset(serdes.ShapeMismatch("object"), n))
	}
	return serdes.Ok(serdes.NewInputObject(n))
}

func (r *Reader) ToVec(arr serdes.InputArray) []serdes.InputVar {
	n := nodeOf(arr.Node())
	out := make([]serdes.InputVar, len(n.Elems))
	for i, e := range n.Elems {
		out[i] = serdes.NewInputVar(e)
	}
	return out
}

func (r *Reader) ToMap(obj serdes.InputObject) []serdes.Member {
	n := nodeOf(obj.Node())
	out := make([]serdes.Member, len(n.Members))
	for i, m := range n.Members {
		out[i] = serdes.Member{Name: m.Key, Var: serdes.NewInputVar(m.Value)}
	}
	return out
}

func (r *Reader) ToFieldsArray(index serdes.IndexFunc, obj serdes.InputObject, size int) []serdes.Option[serdes.InputVar] {
	n := nodeOf(obj.Node())
	out := make([]serdes.Option[serdes.InputVar], size)
	for _, m := range n.Members {
		if f := index(m.Key); f >= 0 && f < size {
			out[f] = serdes.Some(serdes.NewInputVar(m.Value))
		}
	}
	return out
}

// Kind classifies numbers by the narrowest Go type that holds them.
func (r *Reader) Kind(v serdes.InputVar) serdes.NodeKind {
	if r.IsEmpty(v) {
		return serdes.NodeNull
	}
	n := nodeOf(v.Node())
	switch n.Kind {
	case eng.KindBeginObject:
		return serdes.NodeObject
	case eng.KindBeginArray:
		return serdes.NodeArray
	case eng.KindBool:
		return serdes.NodeBool
	case eng.KindString:
		return serdes.NodeString
	}
	if _, err := strconv.ParseInt(n.Text, 10, 64); err == nil {
		return serdes.NodeInt
	}
	if _, err := strconv.ParseUint(n.Text, 10, 64); err == nil {
		return serdes.NodeUint
	}
	return serdes.NodeFloat
}

var unmarshalerType = reflect.TypeFor[json.Unmarshaler]()

// HasCustomConstructor reports whether *t implements json.Unmarshaler.
func (r *Reader) HasCustomConstructor(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(unmarshalerType)
}

// UseCustomConstructor re-encodes the node and hands it to UnmarshalJSON.
func (r *Reader) UseCustomConstructor(v serdes.InputVar, dst any) error {
	raw := appendNode(nil, nodeOf(v.Node()))
	return dst.(json.Unmarshaler).UnmarshalJSON(raw)
}

func nodeOf(x any) *eng.Node {
	n, _ := x.(*eng.Node)
	return n
}

func kindName(n *eng.Node) string {
	switch n.Kind {
	case eng.KindBeginObject:
		return "object"
	case eng.KindBeginArray:
		return "array"
	default:
		return n.Kind.String()
	}
}

func withOffset(e *serdes.Error, n *eng.Node) *serdes.Error {
	if n != nil && n.Offset >= 0 {
		e.Offset = n.Offset
	}
	return e
}
