package cbor

import (
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/reoring/serdes"
)

// item is the node a CBOR InputVar holds: a data item as decoded into any.
type item struct{ v any }

// object is the node of an InputObject: text-keyed members in key order.
type object struct {
	members []serdes.Member
}

// Reader implements serdes.Reader over data items produced by Parse.
//
// Scalars are strictly typed unless ReadOpt.CoerceStrings is set. Maps carry
// no member order, so members are visited sorted by key.
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
	o := obj.Node().(*object)
	i := sort.Search(len(o.members), func(i int) bool { return o.members[i].Name >= name })
	if i < len(o.members) && o.members[i].Name == name {
		return serdes.Ok(o.members[i].Var)
	}
	return serdes.Fail[serdes.InputVar](serdes.MissingField(name))
}

func (r *Reader) IsEmpty(v serdes.InputVar) bool {
	return v.IsZero() || valueOf(v) == nil
}

func (r *Reader) ToBasic(v serdes.InputVar, kind serdes.ScalarKind) serdes.Result[serdes.Scalar] {
	s, err := r.scalar(valueOf(v), kind)
	if err != nil {
		return serdes.Fail[serdes.Scalar](serdes.Coercion(err))
	}
	return serdes.Ok(s)
}

func (r *Reader) scalar(x any, kind serdes.ScalarKind) (serdes.Scalar, error) {
	switch c := x.(type) {
	case string:
		if kind == serdes.ScalarString {
			return serdes.StringScalar(c), nil
		}
		if r.opt.CoerceStrings {
			return fromText(c, kind)
		}
	case []byte:
		if kind == serdes.ScalarString {
			return serdes.StringScalar(string(c)), nil
		}
	case bool:
		if kind == serdes.ScalarBool {
			return serdes.BoolScalar(c), nil
		}
	case uint64:
		if isNumeric(kind) {
			return serdes.UintScalar(c), nil
		}
	case int64:
		if isNumeric(kind) {
			return serdes.IntScalar(c), nil
		}
	case float64:
		if isNumeric(kind) {
			return serdes.FloatScalar(c), nil
		}
	case float32:
		if isNumeric(kind) {
			return serdes.FloatScalar(float64(c)), nil
		}
	}
	return serdes.Scalar{}, errors.Newf("cannot convert %s to %s", describe(x), kind)
}

func isNumeric(k serdes.ScalarKind) bool {
	return k == serdes.ScalarInt || k == serdes.ScalarUint || k == serdes.ScalarFloat
}

func fromText(text string, kind serdes.ScalarKind) (serdes.Scalar, error) {
	switch kind {
	case serdes.ScalarBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to bool", text)
		}
		return serdes.BoolScalar(b), nil
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
	arr, ok := valueOf(v).([]any)
	if !ok {
		return serdes.Fail[serdes.InputArray](serdes.ShapeMismatch("array"))
	}
	return serdes.Ok(serdes.NewInputArray(arr))
}

func (r *Reader) ToObject(v serdes.InputVar) serdes.Result[serdes.InputObject] {
	m, ok := valueOf(v).(map[any]any)
	if !ok {
		return serdes.Fail[serdes.InputObject](serdes.ShapeMismatch("map"))
	}
	o := &object{members: make([]serdes.Member, 0, len(m))}
	for k, val := range m {
		name, ok := k.(string)
		if !ok {
			if r.opt.Keys == serdes.KeyReject {
				return serdes.Fail[serdes.InputObject](serdes.Errorf(serdes.CodeShapeMismatch, "map key of type %T is not text", k))
			}
			continue
		}
		o.members = append(o.members, serdes.Member{Name: name, Var: serdes.NewInputVar(item{val})})
	}
	sort.Slice(o.members, func(i, j int) bool { return o.members[i].Name < o.members[j].Name })
	return serdes.Ok(serdes.NewInputObject(o))
}

func (r *Reader) ToVec(arr serdes.InputArray) []serdes.InputVar {
	elems := arr.Node().([]any)
	out := make([]serdes.InputVar, len(elems))
	for i, e := range elems {
		out[i] = serdes.NewInputVar(item{e})
	}
	return out
}

func (r *Reader) ToMap(obj serdes.InputObject) []serdes.Member {
	return append([]serdes.Member(nil), obj.Node().(*object).members...)
}

func (r *Reader) ToFieldsArray(index serdes.IndexFunc, obj serdes.InputObject, size int) []serdes.Option[serdes.InputVar] {
	return serdes.FieldsFromMembers(index, obj.Node().(*object).members, size)
}

func (r *Reader) Kind(v serdes.InputVar) serdes.NodeKind {
	switch c := valueOf(v).(type) {
	case nil:
		return serdes.NodeNull
	case bool:
		return serdes.NodeBool
	case int64:
		return serdes.NodeInt
	case uint64:
		if c <= math.MaxInt64 {
			return serdes.NodeInt
		}
		return serdes.NodeUint
	case float32, float64:
		return serdes.NodeFloat
	case []any:
		return serdes.NodeArray
	case map[any]any:
		return serdes.NodeObject
	default:
		return serdes.NodeString
	}
}

var unmarshalerType = reflect.TypeFor[cbor.Unmarshaler]()

// HasCustomConstructor reports whether *t implements cbor.Unmarshaler.
func (r *Reader) HasCustomConstructor(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(unmarshalerType)
}

// UseCustomConstructor re-encodes the data item and hands it to
// UnmarshalCBOR.
func (r *Reader) UseCustomConstructor(v serdes.InputVar, dst any) error {
	var raw any
	if it, ok := v.Node().(item); ok {
		raw = it.v
	}
	data, err := encMode.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "serdes/cbor: re-encode")
	}
	return dst.(cbor.Unmarshaler).UnmarshalCBOR(data)
}

// valueOf returns the data item of v with tags stripped.
func valueOf(v serdes.InputVar) any {
	it, _ := v.Node().(item)
	return untag(it.v)
}

func untag(x any) any {
	for {
		t, ok := x.(cbor.Tag)
		if !ok {
			return x
		}
		x = t.Content
	}
}

func describe(x any) string {
	switch x.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[any]any:
		return "map"
	case []byte:
		return "byte string"
	default:
		return reflect.TypeOf(x).String()
	}
}
