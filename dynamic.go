package serdes

import (
	"reflect"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// Object is the dynamic decoding of a mapping. Unlike map[string]any it keeps
// document order.
type Object []Pair

// Pair is one member of an Object.
type Pair struct {
	Key   string
	Value any
}

// Get returns the value of the last member named key.
func (o Object) Get(key string) (any, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Keys returns member names in document order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, p := range o {
		keys[i] = p.Key
	}
	return keys
}

// dynamicParser decodes into any without a target type. Nodes map to nil,
// bool, int64, uint64, float64, string, []any and Object. The Reader must
// implement Classifier.
type dynamicParser struct {
	reg *Registry
}

// Dynamic returns the Parser for untyped values. Writing a value whose
// dynamic type is not one of the decoded forms falls back to the default
// registry's Parser for that type.
func Dynamic() Parser[any] { return dynamicParser{reg: DefaultRegistry} }

func (d dynamicParser) Nullable() bool { return true }

func (d dynamicParser) Read(r Reader, v InputVar) Result[any] {
	if r.IsEmpty(v) {
		return Ok[any](nil)
	}
	c, ok := r.(Classifier)
	if !ok {
		return Fail[any](Errorf(CodeUnsupportedType, "reader %T cannot classify nodes", r))
	}
	switch c.Kind(v) {
	case NodeNull:
		return Ok[any](nil)
	case NodeBool:
		return toAny(ToBasic[bool](r, v))
	case NodeInt:
		return toAny(ToBasic[int64](r, v))
	case NodeUint:
		return toAny(ToBasic[uint64](r, v))
	case NodeFloat:
		return toAny(ToBasic[float64](r, v))
	case NodeString:
		return toAny(ToBasic[string](r, v))
	case NodeArray:
		arr := r.ToArray(v)
		if !arr.OK() {
			return Forward[any](arr)
		}
		elems := r.ToVec(arr.val)
		out := make([]any, len(elems))
		for i, e := range elems {
			res := d.Read(r, e)
			if !res.OK() {
				return Fail[any](WithPathPrefix(res.err, strconv.Itoa(i)))
			}
			out[i] = res.val
		}
		return Ok[any](out)
	default:
		obj := r.ToObject(v)
		if !obj.OK() {
			return Forward[any](obj)
		}
		members := r.ToMap(obj.val)
		out := make(Object, 0, len(members))
		for _, m := range members {
			res := d.Read(r, m.Var)
			if !res.OK() {
				return Fail[any](WithPathPrefix(res.err, m.Name))
			}
			out = append(out, Pair{Key: m.Name, Value: res.val})
		}
		return Ok[any](out)
	}
}

func toAny[T any](r Result[T]) Result[any] {
	return Transform(r, func(v T) any { return v })
}

func (d dynamicParser) Write(w Writer, v any, parent Parent) {
	switch x := v.(type) {
	case nil:
		parent.AddNull(w)
	case Object:
		obj := parent.AddObject(w, len(x))
		for _, p := range x {
			d.Write(w, p.Value, ObjectParent(p.Key, &obj))
		}
		w.EndObject(&obj)
	case []any:
		arr := parent.AddArray(w, len(x))
		for _, e := range x {
			d.Write(w, e, ArrayParent(&arr))
		}
		w.EndArray(&arr)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := parent.AddObject(w, len(keys))
		for _, k := range keys {
			d.Write(w, x[k], ObjectParent(k, &obj))
		}
		w.EndObject(&obj)
	case string:
		parent.AddValue(w, StringScalar(x))
	case bool:
		parent.AddValue(w, BoolScalar(x))
	case int64:
		parent.AddValue(w, IntScalar(x))
	case uint64:
		parent.AddValue(w, UintScalar(x))
	case float64:
		parent.AddValue(w, FloatScalar(x))
	default:
		t := reflect.TypeOf(v)
		p, err := d.reg.lookup(t)
		if err != nil {
			L().Warn("serdes: no parser for dynamic value, writing null", zap.Stringer("type", t), zap.Error(err))
			parent.AddNull(w)
			return
		}
		rv := reflect.New(t).Elem()
		rv.Set(reflect.ValueOf(v))
		p.Write(w, rv, parent)
	}
}
