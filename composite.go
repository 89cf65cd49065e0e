package serdes

import (
	"reflect"
	"sort"
	"strconv"
)

// sliceParser decodes sequences into slices. A nil slice is written as null
// and null reads back as nil.
type sliceParser struct {
	t    reflect.Type
	elem Parser[reflect.Value]
}

func (p sliceParser) Read(r Reader, v InputVar) Result[reflect.Value] {
	if r.IsEmpty(v) {
		return Ok(reflect.Zero(p.t))
	}
	arr := r.ToArray(v)
	if !arr.OK() {
		return Forward[reflect.Value](arr)
	}
	elems := r.ToVec(arr.val)
	out := reflect.MakeSlice(p.t, len(elems), len(elems))
	if err := readElems(r, p.elem, elems, out); err != nil {
		return Fail[reflect.Value](err)
	}
	return Ok(out)
}

func (p sliceParser) Write(w Writer, v reflect.Value, parent Parent) {
	if v.IsNil() {
		parent.AddNull(w)
		return
	}
	writeElems(w, p.elem, v, parent)
}

func (sliceParser) Nullable() bool { return true }

// arrayParser decodes sequences into fixed-size arrays. The element count
// must match exactly.
type arrayParser struct {
	t    reflect.Type
	elem Parser[reflect.Value]
}

func (p arrayParser) Read(r Reader, v InputVar) Result[reflect.Value] {
	arr := r.ToArray(v)
	if !arr.OK() {
		return Forward[reflect.Value](arr)
	}
	elems := r.ToVec(arr.val)
	if len(elems) != p.t.Len() {
		return Fail[reflect.Value](Errorf(CodeShapeMismatch, "expected %d elements, got %d", p.t.Len(), len(elems)))
	}
	out := reflect.New(p.t).Elem()
	if err := readElems(r, p.elem, elems, out); err != nil {
		return Fail[reflect.Value](err)
	}
	return Ok(out)
}

func (p arrayParser) Write(w Writer, v reflect.Value, parent Parent) {
	writeElems(w, p.elem, v, parent)
}

func readElems(r Reader, elem Parser[reflect.Value], elems []InputVar, out reflect.Value) error {
	for i, e := range elems {
		res := elem.Read(r, e)
		if !res.OK() {
			return WithPathPrefix(res.err, strconv.Itoa(i))
		}
		out.Index(i).Set(res.val)
	}
	return nil
}

func writeElems(w Writer, elem Parser[reflect.Value], v reflect.Value, parent Parent) {
	n := v.Len()
	arr := parent.AddArray(w, n)
	for i := 0; i < n; i++ {
		elem.Write(w, v.Index(i), ArrayParent(&arr))
	}
	w.EndArray(&arr)
}

// mapParser decodes mappings into maps with string-kinded keys. Members are
// written in sorted key order so output is deterministic.
type mapParser struct {
	t    reflect.Type
	elem Parser[reflect.Value]
}

func (p mapParser) Read(r Reader, v InputVar) Result[reflect.Value] {
	if r.IsEmpty(v) {
		return Ok(reflect.Zero(p.t))
	}
	obj := r.ToObject(v)
	if !obj.OK() {
		return Forward[reflect.Value](obj)
	}
	members := r.ToMap(obj.val)
	out := reflect.MakeMapWithSize(p.t, len(members))
	for _, m := range members {
		res := p.elem.Read(r, m.Var)
		if !res.OK() {
			return Fail[reflect.Value](WithPathPrefix(res.err, m.Name))
		}
		key := reflect.New(p.t.Key()).Elem()
		key.SetString(m.Name)
		out.SetMapIndex(key, res.val)
	}
	return Ok(out)
}

func (p mapParser) Write(w Writer, v reflect.Value, parent Parent) {
	if v.IsNil() {
		parent.AddNull(w)
		return
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	obj := parent.AddObject(w, len(keys))
	for _, k := range keys {
		p.elem.Write(w, v.MapIndex(k), ObjectParent(k.String(), &obj))
	}
	w.EndObject(&obj)
}

func (mapParser) Nullable() bool { return true }

// SliceOf builds the Parser for []T from the Parser for T.
func SliceOf[T any](elem Parser[T]) Parser[[]T] {
	return typed[[]T](sliceParser{t: reflect.TypeFor[[]T](), elem: erase(elem)})
}

// MapOf builds the Parser for map[string]V from the Parser for V.
func MapOf[V any](elem Parser[V]) Parser[map[string]V] {
	return typed[map[string]V](mapParser{t: reflect.TypeFor[map[string]V](), elem: erase(elem)})
}

// ArrayOf builds the Parser for the fixed-size array type A whose elements
// are decoded by elem. It panics when A is not an array of E.
func ArrayOf[A, E any](elem Parser[E]) Parser[A] {
	t := reflect.TypeFor[A]()
	if t.Kind() != reflect.Array || t.Elem() != reflect.TypeFor[E]() {
		panic("serdes.ArrayOf: " + t.String() + " is not an array of " + reflect.TypeFor[E]().String())
	}
	return typed[A](arrayParser{t: t, elem: erase(elem)})
}
