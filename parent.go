package serdes

type parentKind uint8

const (
	parentRoot parentKind = iota
	parentArray
	parentObject
)

// Parent tells a Parser where the value it writes goes: the document root, the
// next element of an open array, or a named member of an open object. It
// removes the root/array/object case analysis from every Parser.
type Parent struct {
	kind parentKind
	name string
	arr  *OutputArray
	obj  *OutputObject
}

// RootParent writes the value as the document root.
func RootParent() Parent { return Parent{kind: parentRoot} }

// ArrayParent appends the value to arr.
func ArrayParent(arr *OutputArray) Parent { return Parent{kind: parentArray, arr: arr} }

// ObjectParent adds the value to obj under name.
func ObjectParent(name string, obj *OutputObject) Parent {
	return Parent{kind: parentObject, name: name, obj: obj}
}

// AddNull inserts a null marker.
func (p Parent) AddNull(w Writer) OutputVar {
	switch p.kind {
	case parentArray:
		return w.AddNullToArray(p.arr)
	case parentObject:
		return w.AddNullToObject(p.name, p.obj)
	default:
		return w.NullAsRoot()
	}
}

// AddValue inserts a leaf.
func (p Parent) AddValue(w Writer, v Scalar) OutputVar {
	switch p.kind {
	case parentArray:
		return w.AddValueToArray(v, p.arr)
	case parentObject:
		return w.AddValueToObject(p.name, v, p.obj)
	default:
		return w.ValueAsRoot(v)
	}
}

// AddArray opens a sequence with a size hint. The caller closes it with
// Writer.EndArray.
func (p Parent) AddArray(w Writer, size int) OutputArray {
	switch p.kind {
	case parentArray:
		return w.AddArrayToArray(size, p.arr)
	case parentObject:
		return w.AddArrayToObject(p.name, size, p.obj)
	default:
		return w.ArrayAsRoot(size)
	}
}

// AddObject opens a mapping with a size hint. The caller closes it with
// Writer.EndObject.
func (p Parent) AddObject(w Writer, size int) OutputObject {
	switch p.kind {
	case parentArray:
		return w.AddObjectToArray(size, p.arr)
	case parentObject:
		return w.AddObjectToObject(p.name, size, p.obj)
	default:
		return w.ObjectAsRoot(size)
	}
}
