package serdes_test

import (
	"fmt"

	"github.com/reoring/serdes"
)

// recorder is a Writer that logs every call, for asserting call order.
type recorder struct {
	calls []string
	next  int
}

func (r *recorder) log(format string, args ...any) { r.calls = append(r.calls, fmt.Sprintf(format, args...)) }

func (r *recorder) open() int {
	r.next++
	return r.next
}

func (r *recorder) ArrayAsRoot(size int) serdes.OutputArray {
	id := r.open()
	r.log("array-root(%d)#%d", size, id)
	return serdes.NewOutputArray(id, nil)
}

func (r *recorder) ObjectAsRoot(size int) serdes.OutputObject {
	id := r.open()
	r.log("object-root(%d)#%d", size, id)
	return serdes.NewOutputObject(id, nil)
}

func (r *recorder) NullAsRoot() serdes.OutputVar {
	r.log("null-root")
	return serdes.NewOutputVar(nil)
}

func (r *recorder) ValueAsRoot(v serdes.Scalar) serdes.OutputVar {
	r.log("value-root(%s)", v)
	return serdes.NewOutputVar(nil)
}

func (r *recorder) AddArrayToArray(size int, parent *serdes.OutputArray) serdes.OutputArray {
	id := r.open()
	r.log("array(%d)#%d in #%d", size, id, parent.Start())
	return serdes.NewOutputArray(id, nil)
}

func (r *recorder) AddArrayToObject(name string, size int, parent *serdes.OutputObject) serdes.OutputArray {
	id := r.open()
	r.log("array %s(%d)#%d in #%d", name, size, id, parent.Start())
	return serdes.NewOutputArray(id, nil)
}

func (r *recorder) AddObjectToArray(size int, parent *serdes.OutputArray) serdes.OutputObject {
	id := r.open()
	r.log("object(%d)#%d in #%d", size, id, parent.Start())
	return serdes.NewOutputObject(id, nil)
}

func (r *recorder) AddObjectToObject(name string, size int, parent *serdes.OutputObject) serdes.OutputObject {
	id := r.open()
	r.log("object %s(%d)#%d in #%d", name, size, id, parent.Start())
	return serdes.NewOutputObject(id, nil)
}

func (r *recorder) AddValueToArray(v serdes.Scalar, parent *serdes.OutputArray) serdes.OutputVar {
	r.log("value(%s) in #%d", v, parent.Start())
	return serdes.NewOutputVar(nil)
}

func (r *recorder) AddValueToObject(name string, v serdes.Scalar, parent *serdes.OutputObject) serdes.OutputVar {
	r.log("value %s(%s) in #%d", name, v, parent.Start())
	return serdes.NewOutputVar(nil)
}

func (r *recorder) AddNullToArray(parent *serdes.OutputArray) serdes.OutputVar {
	r.log("null in #%d", parent.Start())
	return serdes.NewOutputVar(nil)
}

func (r *recorder) AddNullToObject(name string, parent *serdes.OutputObject) serdes.OutputVar {
	r.log("null %s in #%d", name, parent.Start())
	return serdes.NewOutputVar(nil)
}

func (r *recorder) EndArray(arr *serdes.OutputArray)   { r.log("end-array#%d", arr.Start()) }
func (r *recorder) EndObject(obj *serdes.OutputObject) { r.log("end-object#%d", obj.Start()) }
