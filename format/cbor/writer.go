package cbor

import (
	"github.com/cockroachdb/errors"

	"github.com/reoring/serdes"
)

type entry struct {
	key   string
	value any
}

type frame struct {
	start  int // Offset of the first child in Writer.stack.
	object bool
	key    string
}

// Writer implements serdes.Writer with a flat value stack in the manner of a
// flexbuffers builder: children accumulate on the stack and closing a
// container folds everything above its start offset into one value.
// Containers must be closed in LIFO order; misuse panics.
type Writer struct {
	opt     serdes.WriteOpt
	stack   []entry
	open    []frame
	root    any
	hasRoot bool
}

var _ serdes.Writer = (*Writer)(nil)

// NewWriter returns an empty Writer. Write options do not affect the binary
// encoding.
func NewWriter(opts ...serdes.WriteOpt) *Writer {
	return &Writer{opt: serdes.LastWriteOpt(opts)}
}

// Bytes encodes the document. It fails when nothing was written or a
// container is still open.
func (w *Writer) Bytes() ([]byte, error) {
	if !w.hasRoot {
		return nil, errors.New("serdes/cbor: nothing written")
	}
	if len(w.open) > 0 {
		return nil, errors.Newf("serdes/cbor: %d container(s) still open", len(w.open))
	}
	b, err := encMode.Marshal(w.root)
	if err != nil {
		return nil, errors.Wrap(err, "serdes/cbor: encode")
	}
	return b, nil
}

func (w *Writer) beginRoot() {
	if w.hasRoot {
		panic("serdes/cbor: root written twice")
	}
	w.hasRoot = true
}

// check verifies that start/depth denote the innermost open container.
func (w *Writer) check(start int, node any, object bool) {
	depth, _ := node.(int)
	n := len(w.open)
	if n == 0 || depth != n-1 || w.open[n-1].start != start || w.open[n-1].object != object {
		panic("serdes/cbor: write to a container that is not the innermost open one")
	}
}

func (w *Writer) startVector(key string) serdes.OutputArray {
	w.open = append(w.open, frame{start: len(w.stack), key: key})
	return serdes.NewOutputArray(len(w.stack), len(w.open)-1)
}

func (w *Writer) startMap(key string) serdes.OutputObject {
	w.open = append(w.open, frame{start: len(w.stack), object: true, key: key})
	return serdes.NewOutputObject(len(w.stack), len(w.open)-1)
}

// finish pops the innermost frame and pushes v in its place.
func (w *Writer) finish(v any) {
	f := w.open[len(w.open)-1]
	w.stack = w.stack[:f.start]
	w.open = w.open[:len(w.open)-1]
	if len(w.open) == 0 {
		w.root = v
		return
	}
	w.stack = append(w.stack, entry{key: f.key, value: v})
}

func (w *Writer) ArrayAsRoot(size int) serdes.OutputArray {
	w.beginRoot()
	return w.startVector("")
}

func (w *Writer) ObjectAsRoot(size int) serdes.OutputObject {
	w.beginRoot()
	return w.startMap("")
}

func (w *Writer) NullAsRoot() serdes.OutputVar {
	w.beginRoot()
	w.root = nil
	return serdes.NewOutputVar(nil)
}

func (w *Writer) ValueAsRoot(v serdes.Scalar) serdes.OutputVar {
	w.beginRoot()
	w.root = v.Interface()
	return serdes.NewOutputVar(w.root)
}

func (w *Writer) AddArrayToArray(size int, parent *serdes.OutputArray) serdes.OutputArray {
	w.check(parent.Start(), parent.Node(), false)
	return w.startVector("")
}

func (w *Writer) AddArrayToObject(name string, size int, parent *serdes.OutputObject) serdes.OutputArray {
	w.check(parent.Start(), parent.Node(), true)
	return w.startVector(name)
}

func (w *Writer) AddObjectToArray(size int, parent *serdes.OutputArray) serdes.OutputObject {
	w.check(parent.Start(), parent.Node(), false)
	return w.startMap("")
}

func (w *Writer) AddObjectToObject(name string, size int, parent *serdes.OutputObject) serdes.OutputObject {
	w.check(parent.Start(), parent.Node(), true)
	return w.startMap(name)
}

func (w *Writer) AddValueToArray(v serdes.Scalar, parent *serdes.OutputArray) serdes.OutputVar {
	w.check(parent.Start(), parent.Node(), false)
	w.stack = append(w.stack, entry{value: v.Interface()})
	return serdes.NewOutputVar(v.Interface())
}

func (w *Writer) AddValueToObject(name string, v serdes.Scalar, parent *serdes.OutputObject) serdes.OutputVar {
	w.check(parent.Start(), parent.Node(), true)
	w.stack = append(w.stack, entry{key: name, value: v.Interface()})
	return serdes.NewOutputVar(v.Interface())
}

func (w *Writer) AddNullToArray(parent *serdes.OutputArray) serdes.OutputVar {
	w.check(parent.Start(), parent.Node(), false)
	w.stack = append(w.stack, entry{})
	return serdes.NewOutputVar(nil)
}

func (w *Writer) AddNullToObject(name string, parent *serdes.OutputObject) serdes.OutputVar {
	w.check(parent.Start(), parent.Node(), true)
	w.stack = append(w.stack, entry{key: name})
	return serdes.NewOutputVar(nil)
}

func (w *Writer) EndArray(arr *serdes.OutputArray) {
	w.check(arr.Start(), arr.Node(), false)
	children := w.stack[arr.Start():]
	vec := make([]any, len(children))
	for i, e := range children {
		vec[i] = e.value
	}
	w.finish(vec)
}

func (w *Writer) EndObject(obj *serdes.OutputObject) {
	w.check(obj.Start(), obj.Node(), true)
	children := w.stack[obj.Start():]
	m := make(map[string]any, len(children))
	for _, e := range children {
		m[e.key] = e.value
	}
	w.finish(m)
}
