package json

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/reoring/serdes"
	eng "github.com/reoring/serdes/internal/engine"
)

type frame struct {
	object bool
	count  int
}

// Writer implements serdes.Writer by streaming JSON text into a buffer.
// Containers must be closed in LIFO order; misuse panics.
type Writer struct {
	opt   serdes.WriteOpt
	buf   bytes.Buffer
	stack []frame
	root  bool
}

var _ serdes.Writer = (*Writer)(nil)

// NewWriter returns an empty Writer.
func NewWriter(opts ...serdes.WriteOpt) *Writer {
	return &Writer{opt: serdes.LastWriteOpt(opts)}
}

// Bytes returns the document, indented when WriteOpt.Indent is positive. It
// fails when nothing was written or a container is still open.
func (w *Writer) Bytes() ([]byte, error) {
	if !w.root {
		return nil, errors.New("serdes/json: nothing written")
	}
	if len(w.stack) > 0 {
		return nil, errors.Newf("serdes/json: %d container(s) still open", len(w.stack))
	}
	if w.opt.Indent <= 0 {
		return append([]byte(nil), w.buf.Bytes()...), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, w.buf.Bytes(), "", strings.Repeat(" ", w.opt.Indent)); err != nil {
		return nil, errors.Wrap(err, "serdes/json: indent")
	}
	return out.Bytes(), nil
}

func (w *Writer) beginRoot() {
	if w.root {
		panic("serdes/json: root written twice")
	}
	w.root = true
}

// element prepares the buffer for the next element of the array at start.
func (w *Writer) element(start int) {
	f := w.top(start, false)
	if f.count > 0 {
		w.buf.WriteByte(',')
	}
	f.count++
}

// member prepares the buffer for the member name of the object at start.
func (w *Writer) member(start int, name string) {
	f := w.top(start, true)
	if f.count > 0 {
		w.buf.WriteByte(',')
	}
	f.count++
	w.writeString(name)
	w.buf.WriteByte(':')
}

func (w *Writer) top(start int, object bool) *frame {
	if start != len(w.stack)-1 || w.stack[start].object != object {
		panic("serdes/json: write to a container that is not the innermost open one")
	}
	return &w.stack[start]
}

func (w *Writer) openArray() serdes.OutputArray {
	w.buf.WriteByte('[')
	w.stack = append(w.stack, frame{})
	return serdes.NewOutputArray(len(w.stack)-1, nil)
}

func (w *Writer) openObject() serdes.OutputObject {
	w.buf.WriteByte('{')
	w.stack = append(w.stack, frame{object: true})
	return serdes.NewOutputObject(len(w.stack)-1, nil)
}

func (w *Writer) ArrayAsRoot(size int) serdes.OutputArray {
	w.beginRoot()
	return w.openArray()
}

func (w *Writer) ObjectAsRoot(size int) serdes.OutputObject {
	w.beginRoot()
	return w.openObject()
}

func (w *Writer) NullAsRoot() serdes.OutputVar {
	w.beginRoot()
	w.buf.WriteString("null")
	return serdes.NewOutputVar(nil)
}

func (w *Writer) ValueAsRoot(v serdes.Scalar) serdes.OutputVar {
	w.beginRoot()
	w.writeScalar(v)
	return serdes.NewOutputVar(nil)
}

func (w *Writer) AddArrayToArray(size int, parent *serdes.OutputArray) serdes.OutputArray {
	w.element(parent.Start())
	return w.openArray()
}

func (w *Writer) AddArrayToObject(name string, size int, parent *serdes.OutputObject) serdes.OutputArray {
	w.member(parent.Start(), name)
	return w.openArray()
}

func (w *Writer) AddObjectToArray(size int, parent *serdes.OutputArray) serdes.OutputObject {
	w.element(parent.Start())
	return w.openObject()
}

func (w *Writer) AddObjectToObject(name string, size int, parent *serdes.OutputObject) serdes.OutputObject {
	w.member(parent.Start(), name)
	return w.openObject()
}

func (w *Writer) AddValueToArray(v serdes.Scalar, parent *serdes.OutputArray) serdes.OutputVar {
	w.element(parent.Start())
	w.writeScalar(v)
	return serdes.NewOutputVar(nil)
}

func (w *Writer) AddValueToObject(name string, v serdes.Scalar, parent *serdes.OutputObject) serdes.OutputVar {
	w.member(parent.Start(), name)
	w.writeScalar(v)
	return serdes.NewOutputVar(nil)
}

func (w *Writer) AddNullToArray(parent *serdes.OutputArray) serdes.OutputVar {
	w.element(parent.Start())
	w.buf.WriteString("null")
	return serdes.NewOutputVar(nil)
}

func (w *Writer) AddNullToObject(name string, parent *serdes.OutputObject) serdes.OutputVar {
	w.member(parent.Start(), name)
	w.buf.WriteString("null")
	return serdes.NewOutputVar(nil)
}

func (w *Writer) EndArray(arr *serdes.OutputArray) {
	w.top(arr.Start(), false)
	w.stack = w.stack[:arr.Start()]
	w.buf.WriteByte(']')
}

func (w *Writer) EndObject(obj *serdes.OutputObject) {
	w.top(obj.Start(), true)
	w.stack = w.stack[:obj.Start()]
	w.buf.WriteByte('}')
}

func (w *Writer) writeString(s string) {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		// Marshalling a string cannot fail.
		panic(err)
	}
	w.buf.Write(b)
}

func (w *Writer) writeScalar(v serdes.Scalar) {
	switch v.Kind() {
	case serdes.ScalarString:
		w.writeString(v.AsString())
	case serdes.ScalarBool:
		w.buf.WriteString(strconv.FormatBool(v.AsBool()))
	case serdes.ScalarInt:
		w.buf.WriteString(strconv.FormatInt(v.AsInt(), 10))
	case serdes.ScalarUint:
		w.buf.WriteString(strconv.FormatUint(v.AsUint(), 10))
	case serdes.ScalarFloat:
		w.buf.Write(appendFloat(nil, v.AsFloat()))
	default:
		panic("serdes/json: invalid scalar")
	}
}

// appendFloat formats like encoding/json. NaN and infinities have no JSON
// form and are written as null.
func appendFloat(b []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(b, "null"...)
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b = strconv.AppendFloat(b, f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return b
}

// appendNode re-encodes a parsed node compactly.
func appendNode(b []byte, n *eng.Node) []byte {
	if n == nil {
		return append(b, "null"...)
	}
	switch n.Kind {
	case eng.KindBeginObject:
		b = append(b, '{')
		for i, m := range n.Members {
			if i > 0 {
				b = append(b, ',')
			}
			k, _ := json.MarshalNoEscape(m.Key)
			b = append(b, k...)
			b = append(b, ':')
			b = appendNode(b, m.Value)
		}
		return append(b, '}')
	case eng.KindBeginArray:
		b = append(b, '[')
		for i, e := range n.Elems {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendNode(b, e)
		}
		return append(b, ']')
	case eng.KindString:
		s, _ := json.MarshalNoEscape(n.Text)
		return append(b, s...)
	case eng.KindNumber:
		return append(b, n.Text...)
	case eng.KindBool:
		return strconv.AppendBool(b, n.Bool)
	default:
		return append(b, "null"...)
	}
}
