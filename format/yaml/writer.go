package yaml

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/reoring/serdes"
)

// Writer implements serdes.Writer by building a yaml.Node tree. Containers
// must be closed in LIFO order; misuse panics.
type Writer struct {
	opt   serdes.WriteOpt
	root  *yaml.Node
	stack []*yaml.Node
}

var _ serdes.Writer = (*Writer)(nil)

// NewWriter returns an empty Writer.
func NewWriter(opts ...serdes.WriteOpt) *Writer {
	return &Writer{opt: serdes.LastWriteOpt(opts)}
}

// Root returns the built document, nil before anything was written.
func (w *Writer) Root() *yaml.Node { return w.root }

// Bytes encodes the document. It fails when nothing was written or a
// container is still open.
func (w *Writer) Bytes() ([]byte, error) {
	if w.root == nil {
		return nil, errors.New("serdes/yaml: nothing written")
	}
	if len(w.stack) > 0 {
		return nil, errors.Newf("serdes/yaml: %d container(s) still open", len(w.stack))
	}
	indent := w.opt.Indent
	if indent <= 0 {
		indent = 2
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(w.root); err != nil {
		return nil, errors.Wrap(err, "serdes/yaml: encode")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "serdes/yaml: encode")
	}
	return buf.Bytes(), nil
}

func (w *Writer) setRoot(n *yaml.Node) {
	if w.root != nil {
		panic("serdes/yaml: root written twice")
	}
	w.root = n
}

func (w *Writer) open(n *yaml.Node) int {
	w.stack = append(w.stack, n)
	return len(w.stack) - 1
}

func (w *Writer) top(start int, want yaml.Kind) *yaml.Node {
	if start != len(w.stack)-1 || w.stack[start].Kind != want {
		panic("serdes/yaml: write to a container that is not the innermost open one")
	}
	return w.stack[start]
}

func (w *Writer) close(start int, want yaml.Kind) {
	w.top(start, want)
	w.stack = w.stack[:start]
}

func (w *Writer) ArrayAsRoot(size int) serdes.OutputArray {
	n := seqNode(size)
	w.setRoot(n)
	return serdes.NewOutputArray(w.open(n), n)
}

func (w *Writer) ObjectAsRoot(size int) serdes.OutputObject {
	n := mapNode(size)
	w.setRoot(n)
	return serdes.NewOutputObject(w.open(n), n)
}

func (w *Writer) NullAsRoot() serdes.OutputVar {
	n := nullNode()
	w.setRoot(n)
	return serdes.NewOutputVar(n)
}

func (w *Writer) ValueAsRoot(v serdes.Scalar) serdes.OutputVar {
	n := scalarNode(v)
	w.setRoot(n)
	return serdes.NewOutputVar(n)
}

func (w *Writer) AddArrayToArray(size int, parent *serdes.OutputArray) serdes.OutputArray {
	n := seqNode(size)
	w.appendTo(parent, n)
	return serdes.NewOutputArray(w.open(n), n)
}

func (w *Writer) AddArrayToObject(name string, size int, parent *serdes.OutputObject) serdes.OutputArray {
	n := seqNode(size)
	w.addTo(parent, name, n)
	return serdes.NewOutputArray(w.open(n), n)
}

func (w *Writer) AddObjectToArray(size int, parent *serdes.OutputArray) serdes.OutputObject {
	n := mapNode(size)
	w.appendTo(parent, n)
	return serdes.NewOutputObject(w.open(n), n)
}

func (w *Writer) AddObjectToObject(name string, size int, parent *serdes.OutputObject) serdes.OutputObject {
	n := mapNode(size)
	w.addTo(parent, name, n)
	return serdes.NewOutputObject(w.open(n), n)
}

func (w *Writer) AddValueToArray(v serdes.Scalar, parent *serdes.OutputArray) serdes.OutputVar {
	n := scalarNode(v)
	w.appendTo(parent, n)
	return serdes.NewOutputVar(n)
}

func (w *Writer) AddValueToObject(name string, v serdes.Scalar, parent *serdes.OutputObject) serdes.OutputVar {
	n := scalarNode(v)
	w.addTo(parent, name, n)
	return serdes.NewOutputVar(n)
}

func (w *Writer) AddNullToArray(parent *serdes.OutputArray) serdes.OutputVar {
	n := nullNode()
	w.appendTo(parent, n)
	return serdes.NewOutputVar(n)
}

func (w *Writer) AddNullToObject(name string, parent *serdes.OutputObject) serdes.OutputVar {
	n := nullNode()
	w.addTo(parent, name, n)
	return serdes.NewOutputVar(n)
}

func (w *Writer) EndArray(arr *serdes.OutputArray)   { w.close(arr.Start(), yaml.SequenceNode) }
func (w *Writer) EndObject(obj *serdes.OutputObject) { w.close(obj.Start(), yaml.MappingNode) }

func (w *Writer) appendTo(parent *serdes.OutputArray, n *yaml.Node) {
	seq := w.top(parent.Start(), yaml.SequenceNode)
	seq.Content = append(seq.Content, n)
}

func (w *Writer) addTo(parent *serdes.OutputObject, name string, n *yaml.Node) {
	m := w.top(parent.Start(), yaml.MappingNode)
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, n)
}

func seqNode(size int) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, size)}
}

func mapNode(size int) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*size)}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: nullTag, Value: "null"}
}

func scalarNode(v serdes.Scalar) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch v.Kind() {
	case serdes.ScalarString:
		n.Tag, n.Value = "!!str", v.AsString()
	case serdes.ScalarBool:
		n.Tag, n.Value = "!!bool", strconv.FormatBool(v.AsBool())
	case serdes.ScalarInt:
		n.Tag, n.Value = "!!int", strconv.FormatInt(v.AsInt(), 10)
	case serdes.ScalarUint:
		n.Tag, n.Value = "!!int", strconv.FormatUint(v.AsUint(), 10)
	case serdes.ScalarFloat:
		n.Tag, n.Value = "!!float", formatFloat(v.AsFloat())
	default:
		panic("serdes/yaml: invalid scalar")
	}
	return n
}

// formatFloat renders f so that it resolves back to a float.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
