package yaml

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/reoring/serdes"
)

// Reader implements serdes.Reader over *yaml.Node trees produced by Parse.
//
// Scalars are converted from their text: a quoted "42" reads as the integer
// 42 and "true" reads as a boolean, whatever the node's tag.
type Reader struct {
	opt serdes.ReadOpt
}

var (
	_ serdes.Reader     = (*Reader)(nil)
	_ serdes.Classifier = (*Reader)(nil)
)

// NewReader returns a Reader. Only the Keys policy of opts is consulted; the
// other options apply to Parse.
func NewReader(opts ...serdes.ReadOpt) *Reader {
	return &Reader{opt: serdes.LastReadOpt(opts)}
}

func (r *Reader) GetField(name string, obj serdes.InputObject) serdes.Result[serdes.InputVar] {
	n := nodeOf(obj.Node())
	// Later members win, as with yaml.Unmarshal into a map.
	for i := len(n.Content) - 2; i >= 0; i -= 2 {
		k := resolve(n.Content[i])
		if k.Kind == yaml.ScalarNode && k.Value == name {
			return serdes.Ok(serdes.NewInputVar(n.Content[i+1]))
		}
	}
	return serdes.Fail[serdes.InputVar](serdes.MissingField(name))
}

func (r *Reader) IsEmpty(v serdes.InputVar) bool {
	if v.IsZero() {
		return true
	}
	n := resolve(nodeOf(v.Node()))
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == nullTag)
}

func (r *Reader) ToBasic(v serdes.InputVar, kind serdes.ScalarKind) serdes.Result[serdes.Scalar] {
	n := resolve(nodeOf(v.Node()))
	if n == nil || n.Kind != yaml.ScalarNode {
		return serdes.Fail[serdes.Scalar](coercionAt(n, errors.Newf("cannot convert %s to %s", describe(n), kind)))
	}
	if n.ShortTag() == nullTag {
		return serdes.Fail[serdes.Scalar](coercionAt(n, errors.Newf("cannot convert null to %s", kind)))
	}
	s, err := scalarFromText(n.Value, kind)
	if err != nil {
		return serdes.Fail[serdes.Scalar](coercionAt(n, err))
	}
	return serdes.Ok(s)
}

func scalarFromText(text string, kind serdes.ScalarKind) (serdes.Scalar, error) {
	switch kind {
	case serdes.ScalarString:
		return serdes.StringScalar(text), nil
	case serdes.ScalarBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to bool", text)
		}
		return serdes.BoolScalar(b), nil
	case serdes.ScalarInt:
		i, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to int", text)
		}
		return serdes.IntScalar(i), nil
	case serdes.ScalarUint:
		u, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to uint", text)
		}
		return serdes.UintScalar(u), nil
	case serdes.ScalarFloat:
		f, err := parseFloat(text)
		if err != nil {
			return serdes.Scalar{}, errors.Wrapf(err, "cannot convert %q to float", text)
		}
		return serdes.FloatScalar(f), nil
	}
	return serdes.Scalar{}, errors.Newf("unknown scalar kind %d", kind)
}

func parseFloat(text string) (float64, error) {
	switch strings.ToLower(text) {
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	case ".nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(text, 64)
}

func (r *Reader) ToArray(v serdes.InputVar) serdes.Result[serdes.InputArray] {
	n := resolve(nodeOf(v.Node()))
	if n == nil || n.Kind != yaml.SequenceNode {
		return serdes.Fail[serdes.InputArray](shapeAt(n, "sequence"))
	}
	return serdes.Ok(serdes.NewInputArray(n))
}

func (r *Reader) ToObject(v serdes.InputVar) serdes.Result[serdes.InputObject] {
	n := resolve(nodeOf(v.Node()))
	if n == nil || n.Kind != yaml.MappingNode {
		return serdes.Fail[serdes.InputObject](shapeAt(n, "map"))
	}
	if r.opt.Keys == serdes.KeyReject {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := resolve(n.Content[i]); k.Kind != yaml.ScalarNode {
				e := serdes.Errorf(serdes.CodeShapeMismatch, "line %d: mapping key is not text", k.Line)
				return serdes.Fail[serdes.InputObject](e)
			}
		}
	}
	return serdes.Ok(serdes.NewInputObject(n))
}

func (r *Reader) ToVec(arr serdes.InputArray) []serdes.InputVar {
	n := nodeOf(arr.Node())
	out := make([]serdes.InputVar, len(n.Content))
	for i, c := range n.Content {
		out[i] = serdes.NewInputVar(c)
	}
	return out
}

func (r *Reader) ToMap(obj serdes.InputObject) []serdes.Member {
	n := nodeOf(obj.Node())
	out := make([]serdes.Member, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolve(n.Content[i])
		if k.Kind != yaml.ScalarNode {
			continue
		}
		out = append(out, serdes.Member{Name: k.Value, Var: serdes.NewInputVar(n.Content[i+1])})
	}
	return out
}

func (r *Reader) ToFieldsArray(index serdes.IndexFunc, obj serdes.InputObject, size int) []serdes.Option[serdes.InputVar] {
	n := nodeOf(obj.Node())
	out := make([]serdes.Option[serdes.InputVar], size)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolve(n.Content[i])
		if k.Kind != yaml.ScalarNode {
			continue
		}
		if f := index(k.Value); f >= 0 && f < size {
			out[f] = serdes.Some(serdes.NewInputVar(n.Content[i+1]))
		}
	}
	return out
}

// Kind classifies nodes by their resolved tag.
func (r *Reader) Kind(v serdes.InputVar) serdes.NodeKind {
	if r.IsEmpty(v) {
		return serdes.NodeNull
	}
	n := resolve(nodeOf(v.Node()))
	switch n.Kind {
	case yaml.SequenceNode:
		return serdes.NodeArray
	case yaml.MappingNode:
		return serdes.NodeObject
	}
	switch n.ShortTag() {
	case "!!bool":
		return serdes.NodeBool
	case "!!int":
		if _, err := strconv.ParseInt(n.Value, 0, 64); err != nil {
			if _, err := strconv.ParseUint(n.Value, 0, 64); err == nil {
				return serdes.NodeUint
			}
			return serdes.NodeFloat
		}
		return serdes.NodeInt
	case "!!float":
		return serdes.NodeFloat
	}
	return serdes.NodeString
}

var unmarshalerType = reflect.TypeFor[yaml.Unmarshaler]()

// HasCustomConstructor reports whether *t implements yaml.Unmarshaler.
func (r *Reader) HasCustomConstructor(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(unmarshalerType)
}

// UseCustomConstructor hands the node to the type's UnmarshalYAML.
func (r *Reader) UseCustomConstructor(v serdes.InputVar, dst any) error {
	n := nodeOf(v.Node())
	if n == nil {
		n = &yaml.Node{Kind: yaml.ScalarNode, Tag: nullTag, Value: "null"}
	}
	return n.Decode(dst)
}

const nullTag = "!!null"

func nodeOf(x any) *yaml.Node {
	n, _ := x.(*yaml.Node)
	return n
}

// resolve follows documents and aliases to the node that holds the value.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func describe(n *yaml.Node) string {
	if n == nil {
		return "absent node"
	}
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "map"
	default:
		return "scalar"
	}
}

func coercionAt(n *yaml.Node, err error) error {
	e := serdes.Coercion(err)
	if n != nil && n.Line > 0 {
		e.Message = "line " + strconv.Itoa(n.Line) + ": " + e.Message
	}
	return e
}

func shapeAt(n *yaml.Node, kind string) error {
	e := serdes.ShapeMismatch(kind)
	if n != nil && n.Line > 0 {
		e.Message = "line " + strconv.Itoa(n.Line) + ": " + e.Message
	}
	return e
}
