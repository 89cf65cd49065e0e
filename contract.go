package serdes

import "reflect"

// Reader is the set of operations a decodable backend exposes so that
// Parsers can inspect its tree-shaped input.
//
// Implementations never panic through these methods: backend faults are
// converted into *Error values at this boundary.
type Reader interface {
	// GetField looks up a member by exact name. A missing member yields a
	// missing_field diagnostic naming the field.
	GetField(name string, obj InputObject) Result[InputVar]

	// IsEmpty reports whether the node represents no value: the zero
	// InputVar or the backend's null marker.
	IsEmpty(v InputVar) bool

	// ToBasic coerces a leaf to the requested scalar kind. Whether strings
	// convert to numbers is backend specific and documented per backend.
	ToBasic(v InputVar, kind ScalarKind) Result[Scalar]

	// ToArray fails with shape_mismatch unless the node is sequence shaped.
	ToArray(v InputVar) Result[InputArray]

	// ToObject fails with shape_mismatch unless the node is mapping shaped.
	ToObject(v InputVar) Result[InputObject]

	// ToVec materializes every element of a sequence in order.
	ToVec(arr InputArray) []InputVar

	// ToMap materializes every member of a mapping in document order.
	// Members whose name is not text are skipped.
	ToMap(obj InputObject) []Member

	// ToFieldsArray resolves members into n slots in a single pass. index
	// maps a member name to a slot or NoField; members mapping to NoField
	// or whose name is not text are skipped.
	ToFieldsArray(index IndexFunc, obj InputObject, n int) []Option[InputVar]

	// HasCustomConstructor reports whether values of t decode through a
	// format-specific hook instead of structural decoding.
	HasCustomConstructor(t reflect.Type) bool

	// UseCustomConstructor runs the format-specific hook of dst, which is a
	// non-nil pointer to a type accepted by HasCustomConstructor.
	UseCustomConstructor(v InputVar, dst any) error
}

// Writer is the set of operations an encodable backend exposes so that
// Parsers can build its tree-shaped output. Writers have no error path: every
// container opened must be closed exactly once, children first.
type Writer interface {
	ArrayAsRoot(size int) OutputArray
	ObjectAsRoot(size int) OutputObject
	NullAsRoot() OutputVar
	ValueAsRoot(v Scalar) OutputVar

	AddArrayToArray(size int, parent *OutputArray) OutputArray
	AddArrayToObject(name string, size int, parent *OutputObject) OutputArray
	AddObjectToArray(size int, parent *OutputArray) OutputObject
	AddObjectToObject(name string, size int, parent *OutputObject) OutputObject

	AddValueToArray(v Scalar, parent *OutputArray) OutputVar
	AddValueToObject(name string, v Scalar, parent *OutputObject) OutputVar
	AddNullToArray(parent *OutputArray) OutputVar
	AddNullToObject(name string, parent *OutputObject) OutputVar

	EndArray(arr *OutputArray)
	EndObject(obj *OutputObject)
}

// NodeKind classifies an input node for callers that do not know its Go type
// in advance.
type NodeKind int

const (
	NodeNull NodeKind = iota
	NodeBool
	NodeInt
	NodeUint
	NodeFloat
	NodeString
	NodeArray
	NodeObject
)

func (k NodeKind) String() string {
	switch k {
	case NodeNull:
		return "null"
	case NodeBool:
		return "bool"
	case NodeInt:
		return "int"
	case NodeUint:
		return "uint"
	case NodeFloat:
		return "float"
	case NodeString:
		return "string"
	case NodeArray:
		return "array"
	case NodeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Classifier is an optional Reader capability used by the dynamic parser.
type Classifier interface {
	Kind(v InputVar) NodeKind
}

// Member is one entry of a mapping node.
type Member struct {
	Name string
	Var  InputVar
}
