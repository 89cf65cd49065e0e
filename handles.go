package serdes

// Handles are opaque to this package: a backend stores its own node type
// inside and is the only code that looks at it again.

// InputVar points at one node of the source document. The zero InputVar
// denotes an absent node; every Reader reports it as empty.
type InputVar struct{ node any }

// InputArray points at a sequence node of the source document.
type InputArray struct{ node any }

// InputObject points at a mapping node of the source document.
type InputObject struct{ node any }

func NewInputVar(node any) InputVar       { return InputVar{node: node} }
func NewInputArray(node any) InputArray   { return InputArray{node: node} }
func NewInputObject(node any) InputObject { return InputObject{node: node} }
func (v InputVar) Node() any              { return v.node }
func (v InputVar) IsZero() bool           { return v.node == nil }
func (a InputArray) Node() any            { return a.node }
func (o InputObject) Node() any           { return o.node }

// OutputVar is returned by Writer operations that insert a leaf.
type OutputVar struct{ node any }

// OutputArray is an open sequence in the destination document. Start records
// the backend position where the container began; the Writer needs it to
// close the container.
type OutputArray struct {
	start int
	node  any
}

// OutputObject is an open mapping in the destination document.
type OutputObject struct {
	start int
	node  any
}

func NewOutputVar(node any) OutputVar                  { return OutputVar{node: node} }
func NewOutputArray(start int, node any) OutputArray   { return OutputArray{start: start, node: node} }
func NewOutputObject(start int, node any) OutputObject { return OutputObject{start: start, node: node} }
func (v OutputVar) Node() any                          { return v.node }
func (a OutputArray) Start() int                       { return a.start }
func (a OutputArray) Node() any                        { return a.node }
func (o OutputObject) Start() int                      { return o.start }
func (o OutputObject) Node() any                       { return o.node }
