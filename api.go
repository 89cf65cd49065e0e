package serdes

// Parser converts between Go values of type T and a backend's tree. Read asks
// the Reader to classify and extract nodes; Write asks the Writer to open and
// close containers and insert leaves below p.
type Parser[T any] interface {
	Read(r Reader, v InputVar) Result[T]
	Write(w Writer, v T, p Parent)
}

// Funcs adapts a pair of functions to Parser. It is the usual way to plug a
// hand-written Parser into a Registry.
type Funcs[T any] struct {
	ReadFunc  func(r Reader, v InputVar) Result[T]
	WriteFunc func(w Writer, v T, p Parent)
}

func (f Funcs[T]) Read(r Reader, v InputVar) Result[T] { return f.ReadFunc(r, v) }
func (f Funcs[T]) Write(w Writer, v T, p Parent)       { f.WriteFunc(w, v, p) }

// Read decodes root into a T using the Parser the default registry holds for T.
func Read[T any](r Reader, root InputVar) Result[T] {
	p, err := ParserFor[T]()
	if err != nil {
		return Fail[T](err)
	}
	return p.Read(r, root)
}

// Write encodes v as the root of w's document. It fails only when no Parser
// can be built for T; encoding itself has no error path.
func Write[T any](w Writer, v T) error {
	p, err := ParserFor[T]()
	if err != nil {
		return err
	}
	p.Write(w, v, RootParent())
	return nil
}
