package serdes

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/reoring/serdes/ref"
)

// Registry is the dispatch table from Go types to Parsers. Parsers are built
// from the type's shape on first use and cached; recursive types are
// supported. A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	parsers  map[reflect.Type]Parser[reflect.Value]
	explicit map[reflect.Type]any // Parser[T] as registered, keyed by T
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:  make(map[reflect.Type]Parser[reflect.Value]),
		explicit: make(map[reflect.Type]any),
	}
}

// DefaultRegistry serves Read, Write, ParserFor and Register.
var DefaultRegistry = NewRegistry()

// Register installs p as the Parser for T in the default registry.
func Register[T any](p Parser[T]) { RegisterIn(DefaultRegistry, p) }

// RegisterIn installs p as the Parser for T in reg. Parsers built earlier
// are discarded so that types containing T pick up p.
func RegisterIn[T any](reg *Registry, p Parser[T]) {
	t := reflect.TypeFor[T]()
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for k := range reg.parsers {
		if _, ok := reg.explicit[k]; !ok {
			delete(reg.parsers, k)
		}
	}
	reg.parsers[t] = erase(p)
	reg.explicit[t] = p
}

// ParserFor returns the default registry's Parser for T.
func ParserFor[T any]() (Parser[T], error) { return ParserIn[T](DefaultRegistry) }

// ParserIn returns reg's Parser for T, building it if needed. The error is an
// unsupported_type diagnostic naming the first type that has no Parser.
func ParserIn[T any](reg *Registry) (Parser[T], error) {
	t := reflect.TypeFor[T]()
	reg.mu.RLock()
	p, ok := reg.explicit[t]
	reg.mu.RUnlock()
	if ok {
		return p.(Parser[T]), nil
	}
	rp, err := reg.lookup(t)
	if err != nil {
		return nil, err
	}
	return typed[T](rp), nil
}

func (reg *Registry) lookup(t reflect.Type) (Parser[reflect.Value], error) {
	reg.mu.RLock()
	p, ok := reg.parsers[t]
	reg.mu.RUnlock()
	if ok {
		return p, nil
	}
	return reg.buildWith(t, func(pending map[reflect.Type]Parser[reflect.Value]) (Parser[reflect.Value], error) {
		return reg.build(t, pending)
	})
}

// buildWith runs fn under the write lock and commits the Parsers it built
// only when it succeeds.
func (reg *Registry) buildWith(t reflect.Type, fn func(map[reflect.Type]Parser[reflect.Value]) (Parser[reflect.Value], error)) (Parser[reflect.Value], error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	pending := make(map[reflect.Type]Parser[reflect.Value])
	p, err := fn(pending)
	if err != nil {
		return nil, err
	}
	for k, v := range pending {
		reg.parsers[k] = v
		L().Debug("serdes: built parser", zap.Stringer("type", k))
	}
	return p, nil
}

func (reg *Registry) build(t reflect.Type, pending map[reflect.Type]Parser[reflect.Value]) (Parser[reflect.Value], error) {
	if p, ok := reg.parsers[t]; ok {
		return p, nil
	}
	if p, ok := pending[t]; ok {
		return p, nil
	}
	// Placeholder for recursive references while t is being built.
	d := &deferred{}
	pending[t] = d
	p, err := reg.construct(t, pending)
	if err != nil {
		delete(pending, t)
		return nil, err
	}
	d.p = p
	pending[t] = p
	return p, nil
}

var (
	optionValueType = reflect.TypeFor[optionValue]()
	handleType      = reflect.TypeFor[ref.Handle]()
)

// construct picks the Parser for t. Precedence: self-constructing types,
// text marshalers, Option, ref handles, then the structural Parser for t's
// kind.
func (reg *Registry) construct(t reflect.Type, pending map[reflect.Type]Parser[reflect.Value]) (Parser[reflect.Value], error) {
	pt := reflect.PointerTo(t)
	if pt.Implements(inputDecoderType) || t.Implements(outputEncoderType) || pt.Implements(outputEncoderType) {
		before := make(map[reflect.Type]bool, len(pending))
		for k := range pending {
			before[k] = true
		}
		fallback, err := reg.structural(t, pending)
		if err != nil {
			// Drop what the failed attempt left behind; it may point at t.
			for k := range pending {
				if !before[k] {
					delete(pending, k)
				}
			}
			fallback = nil
		}
		return customParser{t: t, fallback: fallback}, nil
	}
	var p Parser[reflect.Value]
	switch {
	case t.Kind() != reflect.Interface && t.Implements(textMarshalerType) && pt.Implements(textUnmarshalerType):
		p = textParser{t: t}
	case t.Implements(optionValueType):
		elem, err := reg.build(reflect.Zero(t).Interface().(optionValue).optionElem(), pending)
		if err != nil {
			return nil, err
		}
		p = reflectOption(t, elem)
	case t.Kind() == reflect.Struct && t.Implements(handleType):
		elem, err := reg.build(reflect.Zero(t).Interface().(ref.Handle).ElemType(), pending)
		if err != nil {
			return nil, err
		}
		p = reflectHandle(t, elem)
	default:
		var err error
		if p, err = reg.structural(t, pending); err != nil {
			return nil, err
		}
	}
	if t.PkgPath() != "" {
		p = hookParser{t: t, inner: p}
	}
	return p, nil
}

func (reg *Registry) structural(t reflect.Type, pending map[reflect.Type]Parser[reflect.Value]) (Parser[reflect.Value], error) {
	if _, ok := scalarKindOf(t); ok {
		return reflectBasic{t: t}, nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		elem, err := reg.build(t.Elem(), pending)
		if err != nil {
			return nil, err
		}
		return reflectPointer(t, elem), nil
	case reflect.Slice:
		elem, err := reg.build(t.Elem(), pending)
		if err != nil {
			return nil, err
		}
		return sliceParser{t: t, elem: elem}, nil
	case reflect.Array:
		elem, err := reg.build(t.Elem(), pending)
		if err != nil {
			return nil, err
		}
		return arrayParser{t: t, elem: elem}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, Errorf(CodeUnsupportedType, "map key type %s is not string-kinded", t.Key())
		}
		elem, err := reg.build(t.Elem(), pending)
		if err != nil {
			return nil, err
		}
		return mapParser{t: t, elem: elem}, nil
	case reflect.Struct:
		return reg.structOf(t, pending)
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return erase[any](dynamicParser{reg: reg}), nil
		}
	}
	return nil, UnsupportedType(t.String())
}

// deferred stands in for a Parser that is still being built.
type deferred struct {
	p Parser[reflect.Value]
}

func (d *deferred) Read(r Reader, v InputVar) Result[reflect.Value] { return d.p.Read(r, v) }
func (d *deferred) Write(w Writer, v reflect.Value, p Parent)       { d.p.Write(w, v, p) }
func (d *deferred) Nullable() bool                                  { return d.p != nil && isNullable(d.p) }
func (d *deferred) holdsEmpty() bool                                { return d.p != nil && holdsEmpty(d.p) }

// erase adapts a Parser[T] to the registry's reflect.Value representation.
func erase[T any](p Parser[T]) Parser[reflect.Value] {
	if tp, ok := p.(typedParser[T]); ok {
		return tp.p
	}
	return erased[T]{p: p}
}

type erased[T any] struct{ p Parser[T] }

func (e erased[T]) Read(r Reader, v InputVar) Result[reflect.Value] {
	return Transform(e.p.Read(r, v), func(x T) reflect.Value {
		return reflect.ValueOf(&x).Elem()
	})
}

func (e erased[T]) Write(w Writer, v reflect.Value, parent Parent) {
	var x T
	reflect.ValueOf(&x).Elem().Set(v)
	e.p.Write(w, x, parent)
}

func (e erased[T]) Nullable() bool   { return isNullable(e.p) }
func (e erased[T]) holdsEmpty() bool { return holdsEmpty(e.p) }

// typed is the inverse of erase.
func typed[T any](p Parser[reflect.Value]) Parser[T] {
	if e, ok := p.(erased[T]); ok {
		return e.p
	}
	return typedParser[T]{p: p}
}

type typedParser[T any] struct{ p Parser[reflect.Value] }

func (tp typedParser[T]) Read(r Reader, v InputVar) Result[T] {
	return Transform(tp.p.Read(r, v), func(rv reflect.Value) T {
		var x T
		reflect.ValueOf(&x).Elem().Set(rv)
		return x
	})
}

func (tp typedParser[T]) Write(w Writer, v T, parent Parent) {
	tp.p.Write(w, reflect.ValueOf(&v).Elem(), parent)
}

func (tp typedParser[T]) Nullable() bool   { return isNullable(tp.p) }
func (tp typedParser[T]) holdsEmpty() bool { return holdsEmpty(tp.p) }
