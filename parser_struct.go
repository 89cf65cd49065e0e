package serdes

import "reflect"

type structField struct {
	index  int
	name   string
	parser Parser[reflect.Value]
}

// structParser decodes mappings into structs. All fields are resolved with a
// single ToFieldsArray pass; unknown members are ignored.
type structParser struct {
	t      reflect.Type
	fields []structField
	index  IndexFunc
}

func (p *structParser) Read(r Reader, v InputVar) Result[reflect.Value] {
	obj := r.ToObject(v)
	if !obj.OK() {
		return Forward[reflect.Value](obj)
	}
	slots := r.ToFieldsArray(p.index, obj.val, len(p.fields))
	out := reflect.New(p.t).Elem()
	for i, f := range p.fields {
		iv, ok := slots[i].Get()
		if !ok && !isNullable(f.parser) {
			// Ask the backend so the diagnostic uses its missing-field text.
			got := r.GetField(f.name, obj.val)
			if !got.OK() {
				return Fail[reflect.Value](WithPathPrefix(got.err, f.name))
			}
			iv = got.val
		}
		res := f.parser.Read(r, iv)
		if !res.OK() {
			return Fail[reflect.Value](WithPathPrefix(res.err, f.name))
		}
		out.Field(f.index).Set(res.val)
	}
	return Ok(out)
}

func (p *structParser) Write(w Writer, v reflect.Value, parent Parent) {
	obj := parent.AddObject(w, len(p.fields))
	for _, f := range p.fields {
		f.parser.Write(w, v.Field(f.index), ObjectParent(f.name, &obj))
	}
	w.EndObject(&obj)
}

// StructOf returns the reflection-built Parser for the struct type T from the
// default registry, ignoring any Parser registered for T itself. Field types
// still resolve through the registry.
func StructOf[T any]() (Parser[T], error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, Errorf(CodeUnsupportedType, "%s is not a struct", t)
	}
	p, err := DefaultRegistry.buildWith(t, func(pending map[reflect.Type]Parser[reflect.Value]) (Parser[reflect.Value], error) {
		return DefaultRegistry.structOf(t, pending)
	})
	if err != nil {
		return nil, err
	}
	return typed[T](p), nil
}

func (reg *Registry) structOf(t reflect.Type, pending map[reflect.Type]Parser[reflect.Value]) (Parser[reflect.Value], error) {
	p := &structParser{t: t}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, ok := ResolveStructKey(sf)
		if !ok {
			continue
		}
		fp, err := reg.build(sf.Type, pending)
		if err != nil {
			return nil, WithPathPrefix(err, name)
		}
		p.fields = append(p.fields, structField{index: i, name: name, parser: fp})
		names = append(names, name)
	}
	p.index = NewFieldIndex(names)
	return p, nil
}
