package serdes

import "reflect"

// FieldKey returns the external key of a top-level field of S selected by
// selector. Example:
//
//	FieldKey[Order](func(o *Order) *string { return &o.Status }) // "status"
//
// Renaming or removing the field breaks the call at compile time.
func FieldKey[S any, F any](selector func(*S) *F) string {
	if selector == nil {
		panic("serdes.FieldKey: selector must not be nil")
	}
	var zero S
	target := reflect.ValueOf(selector(&zero)).Pointer()
	want := reflect.TypeFor[F]()
	rv := reflect.ValueOf(&zero).Elem()
	if rv.Kind() != reflect.Struct {
		panic("serdes.FieldKey: " + rv.Type().String() + " is not a struct")
	}
	for i := 0; i < rv.NumField(); i++ {
		sf := rv.Type().Field(i)
		if !sf.IsExported() {
			continue
		}
		if rv.Field(i).Addr().Pointer() == target && sf.Type == want {
			name, ok := ResolveStructKey(sf)
			if !ok {
				panic("serdes.FieldKey: selected field is disabled")
			}
			return name
		}
	}
	panic("serdes.FieldKey: selector must return the address of a top-level field")
}

// PathOf returns the JSON Pointer a diagnostic carries in Error.Path when it
// was raised while decoding the selected, possibly nested, field of S:
//
//	PathOf[Order](func(o *Order) *string { return &o.User.ID }) // "/user/id"
//
// Only plain struct nesting is followed; pointer hops are not.
func PathOf[S any, F any](selector func(*S) *F) string {
	if selector == nil {
		panic("serdes.PathOf: selector must not be nil")
	}
	var zero S
	target := reflect.ValueOf(selector(&zero)).Pointer()
	keys, ok := findPathKeys(reflect.ValueOf(&zero).Elem(), target, reflect.TypeFor[F](), 0)
	if !ok {
		panic("serdes.PathOf: selector must address a nested struct field")
	}
	path := ""
	for _, k := range keys {
		path += "/" + escapePointerToken(k)
	}
	return path
}

const maxPathDepth = 32

func findPathKeys(v reflect.Value, target uintptr, want reflect.Type, depth int) ([]string, bool) {
	if depth > maxPathDepth || v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, ok := ResolveStructKey(sf)
		if !ok {
			continue
		}
		fv := v.Field(i)
		// A nested struct shares its address with its first field; the type
		// tells them apart.
		if fv.Addr().Pointer() == target && sf.Type == want {
			return []string{name}, true
		}
		if fv.Kind() == reflect.Struct {
			if rest, ok := findPathKeys(fv, target, want, depth+1); ok {
				return append([]string{name}, rest...), true
			}
		}
	}
	return nil, false
}
