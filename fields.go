package serdes

import (
	"reflect"
	"strings"
)

// NoField is returned by an IndexFunc for names that do not belong to the
// target aggregate.
const NoField = -1

// IndexFunc maps an object member name to a field slot in [0, n) or NoField.
type IndexFunc func(name string) int

// linearIndexMax is the field count up to which NewFieldIndex scans instead of
// hashing.
const linearIndexMax = 8

// NewFieldIndex builds the name-to-slot function for an aggregate whose field
// keys are names, in slot order.
func NewFieldIndex(names []string) IndexFunc {
	keys := append([]string(nil), names...)
	if len(keys) <= linearIndexMax {
		return func(name string) int {
			for i, k := range keys {
				if k == name {
					return i
				}
			}
			return NoField
		}
	}
	m := make(map[string]int, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		m[keys[i]] = i
	}
	return func(name string) int {
		if i, ok := m[name]; ok {
			return i
		}
		return NoField
	}
}

// FieldsFromMembers places members into n slots using index. It is the
// single-pass core of Reader.ToFieldsArray for backends that already hold a
// member list. When a name occurs twice the later member wins.
func FieldsFromMembers(index IndexFunc, members []Member, n int) []Option[InputVar] {
	out := make([]Option[InputVar], n)
	for _, m := range members {
		i := index(m.Name)
		if i < 0 || i >= n {
			continue
		}
		out[i] = Some(m.Var)
	}
	return out
}

// ResolveStructKey returns the external key of a struct field.
// Priority: serdes:"name" (or serdes:"name=...") > json tag name > field name.
// The second result is false when the field is disabled with "-".
func ResolveStructKey(sf reflect.StructField) (string, bool) {
	if st := sf.Tag.Get("serdes"); st != "" {
		if st == "-" {
			return "", false
		}
		for _, p := range strings.Split(st, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name="), true
			}
		}
		if name, _, _ := strings.Cut(st, ","); name != "" && !strings.Contains(name, "=") {
			return name, true
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "", false
		}
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return name, true
		}
	}
	return sf.Name, true
}
