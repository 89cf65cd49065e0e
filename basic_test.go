package serdes_test

import (
	"math"
	"testing"

	"github.com/reoring/serdes"
	scbor "github.com/reoring/serdes/format/cbor"
	sjson "github.com/reoring/serdes/format/json"
	syaml "github.com/reoring/serdes/format/yaml"
)

func yamlRoot(t *testing.T, doc string) serdes.InputVar {
	t.Helper()
	root, err := syaml.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse %q: %v", doc, err)
	}
	return root
}

func TestToBasic_YAMLCoercesNumericStrings(t *testing.T) {
	r := syaml.NewReader()
	got, err := serdes.ToBasic[int](r, yamlRoot(t, `"42"`)).Value()
	if err != nil || got != 42 {
		t.Fatalf("got %d err=%v", got, err)
	}
	b, err := serdes.ToBasic[bool](r, yamlRoot(t, `"true"`)).Value()
	if err != nil || !b {
		t.Fatalf("bool: got %v err=%v", b, err)
	}
}

func TestToBasic_NonNumericStringFails(t *testing.T) {
	for name, tc := range map[string]struct {
		r    serdes.Reader
		root func(t *testing.T) serdes.InputVar
	}{
		"yaml": {syaml.NewReader(), func(t *testing.T) serdes.InputVar { return yamlRoot(t, `"forty-two"`) }},
		"json": {sjson.NewReader(serdes.ReadOpt{CoerceStrings: true}), func(t *testing.T) serdes.InputVar { return jsonRoot(t, `"forty-two"`) }},
	} {
		t.Run(name, func(t *testing.T) {
			res := serdes.ToBasic[int](tc.r, tc.root(t))
			if !serdes.IsCode(res.Err(), serdes.CodeCoercion) {
				t.Fatalf("expected coercion error, got %v", res.Err())
			}
		})
	}
}

func TestToBasic_JSONStrictUnlessCoerceStrings(t *testing.T) {
	root := jsonRoot(t, `"42"`)
	if res := serdes.ToBasic[int](sjson.NewReader(), root); res.OK() {
		t.Fatalf("strict reader must not convert a string to int")
	}
	got, err := serdes.ToBasic[int](sjson.NewReader(serdes.ReadOpt{CoerceStrings: true}), root).Value()
	if err != nil || got != 42 {
		t.Fatalf("coercing reader: got %d err=%v", got, err)
	}
}

func TestToBasic_RangeOverflowIsCoercion(t *testing.T) {
	r := sjson.NewReader()
	if res := serdes.ToBasic[int8](r, jsonRoot(t, `300`)); !serdes.IsCode(res.Err(), serdes.CodeCoercion) {
		t.Fatalf("int8 overflow: %v", res.Err())
	}
	if res := serdes.ToBasic[uint](r, jsonRoot(t, `-1`)); !serdes.IsCode(res.Err(), serdes.CodeCoercion) {
		t.Fatalf("negative uint: %v", res.Err())
	}
	if res := serdes.ToBasic[int](r, jsonRoot(t, `1.5`)); !serdes.IsCode(res.Err(), serdes.CodeCoercion) {
		t.Fatalf("fraction into int: %v", res.Err())
	}
	got, err := serdes.ToBasic[uint64](r, jsonRoot(t, `18446744073709551615`)).Value()
	if err != nil || got != math.MaxUint64 {
		t.Fatalf("max uint64: %d err=%v", got, err)
	}
}

func TestToBasic_NamedTypes(t *testing.T) {
	type color string
	type level int16
	c, err := serdes.ToBasic[color](sjson.NewReader(), jsonRoot(t, `"red"`)).Value()
	if err != nil || c != "red" {
		t.Fatalf("color: %q err=%v", c, err)
	}
	l, err := serdes.ToBasic[level](syaml.NewReader(), yamlRoot(t, `7`)).Value()
	if err != nil || l != 7 {
		t.Fatalf("level: %d err=%v", l, err)
	}
}

// panicky is a Reader whose ToBasic panics, standing in for a faulty backend.
type panicky struct{ serdes.Reader }

func (panicky) ToBasic(serdes.InputVar, serdes.ScalarKind) serdes.Result[serdes.Scalar] {
	panic("backend blew up")
}

func TestToBasic_RecoversBackendPanic(t *testing.T) {
	res := serdes.ToBasic[int](panicky{sjson.NewReader()}, jsonRoot(t, `1`))
	if !serdes.IsCode(res.Err(), serdes.CodeCoercion) {
		t.Fatalf("expected coercion error, got %v", res.Err())
	}
}

func TestScalars_RoundTripAllBackends(t *testing.T) {
	type leaves struct {
		S   string  `json:"s"`
		B   bool    `json:"b"`
		I   int64   `json:"i"`
		U   uint32  `json:"u"`
		F   float64 `json:"f"`
		Neg int     `json:"neg"`
	}
	in := leaves{S: "héllo \"q\"", B: true, I: math.MinInt64, U: math.MaxUint32, F: 0.1, Neg: -5}
	check := func(name string, got leaves, err error) {
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != in {
			t.Fatalf("%s: got %+v want %+v", name, got, in)
		}
	}
	b, err := sjson.Write(in)
	if err != nil {
		t.Fatalf("json write: %v", err)
	}
	got, err := sjson.Read[leaves](b).Value()
	check("json", got, err)

	b, err = syaml.Write(in)
	if err != nil {
		t.Fatalf("yaml write: %v", err)
	}
	got, err = syaml.Read[leaves](b).Value()
	check("yaml", got, err)

	b, err = scbor.Write(in)
	if err != nil {
		t.Fatalf("cbor write: %v", err)
	}
	got, err = scbor.Read[leaves](b).Value()
	check("cbor", got, err)
}
