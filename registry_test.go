package serdes_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/serdes"
	sjson "github.com/reoring/serdes/format/json"
	syaml "github.com/reoring/serdes/format/yaml"
)

func TestParserIn_UnsupportedTypes(t *testing.T) {
	reg := serdes.NewRegistry()
	if _, err := serdes.ParserIn[chan int](reg); !serdes.IsCode(err, serdes.CodeUnsupportedType) {
		t.Fatalf("chan: expected unsupported_type, got %v", err)
	}
	if _, err := serdes.ParserIn[map[int]string](reg); !serdes.IsCode(err, serdes.CodeUnsupportedType) {
		t.Fatalf("int-keyed map: expected unsupported_type, got %v", err)
	}
	type withFunc struct {
		Name string
		Hook func()
	}
	_, err := serdes.ParserIn[withFunc](reg)
	if !serdes.IsCode(err, serdes.CodeUnsupportedType) {
		t.Fatalf("struct with func field: expected unsupported_type, got %v", err)
	}
	if !strings.Contains(err.Error(), "func()") {
		t.Fatalf("diagnostic should name the offending type: %v", err)
	}
}

func TestParserIn_FailedBuildLeavesRegistryUsable(t *testing.T) {
	reg := serdes.NewRegistry()
	type bad struct{ C chan int }
	type good struct{ N int }
	if _, err := serdes.ParserIn[bad](reg); err == nil {
		t.Fatalf("expected error")
	}
	p, err := serdes.ParserIn[good](reg)
	if err != nil {
		t.Fatalf("good: %v", err)
	}
	got, err := p.Read(sjson.NewReader(), jsonRoot(t, `{"N":4}`)).Value()
	if err != nil || got.N != 4 {
		t.Fatalf("got %+v err=%v", got, err)
	}
}

// upper writes strings upper-cased and reads them lower-cased.
type upper string

func upperParser() serdes.Parser[upper] {
	return serdes.Funcs[upper]{
		ReadFunc: func(r serdes.Reader, v serdes.InputVar) serdes.Result[upper] {
			return serdes.Transform(serdes.ToBasic[string](r, v), func(s string) upper {
				return upper(strings.ToLower(s))
			})
		},
		WriteFunc: func(w serdes.Writer, v upper, p serdes.Parent) {
			p.AddValue(w, serdes.StringScalar(strings.ToUpper(string(v))))
		},
	}
}

func TestRegisterIn_OverridesStructuralParser(t *testing.T) {
	type labels struct {
		Primary upper   `json:"primary"`
		Extra   []upper `json:"extra"`
	}
	reg := serdes.NewRegistry()
	// Build the containing type first so the override has to invalidate it.
	if _, err := serdes.ParserIn[labels](reg); err != nil {
		t.Fatalf("prebuild: %v", err)
	}
	serdes.RegisterIn(reg, upperParser())

	p, err := serdes.ParserIn[labels](reg)
	if err != nil {
		t.Fatalf("ParserIn: %v", err)
	}
	got, err := p.Read(sjson.NewReader(), jsonRoot(t, `{"primary":"AbC","extra":["X","yZ"]}`)).Value()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := labels{Primary: "abc", Extra: []upper{"x", "yz"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if out := jsonOut(t, p, want); out != `{"primary":"ABC","extra":["X","YZ"]}` {
		t.Fatalf("write: %s", out)
	}
}

func TestRegisterIn_DoesNotLeakAcrossRegistries(t *testing.T) {
	reg := serdes.NewRegistry()
	serdes.RegisterIn(reg, upperParser())
	p, err := serdes.ParserIn[upper](serdes.NewRegistry())
	if err != nil {
		t.Fatalf("ParserIn: %v", err)
	}
	if out := jsonOut(t, p, upper("keep")); out != `"keep"` {
		t.Fatalf("fresh registry should use the structural parser, got %s", out)
	}
}

func TestParserIn_ConcurrentBuilds(t *testing.T) {
	type node struct {
		Name     string  `json:"name"`
		Children []*node `json:"children"`
	}
	reg := serdes.NewRegistry()
	doc := `{"name":"a","children":[{"name":"b","children":null}]}`
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := serdes.ParserIn[node](reg)
			if err != nil {
				errs <- err
				return
			}
			root, err := sjson.Parse([]byte(doc))
			if err != nil {
				errs <- err
				return
			}
			got := p.Read(sjson.NewReader(), root)
			if !got.OK() {
				errs <- got.Err()
				return
			}
			if n := got.Must(); n.Name != "a" || len(n.Children) != 1 || n.Children[0].Name != "b" {
				errs <- serdes.Errorf(serdes.CodeParseError, "unexpected value %+v", n)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent read: %v", err)
	}
}

func TestDynamic_PreservesDocumentOrder(t *testing.T) {
	doc := `{"z":1,"a":[true,null,"s",-2,2.5],"m":{"k":18446744073709551615}}`
	got, err := serdes.Dynamic().Read(sjson.NewReader(), jsonRoot(t, doc)).Value()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := serdes.Object{
		{Key: "z", Value: int64(1)},
		{Key: "a", Value: []any{true, nil, "s", int64(-2), 2.5}},
		{Key: "m", Value: serdes.Object{{Key: "k", Value: uint64(18446744073709551615)}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if out := jsonOut(t, serdes.Dynamic(), got); out != doc {
		t.Fatalf("write: %s", out)
	}
}

func TestDynamic_YAMLAndLookupFallback(t *testing.T) {
	got, err := serdes.Dynamic().Read(syaml.NewReader(), yamlRoot(t, "b: 2\na: [x, 1.5]\n")).Value()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	obj, ok := got.(serdes.Object)
	if !ok {
		t.Fatalf("expected Object, got %T", got)
	}
	if diff := cmp.Diff([]string{"b", "a"}, obj.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}

	type pt struct {
		X int `json:"x"`
	}
	in := serdes.Object{{Key: "p", Value: pt{X: 3}}, {Key: "m", Value: map[string]any{"b": "2", "a": "1"}}}
	if out := jsonOut(t, serdes.Dynamic(), any(in)); out != `{"p":{"x":3},"m":{"a":"1","b":"2"}}` {
		t.Fatalf("write: %s", out)
	}
}

func TestDynamic_AnyFieldInStruct(t *testing.T) {
	type envelope struct {
		Kind    string `json:"kind"`
		Payload any    `json:"payload"`
	}
	got, err := sjson.Read[envelope]([]byte(`{"kind":"k","payload":[1,{"x":"y"}]}`)).Value()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := envelope{Kind: "k", Payload: []any{int64(1), serdes.Object{{Key: "x", Value: "y"}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	got, err = sjson.Read[envelope]([]byte(`{"kind":"k"}`)).Value()
	if err != nil || got.Payload != nil {
		t.Fatalf("absent payload: %+v err=%v", got, err)
	}
}
