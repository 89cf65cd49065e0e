package engine_test

import (
	"io"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	eng "github.com/reoring/serdes/internal/engine"
	"github.com/reoring/serdes/internal/source/json"
)

// tokens is a TokenSource over a fixed token list.
type tokens struct {
	toks []eng.Token
	pos  int
}

func (s *tokens) NextToken() (eng.Token, error) {
	if s.pos >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	s.pos++
	return s.toks[s.pos-1], nil
}

func (s *tokens) Location() int64 { return int64(s.pos) * 10 }

func tok(k eng.Kind) eng.Token { return eng.Token{Kind: k, Offset: -1} }

func key(s string) eng.Token { return eng.Token{Kind: eng.KindKey, String: s, Offset: -1} }

func num(s string) eng.Token { return eng.Token{Kind: eng.KindNumber, Number: s, Offset: -1} }

func TestBuild_OrderedTree(t *testing.T) {
	src := json.NewBytes([]byte(`{"b":[1,"x",true,null],"a":{},"b":2}`))
	root, err := eng.Build(src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !root.IsObject() || len(root.Members) != 3 {
		t.Fatalf("root: %+v", root)
	}
	var keys []string
	for _, m := range root.Members {
		keys = append(keys, m.Key)
	}
	if diff := cmp.Diff([]string{"b", "a", "b"}, keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	arr := root.Members[0].Value
	if !arr.IsArray() || len(arr.Elems) != 4 {
		t.Fatalf("array: %+v", arr)
	}
	if arr.Elems[0].Text != "1" || arr.Elems[1].Text != "x" || !arr.Elems[2].Bool || arr.Elems[3].Kind != eng.KindNull {
		t.Fatalf("elements: %+v", arr.Elems)
	}
	if root.Members[1].Offset < 0 {
		t.Fatalf("encoding/json driver should report member offsets")
	}
}

func TestBuild_Errors(t *testing.T) {
	cases := map[string][]eng.Token{
		"empty":        nil,
		"trailing":     {num("1"), num("2")},
		"unclosed":     {tok(eng.KindBeginArray), num("1")},
		"stray end":    {tok(eng.KindEndObject)},
		"value as key": {tok(eng.KindBeginObject), num("1")},
	}
	for name, toks := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := eng.Build(&tokens{toks: toks}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	_, err := eng.Build(&tokens{toks: []eng.Token{tok(eng.KindBeginObject), key("k")}})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("unterminated object: %v", err)
	}
}

func TestEnforcement_DuplicateKeys(t *testing.T) {
	stream := func() *tokens {
		return &tokens{toks: []eng.Token{
			tok(eng.KindBeginObject),
			key("o"), tok(eng.KindBeginArray),
			tok(eng.KindBeginObject), key("a~b"), num("1"), key("a~b"), num("2"), tok(eng.KindEndObject),
			tok(eng.KindEndArray),
			tok(eng.KindEndObject),
		}}
	}

	var seen []eng.Issue
	sink := func(is eng.Issue) { seen = append(seen, is) }

	if _, err := eng.Build(eng.WrapWithEnforcement(stream(), eng.EnforceOptions{OnDuplicate: eng.DupIgnore, IssueSink: sink})); err != nil || len(seen) != 0 {
		t.Fatalf("ignore: err=%v issues=%v", err, seen)
	}

	root, err := eng.Build(eng.WrapWithEnforcement(stream(), eng.EnforceOptions{OnDuplicate: eng.DupWarn, IssueSink: sink}))
	if err != nil {
		t.Fatalf("warn: %v", err)
	}
	if len(seen) != 1 || seen[0].Code != eng.CodeDuplicateKey || seen[0].Path != "/o/0/a~0b" {
		t.Fatalf("warn issues: %+v", seen)
	}
	if got := root.Members[0].Value.Elems[0].Members; len(got) != 2 {
		t.Fatalf("warn keeps both members, got %d", len(got))
	}

	_, err = eng.Build(eng.WrapWithEnforcement(stream(), eng.EnforceOptions{OnDuplicate: eng.DupError}))
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Code != eng.CodeDuplicateKey || ie.Path != "/o/0/a~0b" {
		t.Fatalf("error: %v", err)
	}
}

func TestEnforcement_MaxDepth(t *testing.T) {
	src := &tokens{toks: []eng.Token{
		tok(eng.KindBeginArray), tok(eng.KindBeginArray), tok(eng.KindBeginObject),
		tok(eng.KindEndObject), tok(eng.KindEndArray), tok(eng.KindEndArray),
	}}
	_, err := eng.Build(eng.WrapWithEnforcement(src, eng.EnforceOptions{MaxDepth: 2}))
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Code != eng.CodeParseError || ie.Path != "/0/0" {
		t.Fatalf("got %v", err)
	}
}

func TestEnforcement_MaxBytes(t *testing.T) {
	src := &tokens{toks: []eng.Token{tok(eng.KindBeginArray), num("1"), num("2"), num("3"), tok(eng.KindEndArray)}}
	_, err := eng.Build(eng.WrapWithEnforcement(src, eng.EnforceOptions{MaxBytes: 25}))
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Code != eng.CodeTruncated || ie.Offset != 30 {
		t.Fatalf("got %v", err)
	}
}

func TestEnforcement_DeepNestingPaths(t *testing.T) {
	const depth = 50000
	toks := make([]eng.Token, 0, 2*depth+8)
	for i := 0; i < depth; i++ {
		toks = append(toks, tok(eng.KindBeginArray))
	}
	toks = append(toks, tok(eng.KindBeginObject), key("a"), num("1"), key("a"), num("2"), tok(eng.KindEndObject))
	for i := 0; i < depth; i++ {
		toks = append(toks, tok(eng.KindEndArray))
	}

	if _, err := eng.Build(eng.WrapWithEnforcement(&tokens{toks: toks}, eng.EnforceOptions{})); err != nil {
		t.Fatalf("unlimited depth: %v", err)
	}

	_, err := eng.Build(eng.WrapWithEnforcement(&tokens{toks: toks}, eng.EnforceOptions{OnDuplicate: eng.DupError}))
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Code != eng.CodeDuplicateKey {
		t.Fatalf("got %v", err)
	}
	if want := strings.Repeat("/0", depth) + "/a"; ie.Path != want {
		t.Fatalf("path has %d bytes, want %d", len(ie.Path), len(want))
	}

	_, err = eng.Build(eng.WrapWithEnforcement(&tokens{toks: toks}, eng.EnforceOptions{MaxDepth: 3}))
	if !errors.As(err, &ie) || ie.Code != eng.CodeParseError || ie.Path != "/0/0/0" {
		t.Fatalf("got %v", err)
	}
}

func TestKeyTracker(t *testing.T) {
	var kt eng.KeyTracker
	kt.BeginObject()
	if !kt.String() {
		t.Fatalf("first string in an object is a key")
	}
	if kt.String() {
		t.Fatalf("second string is the value")
	}
	if !kt.String() {
		t.Fatalf("third string is the next key")
	}
	kt.BeginArray()
	if kt.String() || kt.String() {
		t.Fatalf("strings in arrays are values")
	}
	kt.End()
	if !kt.String() {
		t.Fatalf("closing the array completes the member")
	}
}
