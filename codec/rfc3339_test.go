package codec_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/reoring/serdes"
	"github.com/reoring/serdes/codec"
	"github.com/reoring/serdes/format/json"
)

func readWith[T any](t *testing.T, p serdes.Parser[T], doc string) serdes.Result[T] {
	t.Helper()
	root, err := json.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse %s: %v", doc, err)
	}
	return p.Read(json.NewReader(), root)
}

func writeWith[T any](t *testing.T, p serdes.Parser[T], v T) string {
	t.Helper()
	w := json.NewWriter()
	p.Write(w, v, serdes.RootParent())
	b, err := w.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	return string(b)
}

func TestTimeRFC3339_Basic(t *testing.T) {
	p := codec.TimeRFC3339()

	got, err := readWith(t, p, `"2025-01-01T00:00:00Z"`).Value()
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}
	if out := writeWith(t, p, got); out != `"2025-01-01T00:00:00Z"` {
		t.Fatalf("roundtrip mismatch: %s", out)
	}
}

func TestTimeRFC3339_NormalizesToUTC(t *testing.T) {
	p := codec.TimeRFC3339()
	got, err := readWith(t, p, `"2025-01-01T09:00:00.5+09:00"`).Value()
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if out := writeWith(t, p, got); out != `"2025-01-01T00:00:00.5Z"` {
		t.Fatalf("unexpected canonical form: %s", out)
	}
}

func TestTimeRFC3339_Invalid(t *testing.T) {
	res := readWith(t, codec.TimeRFC3339(), `"yesterday"`)
	if res.OK() {
		t.Fatalf("expected error for invalid time")
	}
	if !serdes.IsCode(res.Err(), serdes.CodeCoercion) {
		t.Fatalf("expected coercion code, got %v", res.Err())
	}
}

func TestTimeRFC3339_WrongShape(t *testing.T) {
	res := readWith(t, codec.TimeRFC3339(), `12`)
	if !serdes.IsCode(res.Err(), serdes.CodeCoercion) {
		t.Fatalf("expected coercion code for number input, got %v", res.Err())
	}
}

func TestDuration(t *testing.T) {
	p := codec.Duration()
	got, err := readWith(t, p, `"1h30m"`).Value()
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if got != 90*time.Minute {
		t.Fatalf("unexpected duration: %v", got)
	}
	if out := writeWith(t, p, got); out != `"1h30m0s"` {
		t.Fatalf("unexpected output: %s", out)
	}
	if res := readWith(t, p, `"soon"`); res.OK() {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestText_Addr(t *testing.T) {
	p := codec.Text[netip.Addr]()
	got, err := readWith(t, p, `"192.0.2.1"`).Value()
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if got != netip.MustParseAddr("192.0.2.1") {
		t.Fatalf("unexpected addr: %v", got)
	}
	if out := writeWith(t, p, got); out != `"192.0.2.1"` {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestConvert_InsideStruct(t *testing.T) {
	type event struct {
		At    time.Time `json:"at"`
		Label string    `json:"label"`
	}
	reg := serdes.NewRegistry()
	serdes.RegisterIn(reg, codec.TimeRFC3339())
	p, err := serdes.ParserIn[event](reg)
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	got, err := readWith(t, p, `{"at":"2024-02-29T12:00:00Z","label":"leap"}`).Value()
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if got.Label != "leap" || got.At.Day() != 29 {
		t.Fatalf("unexpected value: %+v", got)
	}
	if out := writeWith(t, p, got); out != `{"at":"2024-02-29T12:00:00Z","label":"leap"}` {
		t.Fatalf("unexpected output: %s", out)
	}
}
