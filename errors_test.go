package serdes_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/reoring/serdes"
	"github.com/reoring/serdes/i18n"
)

func TestMissingField_NamesField(t *testing.T) {
	e := serdes.MissingField("port")
	if e.Code != serdes.CodeMissingField {
		t.Fatalf("code: %s", e.Code)
	}
	if e.Message != "Object contains no field named 'port'." {
		t.Fatalf("message: %q", e.Message)
	}
}

func TestMissingField_Localized(t *testing.T) {
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	if e := serdes.MissingField("port"); !strings.Contains(e.Message, "port") {
		t.Fatalf("localized message should still name the field: %q", e.Message)
	}
}

func TestWithPathPrefix_Nests(t *testing.T) {
	var err error = serdes.MissingField("id")
	err = serdes.WithPathPrefix(err, "items")
	err = serdes.WithPathPrefix(err, "order")
	e, ok := serdes.AsError(err)
	if !ok {
		t.Fatalf("expected *serdes.Error")
	}
	if e.Path != "/order/items" {
		t.Fatalf("path: %q", e.Path)
	}
	if e.Code != serdes.CodeMissingField {
		t.Fatalf("code changed: %s", e.Code)
	}
	if got := e.Error(); got != "Object contains no field named 'id'. (at /order/items)" {
		t.Fatalf("Error(): %q", got)
	}
}

func TestWithPathPrefix_DoesNotMutateOriginal(t *testing.T) {
	orig := serdes.MissingField("id")
	_ = serdes.WithPathPrefix(orig, "a")
	if orig.Path != "" {
		t.Fatalf("original mutated: %q", orig.Path)
	}
}

func TestWithPathPrefix_EscapesTokens(t *testing.T) {
	err := serdes.WithPathPrefix(serdes.ShapeMismatch("map"), "a/b~c")
	e, _ := serdes.AsError(err)
	if e.Path != "/a~1b~0c" {
		t.Fatalf("path: %q", e.Path)
	}
}

func TestWithPathPrefix_WrapsForeignErrors(t *testing.T) {
	cause := errors.New("disk on fire")
	err := serdes.WithPathPrefix(cause, "x")
	e, ok := serdes.AsError(err)
	if !ok || e.Code != serdes.CodeParseError || e.Path != "/x" {
		t.Fatalf("unexpected: %#v", e)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost")
	}
}

func TestCoercion_PassesDiagnosticsThrough(t *testing.T) {
	inner := serdes.MissingField("x")
	if got := serdes.Coercion(inner); got != inner {
		t.Fatalf("existing diagnostic should pass through")
	}
	e := serdes.Coercion(errors.New("bad digit"))
	if e.Code != serdes.CodeCoercion || e.Message != "bad digit" {
		t.Fatalf("unexpected: %#v", e)
	}
}
