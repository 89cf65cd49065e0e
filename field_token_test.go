package serdes_test

import (
	"testing"

	"github.com/reoring/serdes"
	sjson "github.com/reoring/serdes/format/json"
)

type account struct {
	ID      string  `serdes:"id"`
	Profile profile `json:"profile"`
	Note    string
}

type profile struct {
	Address address `json:"address"`
	Email   string  `json:"e/mail"`
}

type address struct {
	Street string `json:"street"`
	Zip    int    `json:"zip"`
}

func TestFieldKey(t *testing.T) {
	if got := serdes.FieldKey(func(a *account) *string { return &a.ID }); got != "id" {
		t.Fatalf("ID: %q", got)
	}
	if got := serdes.FieldKey(func(a *account) *string { return &a.Note }); got != "Note" {
		t.Fatalf("Note: %q", got)
	}
	if got := serdes.FieldKey(func(a *account) *profile { return &a.Profile }); got != "profile" {
		t.Fatalf("Profile: %q", got)
	}
}

func TestFieldKey_PanicsOnNestedField(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	serdes.FieldKey(func(a *account) *int { return &a.Profile.Address.Zip })
}

func TestPathOf(t *testing.T) {
	cases := []struct{ got, want string }{
		{serdes.PathOf(func(a *account) *string { return &a.ID }), "/id"},
		{serdes.PathOf(func(a *account) *address { return &a.Profile.Address }), "/profile/address"},
		{serdes.PathOf(func(a *account) *string { return &a.Profile.Address.Street }), "/profile/address/street"},
		{serdes.PathOf(func(a *account) *int { return &a.Profile.Address.Zip }), "/profile/address/zip"},
		{serdes.PathOf(func(a *account) *string { return &a.Profile.Email }), "/profile/e~1mail"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}

func TestPathOf_MatchesDiagnosticPath(t *testing.T) {
	res := sjson.Read[account]([]byte(`{"id":"1","Note":"","profile":{"e/mail":"x","address":{"street":"s","zip":"nine"}}}`))
	e, ok := serdes.AsError(res.Err())
	if !ok {
		t.Fatalf("expected diagnostic, got %v", res.Err())
	}
	if want := serdes.PathOf(func(a *account) *int { return &a.Profile.Address.Zip }); e.Path != want {
		t.Fatalf("path %q, want %q", e.Path, want)
	}
}
