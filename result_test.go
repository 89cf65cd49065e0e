package serdes_test

import (
	"errors"
	"testing"

	"github.com/reoring/serdes"
)

func TestTransform_SkipsFunctionOnError(t *testing.T) {
	called := false
	res := serdes.Transform(serdes.Fail[int](serdes.MissingField("x")), func(v int) string {
		called = true
		return "unused"
	})
	if called {
		t.Fatalf("transform function must not run on an error result")
	}
	if !serdes.IsCode(res.Err(), serdes.CodeMissingField) {
		t.Fatalf("error not propagated unchanged: %v", res.Err())
	}
}

func TestTransform_AppliesOnSuccess(t *testing.T) {
	res := serdes.Transform(serdes.Ok(20), func(v int) int { return v + 1 })
	if v, err := res.Value(); err != nil || v != 21 {
		t.Fatalf("got v=%d err=%v", v, err)
	}
}

func TestAndThen_ShortCircuits(t *testing.T) {
	steps := 0
	step := func(v int) serdes.Result[int] {
		steps++
		if v > 1 {
			return serdes.Fail[int](serdes.Errorf(serdes.CodeCoercion, "too big: %d", v))
		}
		return serdes.Ok(v + 1)
	}
	res := serdes.AndThen(serdes.AndThen(serdes.AndThen(serdes.Ok(0), step), step), step)
	if res.OK() {
		t.Fatalf("expected failure")
	}
	if steps != 3 {
		t.Fatalf("expected 3 steps to run, got %d", steps)
	}
	res = serdes.AndThen(res, step)
	if steps != 3 {
		t.Fatalf("step ran after failure")
	}
}

func TestFail_NilErrorStillFails(t *testing.T) {
	res := serdes.Fail[string](nil)
	if res.OK() || !serdes.IsCode(res.Err(), serdes.CodeParseError) {
		t.Fatalf("expected parse_error, got %v", res.Err())
	}
}

func TestResult_OrAndMust(t *testing.T) {
	if got := serdes.Fail[int](errors.New("boom")).Or(7); got != 7 {
		t.Fatalf("Or on error: %d", got)
	}
	if got := serdes.Ok(3).Or(7); got != 3 {
		t.Fatalf("Or on success: %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("Must should panic on error")
		}
	}()
	serdes.Fail[int](errors.New("boom")).Must()
}
