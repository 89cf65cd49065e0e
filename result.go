package serdes

// Result holds either a decoded value or the diagnostic explaining why the
// decode failed. Exactly one of the two is populated.
type Result[T any] struct {
	val T
	err error
}

// Ok wraps a successfully decoded value.
func Ok[T any](v T) Result[T] { return Result[T]{val: v} }

// Fail wraps a diagnostic. A nil err is replaced by a parse_error so that the
// result never ends up with neither variant populated.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = NewError(CodeParseError, "serdes: Fail called with nil error")
	}
	return Result[T]{err: err}
}

// OK reports whether the result holds a value.
func (r Result[T]) OK() bool { return r.err == nil }

// Err returns the diagnostic, or nil on success.
func (r Result[T]) Err() error { return r.err }

// Value unpacks the result into the usual Go (value, error) pair.
func (r Result[T]) Value() (T, error) { return r.val, r.err }

// Or returns the value on success and def otherwise.
func (r Result[T]) Or(def T) T {
	if r.err != nil {
		return def
	}
	return r.val
}

// Must returns the value and panics on error.
func (r Result[T]) Must() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.val
}

// Transform applies f to the value of a successful result. An error result is
// propagated unchanged and f is not called.
func Transform[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(f(r.val))
}

// AndThen chains a fallible step after a successful result.
func AndThen[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return f(r.val)
}

// Forward re-types the error of a failed result. It must only be called on
// failed results.
func Forward[U, T any](r Result[T]) Result[U] { return Fail[U](r.err) }
