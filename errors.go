package serdes

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/reoring/serdes/i18n"
)

// Diagnostic codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMissingField      = "missing_field"
	CodeShapeMismatch     = "shape_mismatch"
	CodeCoercion          = "coercion"
	CodeCustomConstructor = "custom_constructor"
	// Backend document and enforcement failures
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
	// No Parser can be built for a Go type
	CodeUnsupportedType = "unsupported_type"
)

// Error is the single diagnostic type carried by a failed Result.
type Error struct {
	Code    string // One of the codes listed above.
	Path    string // JSON Pointer from the decode root (for example: /items/2/price); "" is the root.
	Message string
	Offset  int64 // Byte offset in the input (-1 when unknown).
	Cause   error // Optional: underlying backend error.
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Path)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an Error with an explicit message.
func NewError(code, msg string) *Error {
	return &Error{Code: code, Message: msg, Offset: -1}
}

// Errorf builds an Error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// MissingField reports that an object has no member with the given name.
// The message names the field.
func MissingField(name string) *Error {
	return NewError(CodeMissingField, i18n.T(CodeMissingField, map[string]string{"field": name}))
}

// ShapeMismatch reports that a node is not of the expected shape ("sequence",
// "map", "scalar", ...).
func ShapeMismatch(kind string) *Error {
	return NewError(CodeShapeMismatch, i18n.T(CodeShapeMismatch, map[string]string{"kind": kind}))
}

// Coercion converts a backend conversion failure into a diagnostic that keeps
// the backend's own text.
func Coercion(cause error) *Error {
	if e, ok := AsError(cause); ok {
		return e
	}
	e := NewError(CodeCoercion, cause.Error())
	e.Cause = cause
	return e
}

// UnsupportedType reports that no Parser exists for the named Go type.
func UnsupportedType(typeName string) *Error {
	return NewError(CodeUnsupportedType, i18n.T(CodeUnsupportedType, map[string]string{"type": typeName}))
}

// AsError extracts an *Error from err using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err carries a diagnostic with the given code.
func IsCode(err error, code string) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// WithPathPrefix rebases the diagnostic in err under the given path segment.
// Code, message and cause are kept as they are. Errors that are not
// diagnostics are wrapped as parse_error first.
func WithPathPrefix(err error, segment string) error {
	if err == nil {
		return nil
	}
	e, ok := AsError(err)
	if !ok {
		e = NewError(CodeParseError, err.Error())
		e.Cause = err
	}
	cp := *e
	cp.Path = JoinPointer("/"+escapePointerToken(segment), e.Path)
	return &cp
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointerToken(s string) string {
	return pointerEscaper.Replace(s)
}

// JoinPointer concatenates two JSON Pointers. Either side may be empty.
func JoinPointer(base, rest string) string {
	if rest == "" || rest == "/" {
		return base
	}
	if base == "" || base == "/" {
		return rest
	}
	return base + rest
}
