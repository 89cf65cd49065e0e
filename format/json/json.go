// Package json is the JSON backend. Input is tokenized by the selected
// Driver, checked by the enforcement layer (duplicate keys, nesting depth,
// input size) and assembled into an ordered tree that Reader walks. Writer
// streams JSON text.
//
// JSON has no NaN or infinity. Writer emits null for them, so such a value
// does not read back into a float64; decode into *float64 or
// serdes.Option[float64] when it may occur.
//
// Types whose pointer implements json.Unmarshaler decode through
// UnmarshalJSON.
package json

import (
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/reoring/serdes"
	eng "github.com/reoring/serdes/internal/engine"
)

// Read parses data and decodes it into a T.
func Read[T any](data []byte, opts ...serdes.ReadOpt) serdes.Result[T] {
	root, err := Parse(data, opts...)
	if err != nil {
		return serdes.Fail[T](err)
	}
	return serdes.Read[T](NewReader(opts...), root)
}

// ReadFrom is Read over an io.Reader.
func ReadFrom[T any](src io.Reader, opts ...serdes.ReadOpt) serdes.Result[T] {
	limit := serdes.LastReadOpt(opts).Strictness.MaxBytes
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return serdes.Fail[T](parseError(errors.WithStack(err)))
	}
	return Read[T](data, opts...)
}

// Write encodes v as a JSON document.
func Write[T any](v T, opts ...serdes.WriteOpt) ([]byte, error) {
	w := NewWriter(opts...)
	if err := serdes.Write(w, v); err != nil {
		return nil, err
	}
	return w.Bytes()
}

// maxNestedLevels bounds nesting when no MaxDepth is configured.
const maxNestedLevels = 1024

// Parse tokenizes data into a document tree, applying the strictness options.
// Duplicate keys under SeverityWarn are logged and the later member wins.
// Without a MaxDepth, nesting is limited to 1024 levels.
func Parse(data []byte, opts ...serdes.ReadOpt) (serdes.InputVar, error) {
	st := serdes.LastReadOpt(opts).Strictness
	if st.MaxDepth <= 0 {
		st.MaxDepth = maxNestedLevels
	}
	if st.MaxBytes > 0 && int64(len(data)) > st.MaxBytes {
		return serdes.InputVar{}, serdes.Errorf(serdes.CodeTruncated, "max bytes exceeded (%d > %d)", len(data), st.MaxBytes)
	}
	src := eng.WrapWithEnforcement(newTokenSource(data), eng.EnforceOptions{
		OnDuplicate: duplicateStrictness(st.OnDuplicateKey),
		MaxDepth:    st.MaxDepth,
		MaxBytes:    st.MaxBytes,
		IssueSink: func(is eng.Issue) {
			if is.Code == eng.CodeDuplicateKey && st.OnDuplicateKey == serdes.SeverityWarn {
				serdes.L().Warn("serdes/json: duplicate key", zap.String("path", is.Path), zap.String("message", is.Message))
			}
		},
	})
	root, err := eng.Build(src)
	if err != nil {
		return serdes.InputVar{}, convertError(err)
	}
	return serdes.NewInputVar(root), nil
}

func duplicateStrictness(s serdes.Severity) eng.DuplicateStrictness {
	switch s {
	case serdes.SeverityWarn:
		return eng.DupWarn
	case serdes.SeverityError:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}

func convertError(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		e := serdes.NewError(ie.Code, ie.Message)
		e.Path = ie.Path
		e.Offset = ie.Offset
		return e
	}
	return parseError(err)
}

func parseError(err error) *serdes.Error {
	e := serdes.NewError(serdes.CodeParseError, err.Error())
	e.Cause = err
	return e
}
