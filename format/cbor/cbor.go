// Package cbor is the binary backend, encoding documents as CBOR (RFC 8949)
// with fxamacker/cbor. Output is deterministic: map members are emitted in
// core deterministic order regardless of the order they were written in.
//
// Types whose pointer implements cbor.Unmarshaler decode through
// UnmarshalCBOR.
package cbor

import (
	"io"
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/reoring/serdes"
)

var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		ShortestFloat: cbor.ShortestFloat16,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

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

// Write encodes v as a CBOR data item.
func Write[T any](v T, opts ...serdes.WriteOpt) ([]byte, error) {
	w := NewWriter(opts...)
	if err := serdes.Write(w, v); err != nil {
		return nil, err
	}
	return w.Bytes()
}

// maxNestedLevels bounds decoder recursion when no MaxDepth is configured.
const maxNestedLevels = 1024

// Parse decodes one CBOR data item, applying the strictness options.
func Parse(data []byte, opts ...serdes.ReadOpt) (serdes.InputVar, error) {
	st := serdes.LastReadOpt(opts).Strictness
	if st.MaxBytes > 0 && int64(len(data)) > st.MaxBytes {
		return serdes.InputVar{}, serdes.Errorf(serdes.CodeTruncated, "max bytes exceeded (%d > %d)", len(data), st.MaxBytes)
	}
	dup := cbor.DupMapKeyQuiet
	if st.OnDuplicateKey != serdes.SeverityIgnore {
		dup = cbor.DupMapKeyEnforcedAPF
	}
	root, err := decode(data, dup)
	var de *cbor.DupMapKeyError
	if err != nil && errors.As(err, &de) {
		if st.OnDuplicateKey == serdes.SeverityError {
			e := serdes.NewError(serdes.CodeDuplicateKey, de.Error())
			e.Cause = err
			return serdes.InputVar{}, e
		}
		serdes.L().Warn("serdes/cbor: duplicate key", zap.Error(de))
		root, err = decode(data, cbor.DupMapKeyQuiet)
	}
	if err != nil {
		return serdes.InputVar{}, parseError(err)
	}
	if st.MaxDepth > 0 {
		if path, ok := withinDepth(root, "", 1, st.MaxDepth); !ok {
			e := serdes.NewError(serdes.CodeParseError, "max depth exceeded")
			e.Path = path
			return serdes.InputVar{}, e
		}
	}
	return serdes.NewInputVar(item{root}), nil
}

func decode(data []byte, dup cbor.DupMapKeyMode) (any, error) {
	dm, err := cbor.DecOptions{
		DupMapKey:       dup,
		MaxNestedLevels: maxNestedLevels,
		DefaultMapType:  reflect.TypeFor[map[any]any](),
	}.DecMode()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var v any
	if err := dm.Unmarshal(data, &v); err != nil {
		return nil, errors.WithStack(err)
	}
	return v, nil
}

func withinDepth(x any, path string, depth, limit int) (string, bool) {
	switch c := untag(x).(type) {
	case []any:
		if depth > limit {
			return path, false
		}
		for i, e := range c {
			if p, ok := withinDepth(e, path+"/"+strconv.Itoa(i), depth+1, limit); !ok {
				return p, false
			}
		}
	case map[any]any:
		if depth > limit {
			return path, false
		}
		for k, v := range c {
			key, _ := k.(string)
			if p, ok := withinDepth(v, path+"/"+key, depth+1, limit); !ok {
				return p, false
			}
		}
	}
	return path, true
}

func parseError(err error) *serdes.Error {
	e := serdes.NewError(serdes.CodeParseError, err.Error())
	e.Cause = err
	return e
}
