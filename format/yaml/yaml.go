// Package yaml is the YAML backend. Documents are parsed into yaml.Node trees
// with gopkg.in/yaml.v3 and read through Reader; Writer builds a yaml.Node
// tree and encodes it.
//
// Types whose pointer implements yaml.Unmarshaler decode through
// UnmarshalYAML.
package yaml

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reoring/serdes"
)

// Read parses data and decodes its first document into a T.
func Read[T any](data []byte, opts ...serdes.ReadOpt) serdes.Result[T] {
	root, err := Parse(data, opts...)
	if err != nil {
		return serdes.Fail[T](err)
	}
	return serdes.Read[T](NewReader(opts...), root)
}

// ReadFrom is Read over an io.Reader.
func ReadFrom[T any](src io.Reader, opts ...serdes.ReadOpt) serdes.Result[T] {
	data, err := readAll(src, serdes.LastReadOpt(opts).Strictness.MaxBytes)
	if err != nil {
		return serdes.Fail[T](err)
	}
	return Read[T](data, opts...)
}

// ReadAll decodes every document of a multi-document stream into a T. It
// stops at the first failing document; the error path is prefixed with the
// document index.
func ReadAll[T any](src io.Reader, opts ...serdes.ReadOpt) ([]T, error) {
	dec := yaml.NewDecoder(src)
	r := NewReader(opts...)
	st := serdes.LastReadOpt(opts).Strictness
	var out []T
	for i := 0; ; i++ {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			e := serdes.NewError(serdes.CodeParseError, err.Error())
			e.Cause = errors.WithStack(err)
			return nil, serdes.WithPathPrefix(e, strconv.Itoa(i))
		}
		root := resolve(&doc)
		if err := (checker{st: st}).walk(root, "", 1); err != nil {
			return nil, serdes.WithPathPrefix(err, strconv.Itoa(i))
		}
		v, err := serdes.Read[T](r, serdes.NewInputVar(root)).Value()
		if err != nil {
			return nil, serdes.WithPathPrefix(err, strconv.Itoa(i))
		}
		out = append(out, v)
	}
}

// Write encodes v as a YAML document.
func Write[T any](v T, opts ...serdes.WriteOpt) ([]byte, error) {
	w := NewWriter(opts...)
	if err := serdes.Write(w, v); err != nil {
		return nil, err
	}
	return w.Bytes()
}

// Parse decodes the first document of data into a node tree and applies the
// strictness options. An empty document parses as null.
func Parse(data []byte, opts ...serdes.ReadOpt) (serdes.InputVar, error) {
	st := serdes.LastReadOpt(opts).Strictness
	if st.MaxBytes > 0 && int64(len(data)) > st.MaxBytes {
		return serdes.InputVar{}, serdes.Errorf(serdes.CodeTruncated, "max bytes exceeded (%d > %d)", len(data), st.MaxBytes)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		e := serdes.NewError(serdes.CodeParseError, err.Error())
		e.Cause = errors.WithStack(err)
		return serdes.InputVar{}, e
	}
	root := resolve(&doc)
	if root == nil || root.Kind == 0 || root.Kind == yaml.DocumentNode {
		root = &yaml.Node{Kind: yaml.ScalarNode, Tag: nullTag, Value: "null"}
	}
	c := checker{st: st}
	if err := c.walk(root, "", 1); err != nil {
		return serdes.InputVar{}, err
	}
	return serdes.NewInputVar(root), nil
}

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// checker enforces the duplicate key and depth limits on a parsed tree.
type checker struct {
	st serdes.Strictness
}

func (c checker) walk(n *yaml.Node, path string, depth int) error {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if c.st.MaxDepth > 0 && depth > c.st.MaxDepth && (n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode) {
		e := serdes.NewError(serdes.CodeParseError, "max depth exceeded")
		e.Path = path
		return e
	}
	switch n.Kind {
	case yaml.SequenceNode:
		for i, child := range n.Content {
			if err := c.walk(child, path+"/"+strconv.Itoa(i), depth+1); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := resolve(n.Content[i])
			key := k.Value
			child := path + "/" + escape(key)
			if k.Kind == yaml.ScalarNode && c.st.OnDuplicateKey != serdes.SeverityIgnore {
				if pos, dup := first[key]; dup {
					de := &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
					if c.st.OnDuplicateKey == serdes.SeverityError {
						e := serdes.NewError(serdes.CodeDuplicateKey, de.Error())
						e.Path = child
						e.Cause = de
						return e
					}
					serdes.L().Warn("serdes/yaml: duplicate key", zap.String("path", child), zap.Error(de))
				}
				first[key] = [2]int{k.Line, k.Column}
			}
			if err := c.walk(n.Content[i+1], child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escape(s string) string { return pointerEscaper.Replace(s) }

func readAll(src io.Reader, limit int64) ([]byte, error) {
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		e := serdes.NewError(serdes.CodeParseError, err.Error())
		e.Cause = errors.WithStack(err)
		return nil, e
	}
	return data, nil
}
