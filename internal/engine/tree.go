package engine

import (
	"io"

	"github.com/cockroachdb/errors"
)

// Node is one value of a document built from a TokenSource. Objects keep
// member order and duplicate members.
type Node struct {
	Kind    Kind // KindBeginObject, KindBeginArray or a scalar kind.
	Text    string
	Bool    bool
	Offset  int64
	Members []Member
	Elems   []*Node
}

// Member is one entry of an object Node.
type Member struct {
	Key    string
	Offset int64
	Value  *Node
}

// IsObject reports whether n is an object.
func (n *Node) IsObject() bool { return n.Kind == KindBeginObject }

// IsArray reports whether n is an array.
func (n *Node) IsArray() bool { return n.Kind == KindBeginArray }

// Build reads exactly one top-level value from src. Data after the value is
// an error.
func Build(src TokenSource) (*Node, error) {
	tok, err := src.NextToken()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	root, err := buildValue(src, tok)
	if err != nil {
		return nil, err
	}
	extra, err := src.NextToken()
	switch {
	case err == io.EOF:
		return root, nil
	case err != nil:
		return nil, err
	default:
		return nil, errors.Newf("unexpected %s after top-level value at offset %d", extra.Kind, extra.Offset)
	}
}

func buildValue(src TokenSource, tok Token) (*Node, error) {
	switch tok.Kind {
	case KindBeginObject:
		return buildObject(src, tok.Offset)
	case KindBeginArray:
		return buildArray(src, tok.Offset)
	case KindString:
		return &Node{Kind: KindString, Text: tok.String, Offset: tok.Offset}, nil
	case KindNumber:
		return &Node{Kind: KindNumber, Text: tok.Number, Offset: tok.Offset}, nil
	case KindBool:
		return &Node{Kind: KindBool, Bool: tok.Bool, Offset: tok.Offset}, nil
	case KindNull:
		return &Node{Kind: KindNull, Offset: tok.Offset}, nil
	default:
		return nil, errors.Newf("unexpected %s at offset %d", tok.Kind, tok.Offset)
	}
}

func buildObject(src TokenSource, off int64) (*Node, error) {
	n := &Node{Kind: KindBeginObject, Offset: off}
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return n, nil
		}
		if tok.Kind != KindKey {
			return nil, errors.Newf("expected object key, got %s at offset %d", tok.Kind, tok.Offset)
		}
		vt, err := next(src)
		if err != nil {
			return nil, err
		}
		v, err := buildValue(src, vt)
		if err != nil {
			return nil, err
		}
		n.Members = append(n.Members, Member{Key: tok.String, Offset: tok.Offset, Value: v})
	}
}

func buildArray(src TokenSource, off int64) (*Node, error) {
	n := &Node{Kind: KindBeginArray, Offset: off}
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return n, nil
		}
		v, err := buildValue(src, tok)
		if err != nil {
			return nil, err
		}
		n.Elems = append(n.Elems, v)
	}
}

// next is NextToken where the end of input inside a container is an error.
func next(src TokenSource) (Token, error) {
	tok, err := src.NextToken()
	if err == io.EOF {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}
