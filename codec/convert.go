// Package codec provides Parsers for types that are carried on the wire as
// another type, typically a string.
package codec

import (
	"github.com/reoring/serdes"
)

// Convert returns a Parser for the domain type D that is transported as the
// wire type W. decode runs after the wire value is read; a failure becomes a
// coercion diagnostic. encode runs before the wire value is written.
func Convert[W, D any](wire serdes.Parser[W], decode func(W) (D, error), encode func(D) W) serdes.Parser[D] {
	return &convertParser[W, D]{wire: wire, decode: decode, encode: encode}
}

type convertParser[W, D any] struct {
	wire   serdes.Parser[W]
	decode func(W) (D, error)
	encode func(D) W
}

func (c *convertParser[W, D]) Read(r serdes.Reader, v serdes.InputVar) serdes.Result[D] {
	return serdes.AndThen(c.wire.Read(r, v), func(w W) serdes.Result[D] {
		d, err := c.decode(w)
		if err != nil {
			return serdes.Fail[D](serdes.Coercion(err))
		}
		return serdes.Ok(d)
	})
}

func (c *convertParser[W, D]) Write(w serdes.Writer, v D, p serdes.Parent) {
	c.wire.Write(w, c.encode(v), p)
}
