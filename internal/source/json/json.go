// Package json is the encoding/json token driver. It is slower than the
// go-json driver but reports byte offsets, which enables MaxBytes enforcement
// while tokenizing and offsets in diagnostics.
package json

import (
	"bytes"
	"encoding/json"
	"io"

	eng "github.com/reoring/serdes/internal/engine"
)

type jsonSource struct {
	dec        *json.Decoder
	keys       eng.KeyTracker
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	off := s.dec.InputOffset()
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.keys.BeginObject()
			return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
		case '}':
			s.keys.End()
			return eng.Token{Kind: eng.KindEndObject, Offset: off}, nil
		case '[':
			s.keys.BeginArray()
			return eng.Token{Kind: eng.KindBeginArray, Offset: off}, nil
		default:
			s.keys.End()
			return eng.Token{Kind: eng.KindEndArray, Offset: off}, nil
		}
	case string:
		if s.keys.String() {
			return eng.Token{Kind: eng.KindKey, String: v, Offset: off}, nil
		}
		return eng.Token{Kind: eng.KindString, String: v, Offset: off}, nil
	case bool:
		s.keys.Value()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: off}, nil
	case json.Number:
		s.keys.Value()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: off}, nil
	}
	s.keys.Value()
	return eng.Token{Kind: eng.KindNull, Offset: off}, nil
}

func (s *jsonSource) Location() int64 { return s.lastOffset }
