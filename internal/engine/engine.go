// Package engine holds the token model shared by the JSON drivers, the
// enforcement layer applied on top of them, and the ordered document tree the
// JSON backend reads from.
package engine

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "begin-object"
	case KindEndObject:
		return "end-object"
	case KindBeginArray:
		return "begin-array"
	case KindEndArray:
		return "end-array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string // Number literal exactly as written.
	Bool   bool
	Offset int64 // -1 when the driver cannot report offsets.
}

// TokenSource is a minimal interface required by the engine. NextToken
// returns io.EOF after the last token.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

// KeyTracker tells object keys apart from string values for drivers whose
// decoder reports both as plain strings.
type KeyTracker struct {
	stack []keyFrame
}

type keyFrame struct {
	kind         containerKind
	expectingKey bool
}

// BeginObject records an opened object.
func (t *KeyTracker) BeginObject() {
	t.stack = append(t.stack, keyFrame{kind: kindObject, expectingKey: true})
}

// BeginArray records an opened array.
func (t *KeyTracker) BeginArray() { t.stack = append(t.stack, keyFrame{kind: kindArray}) }

// End records a closed container, which completes a member value of its
// parent.
func (t *KeyTracker) End() {
	if n := len(t.stack); n > 0 {
		t.stack = t.stack[:n-1]
	}
	t.Value()
}

// Value records a completed scalar value.
func (t *KeyTracker) Value() {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

// String classifies a string token: it reports true when it is an object key.
func (t *KeyTracker) String() bool {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.kind == kindObject && top.expectingKey {
			top.expectingKey = false
			return true
		}
	}
	t.Value()
	return false
}
