package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// Issue codes. They match the diagnostic codes of the root package.
const (
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// Issue is a lightweight finding of the enforcement layer.
type Issue struct {
	Code    string
	Path    string // JSON Pointer; "" is the root.
	Message string
	Offset  int64
}

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives every issue, fatal or not. DupWarn issues are only
	// visible here.
	IssueSink func(Issue)
}

// IssueError is the error returned for a fatal Issue.
type IssueError struct{ Issue }

func (e IssueError) Error() string { return e.Issue.Message }

// segment is the position of a value inside its parent container. Paths are
// rendered from the segment stack only when an Issue is raised, so deep
// nesting stays linear.
type segment struct {
	key   string
	index int // -1 for object members.
}

type dupFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	seg          segment // Position of this container in its parent.
	nextIndex    int
	pendingKey   string
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []dupFrame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	seg, hasSeg := e.segmentForToken(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := dupFrame{kind: kindArray, seg: seg}
		if tok.Kind == KindBeginObject {
			f = dupFrame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, seg: seg}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fatal(Issue{Code: CodeParseError, Path: e.renderPath(segment{}, false), Message: "max depth exceeded", Offset: tok.Offset})
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
					is := Issue{Code: CodeDuplicateKey, Path: e.renderPath(seg, hasSeg), Message: "key '" + tok.String + "' duplicated", Offset: tok.Offset}
					if e.opt.OnDuplicate == DupError {
						return Token{}, e.fatal(is)
					}
					e.report(is)
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
				top.pendingKey = tok.String
			}
		}
	case KindString, KindNumber, KindBool, KindNull:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			path := e.renderPath(seg, hasSeg && !isContainerStart(tok.Kind))
			return Token{}, e.fatal(Issue{Code: CodeTruncated, Path: path, Message: "max bytes exceeded", Offset: off})
		}
	}

	return tok, nil
}

func isContainerStart(k Kind) bool { return k == KindBeginObject || k == KindBeginArray }

func (e *enforcingTokenSource) report(is Issue) {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(is)
	}
}

func (e *enforcingTokenSource) fatal(is Issue) error {
	e.report(is)
	return IssueError{is}
}

func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

// segmentForToken returns the position of tok inside the innermost open
// container and advances the array index. Tokens at the root, closing
// delimiters and values in key position have no segment.
func (e *enforcingTokenSource) segmentForToken(tok Token) (segment, bool) {
	if len(e.stack) == 0 {
		return segment{}, false
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		top.pendingKey = tok.String
		return segment{key: tok.String, index: -1}, true
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		if top.kind == kindArray {
			seg := segment{index: top.nextIndex}
			top.nextIndex++
			return seg, true
		}
		if !top.expectingKey {
			return segment{key: top.pendingKey, index: -1}, true
		}
	}
	return segment{}, false
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// renderPath joins the segments of the open containers (the root container
// has none) and, when hasLast is set, last.
func (e *enforcingTokenSource) renderPath(last segment, hasLast bool) string {
	var b strings.Builder
	for i := 1; i < len(e.stack); i++ {
		writeSegment(&b, e.stack[i].seg)
	}
	if hasLast {
		writeSegment(&b, last)
	}
	return b.String()
}

func writeSegment(b *strings.Builder, s segment) {
	b.WriteByte('/')
	if s.index >= 0 {
		b.WriteString(strconv.Itoa(s.index))
		return
	}
	b.WriteString(jsonPointerEscaper.Replace(s.key))
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
