package serdes

// Severity expresses how a backend reacts to a recoverable irregularity.
type Severity int

const (
	SeverityIgnore Severity = iota
	SeverityWarn            // Log through L() and continue.
	SeverityError           // Fail the decode.
)

// KeyPolicy controls what happens to object members whose name cannot be read
// as text (for example a YAML sequence used as a mapping key).
type KeyPolicy int

const (
	KeySkip   KeyPolicy = iota // Drop such members silently.
	KeyReject                  // Fail ToObject with a shape_mismatch diagnostic.
)

// Strictness configures enforcement applied while a backend parses its input.
type Strictness struct {
	OnDuplicateKey Severity // Duplicate object keys.
	MaxDepth       int      // 0 keeps the backend's built-in limit (1024 for JSON and CBOR).
	MaxBytes       int64    // 0 disables the input size limit.
}

// ReadOpt bundles decode options shared by the backends. Backends ignore the
// fields that do not apply to their format.
type ReadOpt struct {
	Strictness Strictness
	Keys       KeyPolicy
	// CoerceStrings lets a backend that is strictly typed by default convert
	// string leaves into numbers and booleans on request.
	CoerceStrings bool
}

// WriteOpt bundles encode options shared by the backends.
type WriteOpt struct {
	Indent int // 0 means the backend's compact/default layout.
}

// LastReadOpt returns the last option of opts, or the zero ReadOpt.
func LastReadOpt(opts []ReadOpt) ReadOpt {
	if len(opts) == 0 {
		return ReadOpt{}
	}
	return opts[len(opts)-1]
}

// LastWriteOpt returns the last option of opts, or the zero WriteOpt.
func LastWriteOpt(opts []WriteOpt) WriteOpt {
	if len(opts) == 0 {
		return WriteOpt{}
	}
	return opts[len(opts)-1]
}
