package json

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"

	eng "github.com/reoring/serdes/internal/engine"
	stdjson "github.com/reoring/serdes/internal/source/json"
	"github.com/reoring/serdes/internal/source/gojson"
)

// Driver names the tokenizer the JSON backend parses with.
type Driver string

const (
	// DriverGoJSON tokenizes with goccy/go-json. It is the default.
	DriverGoJSON Driver = "go-json"
	// DriverStdlib tokenizes with encoding/json. It reports byte offsets, so
	// diagnostics carry Offset and MaxBytes is also enforced per token.
	DriverStdlib Driver = "encoding/json"
)

var currentDriver = atomic.NewString(string(DriverGoJSON))

// SetDriver selects the process-wide tokenizer.
func SetDriver(d Driver) error {
	switch d {
	case DriverGoJSON, DriverStdlib:
		currentDriver.Store(string(d))
		return nil
	}
	return errors.Newf("serdes/json: unknown driver %q", d)
}

// CurrentDriver returns the tokenizer in use.
func CurrentDriver() Driver { return Driver(currentDriver.Load()) }

func newTokenSource(data []byte) eng.TokenSource {
	if CurrentDriver() == DriverStdlib {
		return stdjson.NewReader(bytes.NewReader(data))
	}
	return gojson.NewBytes(data)
}
