package codec

import (
	"encoding"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/reoring/serdes"
)

// TimeRFC3339 returns a Parser that carries time.Time as an RFC 3339 string.
// Output is normalized to UTC.
func TimeRFC3339() serdes.Parser[time.Time] {
	return Convert(serdes.BasicParser[string](), parseRFC3339, formatRFC3339Canonical)
}

// Duration returns a Parser that carries time.Duration in its String form
// ("1h30m").
func Duration() serdes.Parser[time.Duration] {
	return Convert(serdes.BasicParser[string](), parseDuration, time.Duration.String)
}

// Text returns a Parser for a type implementing the encoding text interfaces,
// carried as a string.
func Text[T any, PT interface {
	*T
	encoding.TextMarshaler
	encoding.TextUnmarshaler
}]() serdes.Parser[T] {
	return Convert(serdes.BasicParser[string](),
		func(s string) (T, error) {
			var v T
			err := PT(&v).UnmarshalText([]byte(s))
			return v, err
		},
		func(v T) string {
			b, err := PT(&v).MarshalText()
			if err != nil {
				serdes.L().Error("codec: MarshalText failed", zap.Error(err))
			}
			return string(b)
		})
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, errors.Wrapf(err, "invalid RFC3339 time %q", s)
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration %q", s)
	}
	return d, nil
}
