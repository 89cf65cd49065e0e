package cli

import (
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/reoring/serdes"
	sjson "github.com/reoring/serdes/format/json"
)

// Config is the TOML configuration file:
//
//	jobs = 4
//
//	[read]
//	duplicate_keys = "error" # ignore | warn | error
//	max_depth = 64
//	max_bytes = 1048576
//	keys = "reject"          # skip | reject
//	coerce_strings = false
//	json_driver = "go-json"  # go-json | encoding/json
//
//	[write]
//	indent = 2
type Config struct {
	Jobs  int         `toml:"jobs"`
	Read  ReadConfig  `toml:"read"`
	Write WriteConfig `toml:"write"`
}

// ReadConfig maps onto serdes.ReadOpt.
type ReadConfig struct {
	DuplicateKeys string `toml:"duplicate_keys"`
	MaxDepth      int    `toml:"max_depth"`
	MaxBytes      int64  `toml:"max_bytes"`
	Keys          string `toml:"keys"`
	CoerceStrings bool   `toml:"coerce_strings"`
	JSONDriver    string `toml:"json_driver"`
}

// WriteConfig maps onto serdes.WriteOpt.
type WriteConfig struct {
	Indent int `toml:"indent"`
}

// DefaultConfig is used when no file is given.
func DefaultConfig() Config {
	return Config{
		Read: ReadConfig{
			DuplicateKeys: "warn",
			Keys:          "skip",
			JSONDriver:    string(sjson.DriverGoJSON),
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Unknown keys are
// errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return Config{}, errors.Newf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if _, err := cfg.ReadOpt(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

var severities = map[string]serdes.Severity{
	"ignore": serdes.SeverityIgnore,
	"warn":   serdes.SeverityWarn,
	"error":  serdes.SeverityError,
}

var keyPolicies = map[string]serdes.KeyPolicy{
	"skip":   serdes.KeySkip,
	"reject": serdes.KeyReject,
}

// ReadOpt converts the [read] table.
func (c Config) ReadOpt() (serdes.ReadOpt, error) {
	sev, ok := severities[c.Read.DuplicateKeys]
	if !ok {
		return serdes.ReadOpt{}, errors.Newf("duplicate_keys must be one of %s, got %q", choices(severities), c.Read.DuplicateKeys)
	}
	keys, ok := keyPolicies[c.Read.Keys]
	if !ok {
		return serdes.ReadOpt{}, errors.Newf("keys must be one of %s, got %q", choices(keyPolicies), c.Read.Keys)
	}
	return serdes.ReadOpt{
		Strictness: serdes.Strictness{
			OnDuplicateKey: sev,
			MaxDepth:       c.Read.MaxDepth,
			MaxBytes:       c.Read.MaxBytes,
		},
		Keys:          keys,
		CoerceStrings: c.Read.CoerceStrings,
	}, nil
}

// WriteOpt converts the [write] table.
func (c Config) WriteOpt() serdes.WriteOpt {
	return serdes.WriteOpt{Indent: c.Write.Indent}
}

func choices[V any](m map[string]V) string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}
