package cli

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/reoring/serdes"
	scbor "github.com/reoring/serdes/format/cbor"
	sjson "github.com/reoring/serdes/format/json"
	syaml "github.com/reoring/serdes/format/yaml"
)

type docWriter interface {
	serdes.Writer
	Bytes() ([]byte, error)
}

// backend bundles what the CLI needs from a format package.
type backend struct {
	name      string
	exts      []string
	parse     func(data []byte, opts ...serdes.ReadOpt) (serdes.InputVar, error)
	newReader func(opt serdes.ReadOpt) serdes.Reader
	newWriter func(opt serdes.WriteOpt) docWriter
}

var backends = []backend{
	{
		name:      "json",
		exts:      []string{".json"},
		parse:     sjson.Parse,
		newReader: func(opt serdes.ReadOpt) serdes.Reader { return sjson.NewReader(opt) },
		newWriter: func(opt serdes.WriteOpt) docWriter { return sjson.NewWriter(opt) },
	},
	{
		name:      "yaml",
		exts:      []string{".yaml", ".yml"},
		parse:     syaml.Parse,
		newReader: func(opt serdes.ReadOpt) serdes.Reader { return syaml.NewReader(opt) },
		newWriter: func(opt serdes.WriteOpt) docWriter { return syaml.NewWriter(opt) },
	},
	{
		name:      "cbor",
		exts:      []string{".cbor"},
		parse:     scbor.Parse,
		newReader: func(opt serdes.ReadOpt) serdes.Reader { return scbor.NewReader(opt) },
		newWriter: func(opt serdes.WriteOpt) docWriter { return scbor.NewWriter(opt) },
	},
}

func backendNames() string {
	return strings.Join(lo.Map(backends, func(b backend, _ int) string { return b.name }), ", ")
}

// lookupBackend resolves a format name. An empty name is resolved from the
// extension of path.
func lookupBackend(name, path string) (backend, error) {
	if name == "" {
		ext := strings.ToLower(filepath.Ext(path))
		b, ok := lo.Find(backends, func(b backend) bool { return slices.Contains(b.exts, ext) })
		if !ok {
			return backend{}, errors.Newf("%s: cannot infer format from extension %q; use --from (%s)", path, ext, backendNames())
		}
		return b, nil
	}
	b, ok := lo.Find(backends, func(b backend) bool { return b.name == strings.ToLower(name) })
	if !ok {
		return backend{}, errors.Newf("unknown format %q (%s)", name, backendNames())
	}
	return b, nil
}

// decode parses data and reads it without a target type.
func (b backend) decode(data []byte, opt serdes.ReadOpt) (any, error) {
	root, err := b.parse(data, opt)
	if err != nil {
		return nil, err
	}
	return serdes.Dynamic().Read(b.newReader(opt), root).Value()
}

// encode writes a value produced by decode.
func (b backend) encode(v any, opt serdes.WriteOpt) ([]byte, error) {
	w := b.newWriter(opt)
	serdes.Dynamic().Write(w, v, serdes.RootParent())
	return w.Bytes()
}

// outputName maps in.json to <dir>/in.<ext of b>.
func (b backend) outputName(dir, in string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(dir, base+b.exts[0])
}
