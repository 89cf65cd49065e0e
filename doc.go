// Package serdes converts between typed Go values and tree-shaped documents
// without duplicating traversal logic per format.
//
// Package serdes provides:
//
// - Reader and Writer contracts that every format backend implements
// - A shape-driven Parser family (Option, pointer, ref.Shared, ref.Ref,
// primitives, slices, maps, structs, dynamic values)
// - Result, a short-circuiting success-or-diagnostic container
// - A reflect.Type-keyed registry that builds Parsers once per type
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place backends under format/, ready-made parsers under codec/, and the CLI under cmd/serdes.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	res := yaml.Read[Config](data)
//	cfg, err := res.Value()
//
//	out, err := json.Write(cfg)
//
// Backends own the format; this package only walks the value's shape and
// asks the backend to classify, extract, open, and close nodes.
package serdes
