// Package scaletype defines the target type vocabulary used by the encoder.
//
// A type is identified by an opaque ID and resolved through a Resolver into a
// Type descriptor of one of eight kinds: primitive, compact integer, tuple,
// array, sequence, composite, variant or bit sequence.
//
// Registry is the in-memory Resolver shipped with the module. It can be built
// directly:
//
//	reg := scaletype.NewRegistry()
//	u8 := reg.Primitive(scaletype.U8)
//	point := reg.Define("Point", scaletype.CompositeOf(
//		scaletype.Field{Name: "x", Type: u8},
//		scaletype.Field{Name: "y", Type: u8},
//	))
//
// loaded from a YAML document with LoadYAML, or populated from WIT types with
// an Importer.
package scaletype
