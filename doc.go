// Package scaleencode encodes dynamic Go values into the SCALE binary format,
// directed by a target type looked up at runtime.
//
// The shape of the source value and the shape of the target type do not have
// to match exactly. The encoder reconciles the two: single-member wrappers are
// seen through, fixed arrays and sequences are interchangeable when lengths
// allow, integers are narrowed with range checks, composites are matched by
// field name when both sides carry names and by position otherwise, and
// variants are selected by name.
//
// # Architecture Overview
//
//	scaleencode/         Root package: entry points, engines, value model
//	├── errors/          Structured errors with a location path
//	├── scaletype/       Type vocabulary, Resolver contract, Registry, importers
//	├── guestmem/        Encoding into wazero guest linear memory
//	├── internal/codec   SCALE byte primitives
//	├── internal/numeric 128-bit integer model and narrowing checks
//	└── cmd/scalenc      Command-line and interactive encoder
//
// # Quick Start
//
//	reg := scaletype.NewRegistry()
//	u64 := reg.Primitive(scaletype.U64)
//	point := reg.Define("Point", scaletype.CompositeOf(
//	    scaletype.Field{Name: "x", Type: u64},
//	    scaletype.Field{Name: "y", Type: u64},
//	))
//
//	out, err := scaleencode.Encode(map[string]any{"y": 2, "x": 1}, point, reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Source Values
//
// Go booleans, strings, integers, *big.Int, byte slices, slices, arrays,
// string-keyed maps and structs are accepted directly. Struct fields are named
// by their `scale` tag or by the snake_case form of the Go field name. The
// Composite, Tuple, Variant, Option, Result, Bits, Char and Unit types cover
// shapes Go values cannot express on their own. Any type can take over its own
// encoding by implementing Encodable.
//
// # Errors
//
// Failures are *errors.Error values carrying a kind and the path from the
// root value to the failing item, for example:
//
//	[encode] number_out_of_range at inner[2]: number 1234 is out of range for type 3
//
// # Thread Safety
//
// Encoding functions are safe for concurrent use as long as the Resolver is.
// Registry is safe for concurrent use.
package scaleencode
