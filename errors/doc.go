// Package errors provides structured error types for the scale-encode module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Encoding errors carry a location path describing where in a nested value the
// failure happened, plus the target type id and the offending shape, name or value.
//
// Encoding failures are created at the leaf and gain one Location per enclosing
// frame as they propagate:
//
//	err := errors.WrongShape(errors.ShapeBool, 7)
//	return err.AtField("flags").AtIndex(2)
//
// Use the Builder for other structured errors:
//
//	err := errors.New(errors.PhaseLoad, errors.KindInvalidData).
//		Name("Point").
//		Detail("unknown type reference %q", ref).
//		Build()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
