package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode  Phase = "encode"  // value to SCALE bytes
	PhaseResolve Phase = "resolve" // type lookups and imports
	PhaseLoad    Phase = "load"    // registry documents
	PhaseParse   Phase = "parse"   // value documents
	PhaseRuntime Phase = "runtime" // guest memory operations
)

// Kind categorizes the error
type Kind string

const (
	KindTypeResolving     Kind = "type_resolving"
	KindTypeNotFound      Kind = "type_not_found"
	KindWrongShape        Kind = "wrong_shape"
	KindWrongLength       Kind = "wrong_length"
	KindNumberOutOfRange  Kind = "number_out_of_range"
	KindCannotFindVariant Kind = "variant_not_found"
	KindCannotFindField   Kind = "field_not_found"
	KindCustom            Kind = "custom"
	KindInvalidData       Kind = "invalid_data"
	KindUnsupported       Kind = "unsupported"
	KindNotFound          Kind = "not_found"
	KindAllocation        Kind = "allocation"
	KindOutOfBounds       Kind = "out_of_bounds"
)

// Error is the structured error type used throughout the module.
//
// Path is stored root first. Frames add their location through At, which
// returns a copy; an Error is never modified once returned.
type Error struct {
	Value       any
	Cause       error
	Phase       Phase
	Kind        Kind
	TypeID      string
	Name        string
	Detail      string
	Path        []Location
	ActualLen   int
	ExpectedLen int
	Shape       Shape
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.PathString())
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// PathString renders the location path root first, e.g. "items[2].name".
func (e *Error) PathString() string {
	return FormatPath(e.Path)
}

// At returns a copy of e with loc prepended to its path.
func (e *Error) At(loc Location) *Error {
	cp := *e
	cp.Path = make([]Location, 0, len(e.Path)+1)
	cp.Path = append(cp.Path, loc)
	cp.Path = append(cp.Path, e.Path...)
	return &cp
}

// AtIndex prepends a positional location.
func (e *Error) AtIndex(i int) *Error {
	return e.At(Index(i))
}

// AtField prepends a field name location.
func (e *Error) AtField(name string) *Error {
	return e.At(Name(name))
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path
func (b *Builder) Path(path ...Location) *Builder {
	b.err.Path = path
	return b
}

// TypeID sets the target type identifier
func (b *Builder) TypeID(id any) *Builder {
	b.err.TypeID = fmt.Sprint(id)
	return b
}

// Shape sets the source shape
func (b *Builder) Shape(s Shape) *Builder {
	b.err.Shape = s
	return b
}

// Name sets the field or variant name
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Encoding constructors

// TypeResolving creates an error for a resolver that failed to answer
func TypeResolving(typeID any, cause error) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindTypeResolving,
		TypeID: fmt.Sprint(typeID),
		Detail: fmt.Sprintf("cannot resolve type %v", typeID),
		Cause:  cause,
	}
}

// TypeNotFound creates an error for an id the resolver does not know
func TypeNotFound(typeID any) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindTypeNotFound,
		TypeID: fmt.Sprint(typeID),
		Detail: fmt.Sprintf("type %v not found", typeID),
	}
}

// WrongShape creates an error for a source shape the target cannot hold
func WrongShape(actual Shape, typeID any) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindWrongShape,
		Shape:  actual,
		TypeID: fmt.Sprint(typeID),
		Detail: fmt.Sprintf("cannot encode %s into type %v", actual, typeID),
	}
}

// WrongLength creates a length mismatch error
func WrongLength(actual, expected int) *Error {
	return &Error{
		Phase:       PhaseEncode,
		Kind:        KindWrongLength,
		ActualLen:   actual,
		ExpectedLen: expected,
		Detail:      fmt.Sprintf("length %d does not match expected length %d", actual, expected),
	}
}

// NumberOutOfRange creates a failed narrowing error
func NumberOutOfRange(value string, typeID any) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindNumberOutOfRange,
		Value:  value,
		TypeID: fmt.Sprint(typeID),
		Detail: fmt.Sprintf("number %s is out of range for type %v", value, typeID),
	}
}

// CannotFindVariant creates an error for a variant name missing from the target
func CannotFindVariant(name string, typeID any) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindCannotFindVariant,
		Name:   name,
		TypeID: fmt.Sprint(typeID),
		Detail: fmt.Sprintf("variant %q not found in type %v", name, typeID),
	}
}

// CannotFindField creates an error for a target field the source does not supply
func CannotFindField(name string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindCannotFindField,
		Name:   name,
		Detail: fmt.Sprintf("field %q not found in source value", name),
	}
}

// Custom wraps a collaborator-defined failure
func Custom(cause error) *Error {
	return &Error{
		Phase: PhaseEncode,
		Kind:  KindCustom,
		Cause: cause,
	}
}

// Customf creates a custom error from a message
func Customf(format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindCustom,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Other constructors

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []Location, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Name:   name,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size, align uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(offset, length, size uint32) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindOutOfBounds,
		Value:  offset,
		Detail: fmt.Sprintf("range [%d, %d) exceeds memory size %d", offset, uint64(offset)+uint64(length), size),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a registry loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
