package scaleencode

import (
	stderrors "errors"

	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/scaletype"
)

// Encodable is implemented by values that encode themselves against a target
// type. Implementations append to *out and must not modify bytes already in it.
type Encodable interface {
	EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error
}

// FieldsEncodable is implemented by values that can encode directly against a
// list of target fields, such as the fields of a variant.
type FieldsEncodable interface {
	EncodeAsFieldsTo(fields []scaletype.Field, types scaletype.Resolver, out *[]byte) error
}

// Encode encodes v as the type id resolved through types and returns the bytes.
func Encode(v any, id scaletype.ID, types scaletype.Resolver) ([]byte, error) {
	var out []byte
	if err := EncodeTo(v, id, types, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeTo appends the encoding of v as type id to *out. On failure *out is
// restored to its original length.
func EncodeTo(v any, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	start := len(*out)
	if err := encodeValue(v, id, types, out); err != nil {
		*out = (*out)[:start]
		return err
	}
	return nil
}

// Encoder binds a Resolver for repeated encoding.
type Encoder struct {
	types scaletype.Resolver
}

// NewEncoder creates an encoder resolving target types through types.
func NewEncoder(types scaletype.Resolver) *Encoder {
	return &Encoder{types: types}
}

// Types returns the encoder's resolver.
func (e *Encoder) Types() scaletype.Resolver {
	return e.types
}

// Encode encodes v as type id.
func (e *Encoder) Encode(v any, id scaletype.ID) ([]byte, error) {
	return Encode(v, id, e.types)
}

// EncodeTo appends the encoding of v as type id to *out.
func (e *Encoder) EncodeTo(v any, id scaletype.ID, out *[]byte) error {
	return EncodeTo(v, id, e.types, out)
}

// resolve looks up id, mapping resolver failures onto the error taxonomy.
func resolve(id scaletype.ID, types scaletype.Resolver) (*scaletype.Type, error) {
	t, err := types.Resolve(id)
	if err != nil {
		if stderrors.Is(err, scaletype.ErrNotFound) {
			return nil, errors.TypeNotFound(id)
		}
		return nil, errors.TypeResolving(id, err)
	}
	if t == nil {
		return nil, errors.TypeNotFound(id)
	}
	return t, nil
}

// at attaches loc to err. Errors from outside the package become Custom.
func at(err error, loc errors.Location) error {
	e, ok := err.(*errors.Error)
	if !ok {
		e = errors.Custom(err)
	}
	return e.At(loc)
}
