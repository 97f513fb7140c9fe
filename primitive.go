package scaleencode

import (
	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/internal/codec"
	"github.com/wippyai/scale-encode/internal/numeric"
	"github.com/wippyai/scale-encode/scaletype"
)

// Char is a Unicode code point. It encodes as a u32.
type Char rune

// EncodeAsTypeTo implements Encodable.
func (c Char) EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	return encodeInteger(numeric.FromInt64(int64(c)), errors.ShapeChar, id, types, out)
}

// Unit is the empty value. It encodes as zero bytes against an empty
// composite or tuple, a zero-length array, or as an empty sequence.
type Unit struct{}

// EncodeAsTypeTo implements Encodable.
func (Unit) EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	return encodeComposite(nil, id, types, out)
}

// primitiveTarget normalizes id and requires the result to be primitive p.
func primitiveTarget(p scaletype.Primitive, shape errors.Shape, id scaletype.ID, types scaletype.Resolver) error {
	target := Normalize(id, types)
	t, err := resolve(target, types)
	if err != nil {
		return err
	}
	if t.Kind != scaletype.KindPrimitive || t.Primitive != p {
		return errors.WrongShape(shape, target)
	}
	return nil
}

func encodeBool(v bool, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	if err := primitiveTarget(scaletype.Bool, errors.ShapeBool, id, types); err != nil {
		return err
	}
	*out = codec.AppendBool(*out, v)
	return nil
}

func encodeStr(v string, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	if err := primitiveTarget(scaletype.Str, errors.ShapeStr, id, types); err != nil {
		return err
	}
	*out = codec.AppendStr(*out, v)
	return nil
}
