package scaleencode

import (
	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/internal/codec"
	"github.com/wippyai/scale-encode/internal/numeric"
	"github.com/wippyai/scale-encode/scaletype"
)

func encodeNumber(n numeric.Int, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	return encodeInteger(n, errors.ShapeNumber, id, types, out)
}

// encodeInteger narrows n into the primitive or compact integer id resolves to.
// shape is reported on mismatch so characters keep their own kind.
func encodeInteger(n numeric.Int, shape errors.Shape, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	target := Normalize(id, types)
	t, err := resolve(target, types)
	if err != nil {
		return err
	}

	switch t.Kind {
	case scaletype.KindPrimitive:
		width := t.Primitive.Bits()
		if width == 0 {
			return errors.WrongShape(shape, target)
		}
		if !n.Fits(width, t.Primitive.IsSigned()) {
			return errors.NumberOutOfRange(n.String(), target)
		}
		*out = codec.AppendUint(*out, n.Hi, n.Lo, width/8)
		return nil

	case scaletype.KindCompact:
		inner := Normalize(t.Elem, types)
		it, err := resolve(inner, types)
		if err != nil {
			return err
		}
		if it.Kind != scaletype.KindPrimitive || !it.Primitive.IsUnsigned() {
			return errors.WrongShape(shape, inner)
		}
		if !n.FitsUnsigned(it.Primitive.Bits()) {
			return errors.NumberOutOfRange(n.String(), inner)
		}
		*out = codec.AppendCompact128(*out, n.Hi, n.Lo)
		return nil

	default:
		return errors.WrongShape(shape, target)
	}
}
