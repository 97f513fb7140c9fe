package scaleencode

import (
	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/internal/codec"
	"github.com/wippyai/scale-encode/scaletype"
)

// encodeSequence encodes n values produced by elem against an array or
// sequence target. The target is not normalized, so a length-one array
// stays addressable; one-member tuples and composites are stepped through.
func encodeSequence(n int, elem func(i int) any, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	t, err := resolve(id, types)
	if err != nil {
		return err
	}

	switch t.Kind {
	case scaletype.KindArray:
		if uint64(n) != t.Len {
			return errors.WrongLength(n, int(t.Len))
		}
		return encodeElems(n, elem, t.Elem, types, out)
	case scaletype.KindSequence:
		*out = codec.AppendCompact(*out, uint64(n))
		return encodeElems(n, elem, t.Elem, types, out)
	case scaletype.KindTuple:
		if len(t.Members) == 1 {
			return encodeSequence(n, elem, t.Members[0], types, out)
		}
	case scaletype.KindComposite:
		if len(t.Fields) == 1 {
			return encodeSequence(n, elem, t.Fields[0].Type, types, out)
		}
	}
	return errors.WrongShape(errors.ShapeArray, id)
}

func encodeElems(n int, elem func(i int) any, elemID scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	for i := 0; i < n; i++ {
		if err := encodeValue(elem(i), elemID, types, out); err != nil {
			return at(err, errors.Index(i))
		}
	}
	return nil
}

// encodeBytes writes b without per-element dispatch when the target is a
// byte array or byte sequence, and falls back to encodeSequence otherwise.
func encodeBytes(b []byte, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	t, err := resolve(id, types)
	if err != nil {
		return err
	}
	if (t.Kind == scaletype.KindSequence || (t.Kind == scaletype.KindArray && t.Len == uint64(len(b)))) &&
		isPrimitive(t.Elem, scaletype.U8, types) {
		if t.Kind == scaletype.KindSequence {
			*out = codec.AppendBytes(*out, b)
		} else {
			*out = append(*out, b...)
		}
		return nil
	}
	return encodeSequence(len(b), func(i int) any { return b[i] }, id, types, out)
}

func isPrimitive(id scaletype.ID, p scaletype.Primitive, types scaletype.Resolver) bool {
	t, err := types.Resolve(Normalize(id, types))
	return err == nil && t != nil && t.Kind == scaletype.KindPrimitive && t.Primitive == p
}
