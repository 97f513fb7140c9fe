package scaleencode

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/internal/codec"
	"github.com/wippyai/scale-encode/scaletype"
)

// Bits is a sequence of n bits backed by a bitset.
type Bits struct {
	set *bitset.BitSet
	n   int
}

// NewBits uses the first n bits of set. Bits beyond the set's length read as
// zero; a negative n is treated as zero.
func NewBits(set *bitset.BitSet, n int) Bits {
	if set == nil {
		set = bitset.New(0)
	}
	n = max(n, 0)
	return Bits{set: set, n: n}
}

// BitsFrom builds a bit sequence from individual bits, first bit first.
func BitsFrom(bits ...bool) Bits {
	set := bitset.New(uint(len(bits)))
	for i, b := range bits {
		set.SetTo(uint(i), b)
	}
	return Bits{set: set, n: len(bits)}
}

// Len returns the number of bits.
func (b Bits) Len() int {
	return b.n
}

// Test reports whether bit i is set.
func (b Bits) Test(i int) bool {
	return b.set != nil && b.set.Test(uint(i))
}

// EncodeAsTypeTo implements Encodable.
func (b Bits) EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	target := Normalize(id, types)
	t, err := resolve(target, types)
	if err != nil {
		return err
	}
	if t.Kind != scaletype.KindBitSequence {
		return errors.WrongShape(errors.ShapeBitSequence, target)
	}
	*out = codec.AppendBits(*out, b.n, b.Test, t.Store.Bits(), t.Order == scaletype.Msb0)
	return nil
}
