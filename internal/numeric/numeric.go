// Package numeric models source integers as 128-bit values and performs the
// checked narrowing conversions into target integer widths.
package numeric

import (
	"math"
	"math/big"
	"strconv"
)

// Int is a 128-bit integer. When Signed is set, Hi:Lo is two's complement;
// otherwise it is an unsigned magnitude. Every Go integer and every value in
// [-2^127, 2^128) is representable.
type Int struct {
	Hi, Lo uint64
	Signed bool
}

// FromInt64 returns v as a signed Int.
func FromInt64(v int64) Int {
	hi := uint64(0)
	if v < 0 {
		hi = math.MaxUint64
	}
	return Int{Hi: hi, Lo: uint64(v), Signed: true}
}

// FromUint64 returns v as an unsigned Int.
func FromUint64(v uint64) Int {
	return Int{Lo: v}
}

var (
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	mask64  = new(big.Int).SetUint64(math.MaxUint64)
)

// FromBig converts b. It reports false when b lies outside [-2^127, 2^128).
func FromBig(b *big.Int) (Int, bool) {
	if b.Sign() >= 0 {
		if b.Cmp(maxU128) > 0 {
			return Int{}, false
		}
		lo := new(big.Int).And(b, mask64).Uint64()
		hi := new(big.Int).Rsh(b, 64).Uint64()
		return Int{Hi: hi, Lo: lo}, true
	}
	if b.Cmp(minI128) < 0 {
		return Int{}, false
	}
	// two's complement: 2^128 + b
	u := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 128), b)
	lo := new(big.Int).And(u, mask64).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	return Int{Hi: hi, Lo: lo, Signed: true}, true
}

// Negative reports whether n < 0.
func (n Int) Negative() bool {
	return n.Signed && n.Hi>>63 == 1
}

// Big returns n as a big.Int.
func (n Int) Big() *big.Int {
	b := new(big.Int).SetUint64(n.Hi)
	b.Lsh(b, 64)
	b.Or(b, new(big.Int).SetUint64(n.Lo))
	if n.Negative() {
		b.Sub(b, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return b
}

func (n Int) String() string {
	switch {
	case n.Negative() && n.Hi == math.MaxUint64 && n.Lo>>63 == 1:
		return strconv.FormatInt(int64(n.Lo), 10)
	case !n.Negative() && n.Hi == 0:
		return strconv.FormatUint(n.Lo, 10)
	default:
		return n.Big().String()
	}
}

// FitsUnsigned reports whether n is within [0, 2^width). width is 8..128.
func (n Int) FitsUnsigned(width int) bool {
	if n.Negative() {
		return false
	}
	switch {
	case width >= 128:
		return true
	case width == 64:
		return n.Hi == 0
	default:
		return n.Hi == 0 && n.Lo < 1<<uint(width)
	}
}

// FitsSigned reports whether n is within [-2^(width-1), 2^(width-1)). width is 8..128.
func (n Int) FitsSigned(width int) bool {
	if width >= 128 {
		// unsigned values with the top bit set exceed i128
		return n.Signed || n.Hi>>63 == 0
	}
	if n.Negative() {
		if n.Hi != math.MaxUint64 || int64(n.Lo) >= 0 {
			return false
		}
		return width == 64 || int64(n.Lo) >= -(int64(1)<<(width-1))
	}
	return n.Hi == 0 && n.Lo <= 1<<uint(width-1)-1
}

// Fits reports whether n can be represented in an integer of the given width
// and signedness.
func (n Int) Fits(width int, signed bool) bool {
	if signed {
		return n.FitsSigned(width)
	}
	return n.FitsUnsigned(width)
}
