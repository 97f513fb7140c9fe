// Package codec implements the SCALE byte primitives: little-endian fixed-width
// integers, booleans, compact integers, length-prefixed strings and packed
// bit sequences. All functions append to and return the destination slice.
package codec

import (
	"encoding/binary"
	"math/bits"
)

// Compact mode markers in the two low bits of the first byte.
const (
	compactSingle = 0b00
	compactTwo    = 0b01
	compactFour   = 0b10
	compactBig    = 0b11
)

// AppendBool appends 0x01 or 0x00.
func AppendBool(out []byte, v bool) []byte {
	if v {
		return append(out, 1)
	}
	return append(out, 0)
}

// AppendU8 appends a single byte.
func AppendU8(out []byte, v uint8) []byte {
	return append(out, v)
}

// AppendU16 appends v little-endian.
func AppendU16(out []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(out, v)
}

// AppendU32 appends v little-endian.
func AppendU32(out []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(out, v)
}

// AppendU64 appends v little-endian.
func AppendU64(out []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(out, v)
}

// AppendU128 appends the 128-bit value hi:lo little-endian.
func AppendU128(out []byte, hi, lo uint64) []byte {
	out = binary.LittleEndian.AppendUint64(out, lo)
	return binary.LittleEndian.AppendUint64(out, hi)
}

// AppendUint appends the low width bytes of hi:lo little-endian.
// width must be 1, 2, 4, 8 or 16.
func AppendUint(out []byte, hi, lo uint64, width int) []byte {
	switch width {
	case 1:
		return AppendU8(out, uint8(lo))
	case 2:
		return AppendU16(out, uint16(lo))
	case 4:
		return AppendU32(out, uint32(lo))
	case 8:
		return AppendU64(out, lo)
	default:
		return AppendU128(out, hi, lo)
	}
}

// AppendCompact appends v in the compact integer format.
func AppendCompact(out []byte, v uint64) []byte {
	switch {
	case v < 1<<6:
		return append(out, byte(v<<2)|compactSingle)
	case v < 1<<14:
		return binary.LittleEndian.AppendUint16(out, uint16(v<<2)|compactTwo)
	case v < 1<<30:
		return binary.LittleEndian.AppendUint32(out, uint32(v<<2)|compactFour)
	default:
		n := (bits.Len64(v) + 7) / 8
		if n < 4 {
			n = 4
		}
		out = append(out, byte((n-4)<<2)|compactBig)
		for i := 0; i < n; i++ {
			out = append(out, byte(v>>(8*i)))
		}
		return out
	}
}

// AppendCompact128 appends the 128-bit value hi:lo in the compact integer format.
func AppendCompact128(out []byte, hi, lo uint64) []byte {
	if hi == 0 {
		return AppendCompact(out, lo)
	}
	n := 8 + (bits.Len64(hi)+7)/8
	out = append(out, byte((n-4)<<2)|compactBig)
	out = binary.LittleEndian.AppendUint64(out, lo)
	for i := 0; i < n-8; i++ {
		out = append(out, byte(hi>>(8*i)))
	}
	return out
}

// CompactLen returns the number of bytes AppendCompact would write for v.
func CompactLen(v uint64) int {
	switch {
	case v < 1<<6:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<30:
		return 4
	default:
		n := (bits.Len64(v) + 7) / 8
		if n < 4 {
			n = 4
		}
		return 1 + n
	}
}

// AppendStr appends the compact byte length of s followed by its bytes.
func AppendStr(out []byte, s string) []byte {
	out = AppendCompact(out, uint64(len(s)))
	return append(out, s...)
}

// AppendBytes appends the compact length of b followed by b.
func AppendBytes(out []byte, b []byte) []byte {
	out = AppendCompact(out, uint64(len(b)))
	return append(out, b...)
}

// AppendBits appends n bits as a compact bit count followed by store words of
// storeBits bits each, little-endian. In Lsb0 order bit i occupies bit
// i%storeBits of its word; with msb0 it occupies bit storeBits-1-i%storeBits.
func AppendBits(out []byte, n int, bit func(i int) bool, storeBits int, msb0 bool) []byte {
	out = AppendCompact(out, uint64(n))
	words := (n + storeBits - 1) / storeBits
	for w := 0; w < words; w++ {
		var word uint64
		for j := 0; j < storeBits; j++ {
			i := w*storeBits + j
			if i >= n {
				break
			}
			if !bit(i) {
				continue
			}
			if msb0 {
				word |= 1 << (storeBits - 1 - j)
			} else {
				word |= 1 << j
			}
		}
		out = AppendUint(out, 0, word, storeBits/8)
	}
	return out
}
