package scaletype

import "strings"

// Kind classifies a resolved type descriptor.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindCompact
	KindTuple
	KindArray
	KindSequence
	KindComposite
	KindVariant
	KindBitSequence
)

var kindNames = [...]string{
	KindPrimitive:   "primitive",
	KindCompact:     "compact",
	KindTuple:       "tuple",
	KindArray:       "array",
	KindSequence:    "sequence",
	KindComposite:   "composite",
	KindVariant:     "variant",
	KindBitSequence: "bitsequence",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Primitive is the kind of a primitive target type.
type Primitive uint8

const (
	Bool Primitive = iota
	Str
	U8
	U16
	U32
	U64
	U128
	I8
	I16
	I32
	I64
	I128
)

var primitiveNames = [...]string{
	Bool: "bool",
	Str:  "str",
	U8:   "u8",
	U16:  "u16",
	U32:  "u32",
	U64:  "u64",
	U128: "u128",
	I8:   "i8",
	I16:  "i16",
	I32:  "i32",
	I64:  "i64",
	I128: "i128",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "unknown"
}

// IsUnsigned reports whether p is an unsigned integer kind.
func (p Primitive) IsUnsigned() bool {
	return p >= U8 && p <= U128
}

// IsSigned reports whether p is a signed integer kind.
func (p Primitive) IsSigned() bool {
	return p >= I8 && p <= I128
}

// IsInteger reports whether p is any integer kind.
func (p Primitive) IsInteger() bool {
	return p.IsUnsigned() || p.IsSigned()
}

// Bits returns the width of an integer kind, 0 otherwise.
func (p Primitive) Bits() int {
	switch p {
	case U8, I8:
		return 8
	case U16, I16:
		return 16
	case U32, I32:
		return 32
	case U64, I64:
		return 64
	case U128, I128:
		return 128
	default:
		return 0
	}
}

// ParsePrimitive returns the primitive named s. The WIT spellings
// "string" and "s8".."s64" are accepted as aliases.
func ParsePrimitive(s string) (Primitive, bool) {
	s = strings.ToLower(s)
	switch s {
	case "string":
		return Str, true
	case "s8":
		return I8, true
	case "s16":
		return I16, true
	case "s32":
		return I32, true
	case "s64":
		return I64, true
	}
	for p, name := range primitiveNames {
		if name == s {
			return Primitive(p), true
		}
	}
	return 0, false
}

// BitStore is the word type a bit sequence is packed into.
type BitStore uint8

const (
	StoreU8 BitStore = iota
	StoreU16
	StoreU32
	StoreU64
)

// Bits returns the word width in bits.
func (s BitStore) Bits() int {
	return 8 << s
}

func (s BitStore) String() string {
	switch s {
	case StoreU8:
		return "u8"
	case StoreU16:
		return "u16"
	case StoreU32:
		return "u32"
	case StoreU64:
		return "u64"
	default:
		return "unknown"
	}
}

// BitOrder is the order of bits within a store word.
type BitOrder uint8

const (
	Lsb0 BitOrder = iota
	Msb0
)

func (o BitOrder) String() string {
	if o == Msb0 {
		return "msb0"
	}
	return "lsb0"
}
