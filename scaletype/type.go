package scaletype

import (
	"strconv"
	"strings"
)

// ID identifies a type in a Resolver. It carries no meaning beyond equality.
type ID uint32

// Field is one member of a composite or variant. An empty Name means unnamed.
type Field struct {
	Name string
	Type ID
}

// Variant is one alternative of a sum type.
type Variant struct {
	Name   string
	Fields []Field
	Index  uint32
}

// Type is a resolved type descriptor. Kind selects which fields are meaningful:
//
//	KindPrimitive    Primitive
//	KindCompact      Elem (inner integer type)
//	KindTuple        Members
//	KindArray        Elem, Len
//	KindSequence     Elem
//	KindComposite    Fields
//	KindVariant      Variants
//	KindBitSequence  Store, Order
type Type struct {
	Name      string
	Members   []ID
	Fields    []Field
	Variants  []Variant
	Len       uint64
	Elem      ID
	Kind      Kind
	Primitive Primitive
	Store     BitStore
	Order     BitOrder
}

// PrimitiveOf returns a primitive descriptor.
func PrimitiveOf(p Primitive) Type {
	return Type{Kind: KindPrimitive, Primitive: p}
}

// CompactOf returns a compact wrapper around an integer type.
func CompactOf(inner ID) Type {
	return Type{Kind: KindCompact, Elem: inner}
}

// TupleOf returns a tuple of the given members.
func TupleOf(members ...ID) Type {
	return Type{Kind: KindTuple, Members: members}
}

// ArrayOf returns a fixed-length array.
func ArrayOf(elem ID, n uint64) Type {
	return Type{Kind: KindArray, Elem: elem, Len: n}
}

// SequenceOf returns a length-prefixed sequence.
func SequenceOf(elem ID) Type {
	return Type{Kind: KindSequence, Elem: elem}
}

// CompositeOf returns a composite with the given fields.
func CompositeOf(fields ...Field) Type {
	return Type{Kind: KindComposite, Fields: fields}
}

// VariantOf returns a sum type with the given alternatives.
func VariantOf(variants ...Variant) Type {
	return Type{Kind: KindVariant, Variants: variants}
}

// BitSequenceOf returns a bit sequence packed into store words in the given order.
func BitSequenceOf(store BitStore, order BitOrder) Type {
	return Type{Kind: KindBitSequence, Store: store, Order: order}
}

// Named returns a copy of t carrying a display name.
func (t Type) Named(name string) Type {
	t.Name = name
	return t
}

// Arity returns the number of members of a tuple or fields of a composite.
func (t *Type) Arity() int {
	switch t.Kind {
	case KindTuple:
		return len(t.Members)
	case KindComposite:
		return len(t.Fields)
	default:
		return -1
	}
}

// HasNamedFields reports whether any composite field carries a name.
func HasNamedFields(fields []Field) bool {
	for _, f := range fields {
		if f.Name != "" {
			return true
		}
	}
	return false
}

// Variant returns the first variant called name.
func (t *Type) Variant(name string) (*Variant, bool) {
	for i := range t.Variants {
		if t.Variants[i].Name == name {
			return &t.Variants[i], true
		}
	}
	return nil, false
}

// DiscriminantSize returns the number of bytes used for the variant index:
// the smallest of 1, 2 or 4 that holds the largest declared index.
func (t *Type) DiscriminantSize() int {
	var maxIndex uint32
	for _, v := range t.Variants {
		if v.Index > maxIndex {
			maxIndex = v.Index
		}
	}
	switch {
	case maxIndex <= 0xFF:
		return 1
	case maxIndex <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

// String renders a short signature, referring to nested types by id.
func (t *Type) String() string {
	var b strings.Builder
	if t.Name != "" {
		b.WriteString(t.Name)
		b.WriteByte(' ')
	}
	switch t.Kind {
	case KindPrimitive:
		b.WriteString(t.Primitive.String())
	case KindCompact:
		b.WriteString("compact<#")
		b.WriteString(strconv.FormatUint(uint64(t.Elem), 10))
		b.WriteByte('>')
	case KindTuple:
		b.WriteByte('(')
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRef(&b, m)
		}
		b.WriteByte(')')
	case KindArray:
		b.WriteByte('[')
		writeRef(&b, t.Elem)
		b.WriteString("; ")
		b.WriteString(strconv.FormatUint(t.Len, 10))
		b.WriteByte(']')
	case KindSequence:
		b.WriteString("vec<")
		writeRef(&b, t.Elem)
		b.WriteByte('>')
	case KindComposite:
		b.WriteByte('{')
		writeFields(&b, t.Fields)
		b.WriteByte('}')
	case KindVariant:
		for i, v := range t.Variants {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(v.Name)
			b.WriteByte('=')
			b.WriteString(strconv.FormatUint(uint64(v.Index), 10))
			if len(v.Fields) > 0 {
				b.WriteByte('(')
				writeFields(&b, v.Fields)
				b.WriteByte(')')
			}
		}
	case KindBitSequence:
		b.WriteString("bits<")
		b.WriteString(t.Store.String())
		b.WriteString(", ")
		b.WriteString(t.Order.String())
		b.WriteByte('>')
	default:
		b.WriteString(t.Kind.String())
	}
	return b.String()
}

func writeRef(b *strings.Builder, id ID) {
	b.WriteByte('#')
	b.WriteString(strconv.FormatUint(uint64(id), 10))
}

func writeFields(b *strings.Builder, fields []Field) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		if f.Name != "" {
			b.WriteString(f.Name)
			b.WriteString(": ")
		}
		writeRef(b, f.Type)
	}
}
