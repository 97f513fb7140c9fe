package scaleencode

import (
	"go.uber.org/zap"

	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/internal/codec"
	"github.com/wippyai/scale-encode/scaletype"
)

// Field is one entry of a composite source value. An empty Name means unnamed.
type Field struct {
	Value any
	Name  string
}

// Composite is an ordered list of source fields. Order is significant for
// positional matching; names drive matching when the target is also named.
type Composite []Field

// EncodeAsTypeTo implements Encodable.
func (c Composite) EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	return encodeComposite(c, id, types, out)
}

// EncodeAsFieldsTo implements FieldsEncodable.
func (c Composite) EncodeAsFieldsTo(fields []scaletype.Field, types scaletype.Resolver, out *[]byte) error {
	return encodeFields(c, fields, types, out)
}

// Tuple is a composite of unnamed values.
type Tuple []any

func (t Tuple) composite() Composite {
	c := make(Composite, len(t))
	for i, v := range t {
		c[i] = Field{Value: v}
	}
	return c
}

// EncodeAsTypeTo implements Encodable.
func (t Tuple) EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	return encodeComposite(t.composite(), id, types, out)
}

// EncodeAsFieldsTo implements FieldsEncodable.
func (t Tuple) EncodeAsFieldsTo(fields []scaletype.Field, types scaletype.Resolver, out *[]byte) error {
	return encodeFields(t.composite(), fields, types, out)
}

func (c Composite) hasNames() bool {
	for _, f := range c {
		if f.Name != "" {
			return true
		}
	}
	return false
}

// location is the error location of entry i: its name if it has one.
func (c Composite) location(i int) errors.Location {
	if c[i].Name != "" {
		return errors.Name(c[i].Name)
	}
	return errors.Index(i)
}

// byName indexes entries by name. Later duplicates replace earlier ones.
func (c Composite) byName() map[string]any {
	m := make(map[string]any, len(c))
	for _, f := range c {
		m[f.Name] = f.Value
	}
	return m
}

func encodeComposite(src Composite, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	target := skipUnnamed(id, types)
	t, err := resolve(target, types)
	if err != nil {
		return err
	}

	if len(src) == 1 && encodesDirectly(src, t) {
		Logger().Debug("encoding single-entry composite as its value",
			zap.Uint32("type", uint32(id)),
			zap.Stringer("kind", t.Kind))
		if err := encodeValue(src[0].Value, id, types, out); err != nil {
			return at(err, src.location(0))
		}
		return nil
	}

	switch t.Kind {
	case scaletype.KindTuple:
		return encodePositional(src, t.Members, types, out)
	case scaletype.KindArray:
		if uint64(len(src)) != t.Len {
			return errors.WrongLength(len(src), int(t.Len))
		}
		return encodeEntries(src, t.Elem, types, out)
	case scaletype.KindSequence:
		*out = codec.AppendCompact(*out, uint64(len(src)))
		return encodeEntries(src, t.Elem, types, out)
	case scaletype.KindComposite:
		return encodeFields(src, t.Fields, types, out)
	default:
		return errors.WrongShape(errors.ShapeTuple, target)
	}
}

// encodesDirectly reports whether the lone entry of src should be encoded as
// the whole value, which lets single-field values fit bare targets. A named
// entry still goes through field matching against a composite.
func encodesDirectly(src Composite, t *scaletype.Type) bool {
	switch t.Kind {
	case scaletype.KindComposite:
		return len(t.Fields) != 1 && !src.hasNames()
	case scaletype.KindTuple:
		return len(t.Members) != 1
	default:
		return true
	}
}

// encodeFields matches src against target fields by name when both sides
// carry names, and by position otherwise.
func encodeFields(src Composite, fields []scaletype.Field, types scaletype.Resolver, out *[]byte) error {
	if scaletype.HasNamedFields(fields) && src.hasNames() {
		// unnamed entries and fields both key as "", extra entries are ignored
		values := src.byName()
		for _, f := range fields {
			v, ok := values[f.Name]
			if !ok {
				return errors.CannotFindField(f.Name)
			}
			if err := encodeValue(v, f.Type, types, out); err != nil {
				return at(err, errors.Name(f.Name))
			}
		}
		return nil
	}

	if len(src) != len(fields) {
		return errors.WrongLength(len(src), len(fields))
	}
	for i, f := range fields {
		if err := encodeValue(src[i].Value, f.Type, types, out); err != nil {
			return at(err, src.location(i))
		}
	}
	return nil
}

func encodePositional(src Composite, members []scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	if len(src) != len(members) {
		return errors.WrongLength(len(src), len(members))
	}
	for i, m := range members {
		if err := encodeValue(src[i].Value, m, types, out); err != nil {
			return at(err, src.location(i))
		}
	}
	return nil
}

// encodeEntries encodes every entry against the same element type.
func encodeEntries(src Composite, elem scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	for i, f := range src {
		if err := encodeValue(f.Value, elem, types, out); err != nil {
			return at(err, src.location(i))
		}
	}
	return nil
}
