package scaleencode

import (
	"go.uber.org/zap"

	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/internal/codec"
	"github.com/wippyai/scale-encode/scaletype"
)

// Variant is a sum type value: the name of the alternative plus its fields.
// The target variant is chosen by exact name, never by position.
type Variant struct {
	Name   string
	Fields Composite
}

// EncodeAsTypeTo implements Encodable.
func (v Variant) EncodeAsTypeTo(id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	return encodeVariant(v.Name, v.Fields, id, types, out)
}

func encodeVariant(name string, fields Composite, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	target := Normalize(id, types)
	t, err := resolve(target, types)
	if err != nil {
		return err
	}
	if t.Kind != scaletype.KindVariant {
		return errors.WrongShape(errors.ShapeVariant, target)
	}

	v, ok := t.Variant(name)
	if !ok {
		return errors.CannotFindVariant(name, target)
	}
	Logger().Debug("selected variant",
		zap.String("name", name),
		zap.Uint32("index", v.Index),
		zap.Uint32("type", uint32(target)))

	*out = codec.AppendUint(*out, 0, uint64(v.Index), t.DiscriminantSize())
	if err := encodeFields(fields, v.Fields, types, out); err != nil {
		return at(err, errors.Name(name))
	}
	return nil
}
