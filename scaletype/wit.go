package scaletype

import (
	"io"
	"sync"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/scale-encode/errors"
)

// Importer converts WIT types into registry descriptors.
//
// The mapping follows the SCALE conventions for the equivalent Rust types:
// option becomes None(0)/Some(1), result becomes Ok(0)/Err(1), enums are
// variants without fields, char is a u32 code point, flags use the smallest
// unsigned integer holding all bits, and resource handles are u32.
// Floating point types have no SCALE counterpart and are rejected.
type Importer struct {
	reg   *Registry
	cache sync.Map // *wit.TypeDef -> ID
}

// NewImporter creates an importer that adds types to reg.
func NewImporter(reg *Registry) *Importer {
	return &Importer{reg: reg}
}

// Registry returns the registry the importer writes to.
func (im *Importer) Registry() *Registry {
	return im.reg
}

// Import registers t (and everything it references) and returns its id.
// Named type definitions are registered under their WIT name and imported once.
func (im *Importer) Import(t wit.Type) (ID, error) {
	return im.importType(t, nil)
}

// ImportJSON decodes a WIT resolve in JSON form (as produced by
// `wasm-tools component wit --json`) and imports every named type definition.
// Definitions that cannot be represented are skipped and their names returned.
func (im *Importer) ImportJSON(r io.Reader) (skipped []string, err error) {
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidData, err, "decode WIT JSON")
	}
	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		if _, err := im.importType(td, nil); err != nil {
			skipped = append(skipped, *td.Name)
		}
	}
	return skipped, nil
}

func (im *Importer) importType(t wit.Type, path []errors.Location) (ID, error) {
	switch t := t.(type) {
	case wit.Bool:
		return im.reg.Primitive(Bool), nil
	case wit.U8:
		return im.reg.Primitive(U8), nil
	case wit.S8:
		return im.reg.Primitive(I8), nil
	case wit.U16:
		return im.reg.Primitive(U16), nil
	case wit.S16:
		return im.reg.Primitive(I16), nil
	case wit.U32, wit.Char:
		return im.reg.Primitive(U32), nil
	case wit.S32:
		return im.reg.Primitive(I32), nil
	case wit.U64:
		return im.reg.Primitive(U64), nil
	case wit.S64:
		return im.reg.Primitive(I64), nil
	case wit.String:
		return im.reg.Primitive(Str), nil
	case wit.F32, wit.F64:
		return 0, errors.New(errors.PhaseResolve, errors.KindUnsupported).
			Path(path...).
			Detail("floating point type %T has no SCALE encoding", t).
			Build()
	case *wit.TypeDef:
		return im.importTypeDef(t, path)
	default:
		return 0, errors.New(errors.PhaseResolve, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type: %T", t).
			Build()
	}
}

func (im *Importer) importTypeDef(td *wit.TypeDef, path []errors.Location) (ID, error) {
	if cached, ok := im.cache.Load(td); ok {
		return cached.(ID), nil
	}

	var (
		desc Type
		err  error
	)
	switch kind := td.Kind.(type) {
	case *wit.Record:
		desc, err = im.record(kind, path)
	case *wit.List:
		var elem ID
		elem, err = im.importType(kind.Type, append(path, errors.Index(0)))
		desc = SequenceOf(elem)
	case *wit.Tuple:
		desc, err = im.tuple(kind, path)
	case *wit.Option:
		desc, err = im.option(kind, path)
	case *wit.Result:
		desc, err = im.result(kind, path)
	case *wit.Variant:
		desc, err = im.variant(kind, path)
	case *wit.Enum:
		variants := make([]Variant, len(kind.Cases))
		for i, c := range kind.Cases {
			variants[i] = Variant{Name: c.Name, Index: uint32(i)}
		}
		desc = VariantOf(variants...)
	case *wit.Flags:
		desc, err = flags(kind, path)
	case *wit.Own, *wit.Borrow:
		desc = PrimitiveOf(U32)
	case wit.Type:
		// alias: the definition names another type
		var id ID
		id, err = im.importType(kind, path)
		if err != nil {
			return 0, err
		}
		if td.Name != nil {
			im.reg.Alias(*td.Name, id)
		}
		im.cache.Store(td, id)
		return id, nil
	default:
		return 0, errors.New(errors.PhaseResolve, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported TypeDef kind: %T", kind).
			Build()
	}
	if err != nil {
		return 0, err
	}

	var id ID
	if td.Name != nil {
		id = im.reg.Define(*td.Name, desc)
	} else {
		id = im.reg.Add(desc)
	}
	im.cache.Store(td, id)
	return id, nil
}

func (im *Importer) record(r *wit.Record, path []errors.Location) (Type, error) {
	fields := make([]Field, len(r.Fields))
	for i, f := range r.Fields {
		id, err := im.importType(f.Type, append(path, errors.Name(f.Name)))
		if err != nil {
			return Type{}, err
		}
		fields[i] = Field{Name: f.Name, Type: id}
	}
	return CompositeOf(fields...), nil
}

func (im *Importer) tuple(t *wit.Tuple, path []errors.Location) (Type, error) {
	members := make([]ID, len(t.Types))
	for i, mt := range t.Types {
		id, err := im.importType(mt, append(path, errors.Index(i)))
		if err != nil {
			return Type{}, err
		}
		members[i] = id
	}
	return TupleOf(members...), nil
}

func (im *Importer) option(o *wit.Option, path []errors.Location) (Type, error) {
	inner, err := im.importType(o.Type, append(path, errors.Name("Some")))
	if err != nil {
		return Type{}, err
	}
	return VariantOf(
		Variant{Name: "None", Index: 0},
		Variant{Name: "Some", Index: 1, Fields: []Field{{Type: inner}}},
	), nil
}

func (im *Importer) result(r *wit.Result, path []errors.Location) (Type, error) {
	ok := Variant{Name: "Ok", Index: 0}
	if r.OK != nil {
		id, err := im.importType(r.OK, append(path, errors.Name("Ok")))
		if err != nil {
			return Type{}, err
		}
		ok.Fields = []Field{{Type: id}}
	}
	fail := Variant{Name: "Err", Index: 1}
	if r.Err != nil {
		id, err := im.importType(r.Err, append(path, errors.Name("Err")))
		if err != nil {
			return Type{}, err
		}
		fail.Fields = []Field{{Type: id}}
	}
	return VariantOf(ok, fail), nil
}

func (im *Importer) variant(v *wit.Variant, path []errors.Location) (Type, error) {
	variants := make([]Variant, len(v.Cases))
	for i, c := range v.Cases {
		variants[i] = Variant{Name: c.Name, Index: uint32(i)}
		if c.Type == nil {
			continue
		}
		id, err := im.importType(c.Type, append(path, errors.Name(c.Name)))
		if err != nil {
			return Type{}, err
		}
		variants[i].Fields = []Field{{Type: id}}
	}
	return VariantOf(variants...), nil
}

func flags(f *wit.Flags, path []errors.Location) (Type, error) {
	switch n := len(f.Flags); {
	case n <= 8:
		return PrimitiveOf(U8), nil
	case n <= 16:
		return PrimitiveOf(U16), nil
	case n <= 32:
		return PrimitiveOf(U32), nil
	case n <= 64:
		return PrimitiveOf(U64), nil
	default:
		return Type{}, errors.New(errors.PhaseResolve, errors.KindInvalidData).
			Path(path...).
			Detail("flags type exceeds maximum 64 flags, got %d", n).
			Build()
	}
}
