package scaletype

import (
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/wippyai/scale-encode/errors"
)

// document is the YAML registry format:
//
//	types:
//	  - name: Point
//	    composite:
//	      - {name: x, type: i32}
//	      - {name: y, type: i32}
//	  - {name: Points, sequence: Point}
//
// Each entry sets exactly one of the kind keys. References name another
// entry, a primitive ("u8", "str", ...) or an entry position ("#3").
type document struct {
	Types []typeEntry `yaml:"types"`
}

type typeEntry struct {
	Tuple       *[]string       `yaml:"tuple"`
	Composite   *[]fieldEntry   `yaml:"composite"`
	Variant     *[]variantEntry `yaml:"variant"`
	Array       *arrayEntry     `yaml:"array"`
	BitSequence *bitsEntry      `yaml:"bitsequence"`
	Name        string          `yaml:"name"`
	Primitive   string          `yaml:"primitive"`
	Compact     string          `yaml:"compact"`
	Sequence    string          `yaml:"sequence"`
}

type fieldEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type variantEntry struct {
	Index  *uint32      `yaml:"index"`
	Name   string       `yaml:"name"`
	Fields []fieldEntry `yaml:"fields"`
}

type arrayEntry struct {
	Type string `yaml:"type"`
	Len  uint64 `yaml:"len"`
}

type bitsEntry struct {
	Store string `yaml:"store"`
	Order string `yaml:"order"`
}

// LoadYAMLFile reads a registry document from path.
func LoadYAMLFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return LoadYAML(data)
}

// LoadYAML builds a registry from a YAML document. Entry i receives ID(i);
// primitives referenced by keyword are registered after all entries.
func LoadYAML(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.Load("decode registry document", err)
	}

	reg := NewRegistry()
	for i, e := range doc.Types {
		if e.Name != "" {
			if _, dup := reg.Lookup(e.Name); dup {
				return nil, loadErr(i, e.Name, "duplicate type name %q", e.Name)
			}
		}
		reg.Reserve(e.Name)
	}

	l := &loader{reg: reg, count: len(doc.Types)}
	for i, e := range doc.Types {
		desc, err := l.entry(i, e)
		if err != nil {
			return nil, err
		}
		if err := reg.Set(ID(i), desc); err != nil {
			return nil, errors.Load("store type", err)
		}
	}

	for i, e := range doc.Types {
		if wrapsItself(reg, ID(i)) {
			return nil, loadErr(i, e.Name, "type is a wrapper around itself")
		}
	}
	return reg, nil
}

// wrapsItself reports whether following single-member wrappers from id
// leads back to a type already visited. Such a type has no finite encoding.
func wrapsItself(reg *Registry, id ID) bool {
	seen := map[ID]bool{}
	for !seen[id] {
		seen[id] = true
		t, err := reg.Resolve(id)
		if err != nil || t == nil {
			return false
		}
		next, ok := wrapped(t)
		if !ok {
			return false
		}
		id = next
	}
	return true
}

func wrapped(t *Type) (ID, bool) {
	switch t.Kind {
	case KindTuple:
		if len(t.Members) == 1 {
			return t.Members[0], true
		}
	case KindComposite:
		if len(t.Fields) == 1 {
			return t.Fields[0].Type, true
		}
	case KindArray:
		if t.Len == 1 {
			return t.Elem, true
		}
	}
	return 0, false
}

type loader struct {
	reg   *Registry
	count int
}

func (l *loader) entry(i int, e typeEntry) (Type, error) {
	set := 0
	for _, present := range []bool{
		e.Primitive != "", e.Compact != "", e.Tuple != nil, e.Array != nil,
		e.Sequence != "", e.Composite != nil, e.Variant != nil, e.BitSequence != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return Type{}, loadErr(i, e.Name, "entry must define exactly one kind, found %d", set)
	}

	switch {
	case e.Primitive != "":
		p, ok := ParsePrimitive(e.Primitive)
		if !ok {
			return Type{}, loadErr(i, e.Name, "unknown primitive %q", e.Primitive)
		}
		return PrimitiveOf(p), nil
	case e.Compact != "":
		inner, err := l.ref(i, e.Name, e.Compact)
		return CompactOf(inner), err
	case e.Tuple != nil:
		members := make([]ID, len(*e.Tuple))
		for j, ref := range *e.Tuple {
			id, err := l.ref(i, e.Name, ref)
			if err != nil {
				return Type{}, err
			}
			members[j] = id
		}
		return TupleOf(members...), nil
	case e.Array != nil:
		elem, err := l.ref(i, e.Name, e.Array.Type)
		return ArrayOf(elem, e.Array.Len), err
	case e.Sequence != "":
		elem, err := l.ref(i, e.Name, e.Sequence)
		return SequenceOf(elem), err
	case e.Composite != nil:
		fields, err := l.fields(i, e.Name, *e.Composite)
		return CompositeOf(fields...), err
	case e.Variant != nil:
		variants := make([]Variant, len(*e.Variant))
		for j, v := range *e.Variant {
			fields, err := l.fields(i, e.Name, v.Fields)
			if err != nil {
				return Type{}, err
			}
			index := uint32(j)
			if v.Index != nil {
				index = *v.Index
			}
			variants[j] = Variant{Name: v.Name, Index: index, Fields: fields}
		}
		return VariantOf(variants...), nil
	default:
		return l.bits(i, e.Name, e.BitSequence)
	}
}

func (l *loader) fields(i int, name string, entries []fieldEntry) ([]Field, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	fields := make([]Field, len(entries))
	for j, f := range entries {
		id, err := l.ref(i, name, f.Type)
		if err != nil {
			return nil, err
		}
		fields[j] = Field{Name: f.Name, Type: id}
	}
	return fields, nil
}

func (l *loader) bits(i int, name string, b *bitsEntry) (Type, error) {
	var store BitStore
	switch strings.ToLower(b.Store) {
	case "", "u8":
		store = StoreU8
	case "u16":
		store = StoreU16
	case "u32":
		store = StoreU32
	case "u64":
		store = StoreU64
	default:
		return Type{}, loadErr(i, name, "unknown bit store %q", b.Store)
	}
	var order BitOrder
	switch strings.ToLower(b.Order) {
	case "", "lsb0":
		order = Lsb0
	case "msb0":
		order = Msb0
	default:
		return Type{}, loadErr(i, name, "unknown bit order %q", b.Order)
	}
	return BitSequenceOf(store, order), nil
}

func (l *loader) ref(i int, name, ref string) (ID, error) {
	if ref == "" {
		return 0, loadErr(i, name, "missing type reference")
	}
	if rest, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.ParseUint(rest, 10, 32)
		if err != nil || int(n) >= l.count {
			return 0, loadErr(i, name, "invalid type position %q", ref)
		}
		return ID(n), nil
	}
	if id, ok := l.reg.Lookup(ref); ok {
		return id, nil
	}
	if p, ok := ParsePrimitive(ref); ok {
		return l.reg.Primitive(p), nil
	}
	return 0, errors.New(errors.PhaseLoad, errors.KindNotFound).
		Path(errors.Name("types"), errors.Index(i)).
		Name(ref).
		Detail("unknown type reference %q", ref).
		Build()
}

func loadErr(i int, name, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidData).
		Path(errors.Name("types"), errors.Index(i)).
		Name(name).
		Detail(format, args...).
		Build()
}
