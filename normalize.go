package scaleencode

import "github.com/wippyai/scale-encode/scaletype"

// Normalize returns the innermost type with the same byte representation as
// id, unwrapping one-member tuples, one-field composites and length-one arrays.
// Lookup failures return the input unchanged; they surface when encoding.
func Normalize(id scaletype.ID, types scaletype.Resolver) scaletype.ID {
	t, err := types.Resolve(id)
	if err != nil || t == nil {
		return id
	}
	switch t.Kind {
	case scaletype.KindTuple:
		if len(t.Members) == 1 {
			return Normalize(t.Members[0], types)
		}
	case scaletype.KindComposite:
		if len(t.Fields) == 1 {
			return Normalize(t.Fields[0].Type, types)
		}
	case scaletype.KindArray:
		if t.Len == 1 {
			return Normalize(t.Elem, types)
		}
	}
	return id
}

// skipUnnamed is Normalize restricted to shells a named source field cannot
// line up with: a one-field composite is only unwrapped when the field is unnamed.
func skipUnnamed(id scaletype.ID, types scaletype.Resolver) scaletype.ID {
	t, err := types.Resolve(id)
	if err != nil || t == nil {
		return id
	}
	switch t.Kind {
	case scaletype.KindTuple:
		if len(t.Members) == 1 {
			return skipUnnamed(t.Members[0], types)
		}
	case scaletype.KindComposite:
		if len(t.Fields) == 1 && t.Fields[0].Name == "" {
			return skipUnnamed(t.Fields[0].Type, types)
		}
	case scaletype.KindArray:
		if t.Len == 1 {
			return skipUnnamed(t.Elem, types)
		}
	}
	return id
}
