package scaleencode

import (
	"reflect"
	"sort"

	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/scaletype"
)

// encodeMap encodes a string-keyed map in key order. Against an array or
// sequence target only the values are written; otherwise the map is a
// composite named by its keys.
func encodeMap(rv reflect.Value, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	c, err := mapComposite(rv)
	if err != nil {
		return err
	}

	if t, err := types.Resolve(skipUnnamed(id, types)); err == nil && t != nil &&
		(t.Kind == scaletype.KindArray || t.Kind == scaletype.KindSequence) {
		return encodeSequence(len(c), func(i int) any { return c[i].Value }, id, types, out)
	}
	return encodeComposite(c, id, types, out)
}

func mapComposite(rv reflect.Value) (Composite, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, errors.Customf("cannot encode map with %s keys", rv.Type().Key())
	}

	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	c := make(Composite, len(keys))
	for i, k := range keys {
		c[i] = Field{Name: k.String(), Value: rv.MapIndex(k).Interface()}
	}
	return c, nil
}
