package main

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"

	scaleencode "github.com/wippyai/scale-encode"
	"github.com/wippyai/scale-encode/errors"
)

// Value documents use these keys to spell shapes YAML and JSON lack.
const (
	keyVariant = "$variant"
	keyFields  = "$fields"
	keyBits    = "$bits"
	keyTuple   = "$tuple"
	keyChar    = "$char"
)

var cborDecMode = func() cbor.DecMode {
	decMode, err := cbor.DecOptions{
		IndefLength:     cbor.IndefLengthForbidden,
		IntDec:          cbor.IntDecConvertNone,
		BigIntDec:       cbor.BigIntDecodePointer,
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels: 256,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return decMode
}()

// parseDocument decodes a value document into encoder source values.
// YAML and JSON keep map order; CBOR maps are taken in key order.
func parseDocument(data []byte, format string) (any, error) {
	var raw any
	switch format {
	case "yaml", "json":
		if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
			return nil, errors.ParseFailed(format+" value", err)
		}
	case "cbor":
		if decoded, err := hex.DecodeString(strings.TrimSpace(string(data))); err == nil {
			data = decoded
		}
		if err := cborDecMode.Unmarshal(data, &raw); err != nil {
			return nil, errors.ParseFailed("cbor value", err)
		}
	default:
		return nil, errors.Unsupported(errors.PhaseParse, fmt.Sprintf("value format %q", format))
	}
	return convert(raw, nil)
}

// with returns path extended by loc without sharing path's backing array.
func with(path []errors.Location, loc errors.Location) []errors.Location {
	return append(path[:len(path):len(path)], loc)
}

type entry struct {
	key   string
	value any
}

func convert(v any, path []errors.Location) (any, error) {
	switch x := v.(type) {
	case yaml.MapSlice:
		entries := make([]entry, 0, len(x))
		for _, item := range x {
			entries = append(entries, entry{key: fmt.Sprint(item.Key), value: item.Value})
		}
		return convertMap(entries, path)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]entry, len(keys))
		for i, k := range keys {
			entries[i] = entry{key: k, value: x[k]}
		}
		return convertMap(entries, path)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			c, err := convert(item, with(path, errors.Index(i)))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

func convertMap(entries []entry, path []errors.Location) (any, error) {
	for _, e := range entries {
		if strings.HasPrefix(e.key, "$") {
			return convertSpecial(entries, path)
		}
	}

	c := make(scaleencode.Composite, len(entries))
	for i, e := range entries {
		v, err := convert(e.value, with(path, errors.Name(e.key)))
		if err != nil {
			return nil, err
		}
		c[i] = scaleencode.Field{Name: e.key, Value: v}
	}
	return c, nil
}

// convertSpecial handles a map spelled with $ keys. The shape key may appear
// anywhere in the map; CBOR maps arrive in sorted key order.
func convertSpecial(entries []entry, path []errors.Location) (any, error) {
	values := make(map[string]any, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.key, "$") {
			return nil, errors.InvalidData(errors.PhaseParse, path,
				fmt.Sprintf("key %s cannot be mixed with $ keys", e.key))
		}
		values[e.key] = e.value
	}

	allowed := map[string]bool{}
	var shape string
	for _, key := range []string{keyVariant, keyTuple, keyBits, keyChar} {
		if _, ok := values[key]; ok {
			if shape != "" {
				return nil, errors.InvalidData(errors.PhaseParse, path,
					fmt.Sprintf("%s and %s cannot be combined", shape, key))
			}
			shape = key
		}
	}
	if shape == "" {
		return nil, errors.InvalidData(errors.PhaseParse, path, fmt.Sprintf("unknown key %s", entries[0].key))
	}
	allowed[shape] = true
	if shape == keyVariant {
		allowed[keyFields] = true
	}
	for _, e := range entries {
		if !allowed[e.key] {
			return nil, errors.InvalidData(errors.PhaseParse, path, fmt.Sprintf("unknown key %s", e.key))
		}
	}

	switch shape {
	case keyVariant:
		name, ok := values[keyVariant].(string)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseParse, path, "$variant must be a string")
		}
		v := scaleencode.Variant{Name: name}
		if raw, ok := values[keyFields]; ok {
			fields, err := convert(raw, with(path, errors.Name(name)))
			if err != nil {
				return nil, err
			}
			v.Fields, err = asComposite(fields, path)
			if err != nil {
				return nil, err
			}
		}
		return v, nil

	case keyTuple:
		items, err := convert(values[keyTuple], path)
		if err != nil {
			return nil, err
		}
		list, ok := items.([]any)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseParse, path, "$tuple must be a list")
		}
		return scaleencode.Tuple(list), nil

	case keyBits:
		list, ok := values[keyBits].([]any)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseParse, path, "$bits must be a list")
		}
		bits := make([]bool, len(list))
		for i, b := range list {
			set, err := bitValue(b)
			if err != nil {
				return nil, errors.InvalidData(errors.PhaseParse, with(path, errors.Index(i)), err.Error())
			}
			bits[i] = set
		}
		return scaleencode.BitsFrom(bits...), nil

	default:
		s, ok := values[keyChar].(string)
		if !ok || utf8.RuneCountInString(s) != 1 {
			return nil, errors.InvalidData(errors.PhaseParse, path, "$char must be a single character")
		}
		r, _ := utf8.DecodeRuneInString(s)
		return scaleencode.Char(r), nil
	}
}

// asComposite turns variant fields, given as a list or a map, into a Composite.
func asComposite(v any, path []errors.Location) (scaleencode.Composite, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case scaleencode.Composite:
		return x, nil
	case []any:
		c := make(scaleencode.Composite, len(x))
		for i, item := range x {
			c[i] = scaleencode.Field{Value: item}
		}
		return c, nil
	default:
		return nil, errors.InvalidData(errors.PhaseParse, path, "$fields must be a list or a map")
	}
}

func bitValue(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case uint64:
		if b <= 1 {
			return b == 1, nil
		}
	case int64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	case int:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	}
	return false, fmt.Errorf("bit must be 0, 1, true or false, got %v", v)
}
