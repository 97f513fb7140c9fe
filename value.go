package scaleencode

import (
	"math"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/bits-and-blooms/bitset"

	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/internal/numeric"
	"github.com/wippyai/scale-encode/scaletype"
)

// encodeValue is the dispatch point for every source value.
func encodeValue(v any, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	switch x := v.(type) {
	case nil:
		return Unit{}.EncodeAsTypeTo(id, types, out)
	case Encodable:
		return x.EncodeAsTypeTo(id, types, out)
	case bool:
		return encodeBool(x, id, types, out)
	case string:
		return encodeStr(x, id, types, out)
	case int:
		return encodeNumber(numeric.FromInt64(int64(x)), id, types, out)
	case int8:
		return encodeNumber(numeric.FromInt64(int64(x)), id, types, out)
	case int16:
		return encodeNumber(numeric.FromInt64(int64(x)), id, types, out)
	case int32:
		return encodeNumber(numeric.FromInt64(int64(x)), id, types, out)
	case int64:
		return encodeNumber(numeric.FromInt64(x), id, types, out)
	case uint:
		return encodeNumber(numeric.FromUint64(uint64(x)), id, types, out)
	case uint8:
		return encodeNumber(numeric.FromUint64(uint64(x)), id, types, out)
	case uint16:
		return encodeNumber(numeric.FromUint64(uint64(x)), id, types, out)
	case uint32:
		return encodeNumber(numeric.FromUint64(uint64(x)), id, types, out)
	case uint64:
		return encodeNumber(numeric.FromUint64(x), id, types, out)
	case *big.Int:
		if x == nil {
			return Unit{}.EncodeAsTypeTo(id, types, out)
		}
		return encodeBig(x, id, types, out)
	case big.Int:
		return encodeBig(&x, id, types, out)
	case []byte:
		return encodeBytes(x, id, types, out)
	case []any:
		return encodeSequence(len(x), func(i int) any { return x[i] }, id, types, out)
	case time.Duration:
		if x < 0 {
			return errors.Customf("cannot encode negative duration %s", x)
		}
		return encodeComposite(Composite{
			{Value: uint64(x / time.Second)},
			{Value: uint32(x % time.Second)},
		}, id, types, out)
	case *bitset.BitSet:
		if x == nil {
			return Unit{}.EncodeAsTypeTo(id, types, out)
		}
		return NewBits(x, int(x.Len())).EncodeAsTypeTo(id, types, out)
	}
	return encodeReflect(reflect.ValueOf(v), id, types, out)
}

func encodeBig(b *big.Int, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	n, ok := numeric.FromBig(b)
	if !ok {
		return errors.NumberOutOfRange(b.String(), Normalize(id, types))
	}
	return encodeNumber(n, id, types, out)
}

// encodeReflect handles named kinds and container types the fast path misses.
func encodeReflect(rv reflect.Value, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Unit{}.EncodeAsTypeTo(id, types, out)
		}
		return encodeValue(rv.Elem().Interface(), id, types, out)
	case reflect.Bool:
		return encodeBool(rv.Bool(), id, types, out)
	case reflect.String:
		return encodeStr(rv.String(), id, types, out)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return encodeNumber(numeric.FromInt64(rv.Int()), id, types, out)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return encodeNumber(numeric.FromUint64(rv.Uint()), id, types, out)
	case reflect.Float32, reflect.Float64:
		return encodeFloat(rv.Float(), id, types, out)
	case reflect.Slice:
		if rv.IsNil() {
			return encodeSequence(0, nil, id, types, out)
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return encodeBytes(rv.Bytes(), id, types, out)
		}
		return encodeSequence(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, id, types, out)
	case reflect.Array:
		return encodeSequence(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, id, types, out)
	case reflect.Map:
		return encodeMap(rv, id, types, out)
	case reflect.Struct:
		return encodeComposite(structComposite(rv), id, types, out)
	default:
		return errors.Customf("cannot encode Go value of kind %s", rv.Kind())
	}
}

// encodeFloat accepts floats only when they hold an integer, as decoded
// documents represent every number as a float.
func encodeFloat(f float64, id scaletype.ID, types scaletype.Resolver, out *[]byte) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return errors.Customf("cannot encode non-integral number %v", f)
	}
	b, _ := big.NewFloat(f).Int(nil)
	return encodeBig(b, id, types, out)
}

// EncodeFieldsTo encodes v directly against a list of target fields, as used
// for the payload of a variant. Structs and maps are matched by name, slices
// positionally.
func EncodeFieldsTo(v any, fields []scaletype.Field, types scaletype.Resolver, out *[]byte) error {
	start := len(*out)
	err := encodeAsFields(v, fields, types, out)
	if err != nil {
		*out = (*out)[:start]
	}
	return err
}

func encodeAsFields(v any, fields []scaletype.Field, types scaletype.Resolver, out *[]byte) error {
	if fe, ok := v.(FieldsEncodable); ok {
		return fe.EncodeAsFieldsTo(fields, types, out)
	}
	if v == nil {
		return encodeFields(nil, fields, types, out)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return encodeFields(nil, fields, types, out)
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return encodeFields(structComposite(rv), fields, types, out)
	case reflect.Map:
		c, err := mapComposite(rv)
		if err != nil {
			return err
		}
		return encodeFields(c, fields, types, out)
	case reflect.Slice, reflect.Array:
		c := make(Composite, rv.Len())
		for i := range c {
			c[i] = Field{Value: rv.Index(i).Interface()}
		}
		return encodeFields(c, fields, types, out)
	default:
		return encodeFields(Composite{{Value: rv.Interface()}}, fields, types, out)
	}
}

type fieldPlan struct {
	index int
	name  string
}

var structPlans sync.Map // reflect.Type -> []fieldPlan

// planFor returns the encodable fields of struct type t.
func planFor(t reflect.Type) []fieldPlan {
	if cached, ok := structPlans.Load(t); ok {
		return cached.([]fieldPlan)
	}

	plan := make([]fieldPlan, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := toSnakeCase(sf.Name)
		if tag, ok := sf.Tag.Lookup("scale"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		plan = append(plan, fieldPlan{index: i, name: name})
	}

	actual, _ := structPlans.LoadOrStore(t, plan)
	return actual.([]fieldPlan)
}

func structComposite(rv reflect.Value) Composite {
	plan := planFor(rv.Type())
	c := make(Composite, len(plan))
	for i, p := range plan {
		c[i] = Field{Name: p.name, Value: rv.Field(p.index).Interface()}
	}
	return c
}

// toSnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: "UserID" becomes "user_id", "HTTPServer" becomes "http_server".
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
