package scaleencode

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/scaletype"
)

func TestEncode_Scalars(t *testing.T) {
	f := newFixture()
	big100 := new(big.Int).Lsh(big.NewInt(1), 100)

	tests := []struct {
		name  string
		value any
		id    scaletype.ID
		want  []byte
	}{
		{"bool true", true, f.boolT, []byte{0x01}},
		{"bool false", false, f.boolT, []byte{0x00}},
		{"str", "abc", f.str, []byte{0x0c, 'a', 'b', 'c'}},
		{"empty str", "", f.str, []byte{0x00}},
		{"u16 source into u8", uint16(200), f.u8, []byte{0xc8}},
		{"int into u16", 513, f.u16, []byte{0x01, 0x02}},
		{"negative into i8", -1, f.i8, []byte{0xff}},
		{"int64 into i32", int64(-2), f.i32, []byte{0xfe, 0xff, 0xff, 0xff}},
		{"max u64", uint64(math.MaxUint64), f.u64, bytes.Repeat([]byte{0xff}, 8)},
		{"min i64", int64(math.MinInt64), f.i64, []byte{0, 0, 0, 0, 0, 0, 0, 0x80}},
		{"big into u128", big100, f.u128, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x10, 0, 0, 0}},
		{"integral float", float64(5), f.u8, []byte{0x05}},
		{"char", Char('A'), f.u32, []byte{0x41, 0, 0, 0}},
		{"compact 0", 0, f.compactU32, []byte{0x00}},
		{"compact 63", 63, f.compactU32, []byte{0xfc}},
		{"compact 64", 64, f.compactU32, []byte{0x01, 0x01}},
		{"compact 16384", 16384, f.compactU32, []byte{0x02, 0x00, 0x01, 0x00}},
		{"compact 2^30", 1 << 30, f.compactU32, []byte{0x03, 0x00, 0x00, 0x00, 0x40}},
		{"duration", 1500 * time.Millisecond, f.duration,
			[]byte{1, 0, 0, 0, 0, 0, 0, 0, 0x00, 0x65, 0xcd, 0x1d}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.value, tt.id, f.reg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_NamedKinds(t *testing.T) {
	f := newFixture()
	type level uint8
	type label string
	type flag bool

	got, err := Encode(level(9), f.u8, f.reg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09}, got)

	got, err = Encode(label("ok"), f.str, f.reg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 'o', 'k'}, got)

	got, err = Encode(flag(true), f.boolT, f.reg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)

	v := uint16(300)
	got, err = Encode(&v, f.u16, f.reg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2c, 0x01}, got)
}

func TestEncode_NumberErrors(t *testing.T) {
	f := newFixture()
	tooBig := new(big.Int).Lsh(big.NewInt(1), 128)

	tests := []struct {
		name  string
		value any
		id    scaletype.ID
		kind  errors.Kind
		shape errors.Shape
	}{
		{"1234 into u8", 1234, f.u8, errors.KindNumberOutOfRange, 0},
		{"negative into u32", -1, f.u32, errors.KindNumberOutOfRange, 0},
		{"128 into i8", 128, f.i8, errors.KindNumberOutOfRange, 0},
		{"2^128 into u128", tooBig, f.u128, errors.KindNumberOutOfRange, 0},
		{"300 into compact u8", 300, f.compactU8, errors.KindNumberOutOfRange, 0},
		{"compact over signed", 1, f.compactI3, errors.KindWrongShape, errors.ShapeNumber},
		{"number into str", 1, f.str, errors.KindWrongShape, errors.ShapeNumber},
		{"char into bool", Char('x'), f.boolT, errors.KindWrongShape, errors.ShapeChar},
		{"bool into u8", true, f.u8, errors.KindWrongShape, errors.ShapeBool},
		{"str into u8", "1", f.u8, errors.KindWrongShape, errors.ShapeStr},
		{"fractional float", 1.5, f.u8, errors.KindCustom, 0},
		{"negative duration", -time.Second, f.duration, errors.KindCustom, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.value, tt.id, f.reg)
			require.Error(t, err)

			var e *errors.Error
			require.True(t, stderrors.As(err, &e))
			assert.Equal(t, tt.kind, e.Kind)
			if tt.kind == errors.KindWrongShape {
				assert.Equal(t, tt.shape, e.Shape)
			}
		})
	}
}

func TestEncode_OutOfRangeReportsValue(t *testing.T) {
	f := newFixture()
	_, err := Encode(1234, f.u8, f.reg)

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, "1234", e.Value)
	assert.Equal(t, fmt.Sprint(f.u8), e.TypeID)
	assert.Empty(t, e.Path)
}

func TestEncode_UnsupportedGoKinds(t *testing.T) {
	f := newFixture()

	for name, v := range map[string]any{
		"chan":       make(chan int),
		"func":       func() {},
		"complex":    complex(1, 2),
		"int keys":   map[int]int{1: 1},
		"NaN":        math.NaN(),
		"infinities": math.Inf(1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Encode(v, f.u8, f.reg)
			assert.Equal(t, errors.KindCustom, errors.KindOf(err))
		})
	}
}

func TestEncode_ResolverErrors(t *testing.T) {
	f := newFixture()

	_, err := Encode(1, 999, f.reg)
	assert.Equal(t, errors.KindTypeNotFound, errors.KindOf(err))

	cause := stderrors.New("backend offline")
	failing := scaletype.ResolverFunc(func(scaletype.ID) (*scaletype.Type, error) {
		return nil, cause
	})
	_, err = Encode(1, 0, failing)
	assert.Equal(t, errors.KindTypeResolving, errors.KindOf(err))
	assert.ErrorIs(t, err, cause)

	empty := scaletype.ResolverFunc(func(scaletype.ID) (*scaletype.Type, error) {
		return nil, nil
	})
	_, err = Encode(1, 0, empty)
	assert.Equal(t, errors.KindTypeNotFound, errors.KindOf(err))
}

func TestEncodeTo_AppendsAndRestores(t *testing.T) {
	f := newFixture()

	out := []byte{0xaa}
	require.NoError(t, EncodeTo(uint8(1), f.u8, f.reg, &out))
	assert.Equal(t, []byte{0xaa, 0x01}, out)

	err := EncodeTo(Tuple{1, 300}, f.pair, f.reg, &out)
	require.Error(t, err)
	assert.Equal(t, []byte{0xaa, 0x01}, out)
}

func TestEncoder(t *testing.T) {
	f := newFixture()
	enc := NewEncoder(f.reg)
	assert.Equal(t, scaletype.Resolver(f.reg), enc.Types())

	got, err := enc.Encode(Tuple{1, 2}, f.pair)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, got)

	out := []byte{0xff}
	require.NoError(t, enc.EncodeTo(true, f.boolT, &out))
	assert.Equal(t, []byte{0xff, 0x01}, out)
}

type failingValue struct{}

func (failingValue) EncodeAsTypeTo(scaletype.ID, scaletype.Resolver, *[]byte) error {
	return stderrors.New("boom")
}

func TestEncode_CustomErrorsGetPath(t *testing.T) {
	f := newFixture()

	_, err := Encode(Composite{{Name: "y", Value: 1}, {Name: "x", Value: failingValue{}}}, f.point, f.reg)
	require.Error(t, err)

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.KindCustom, e.Kind)
	assert.Equal(t, "x", e.PathString())
	assert.EqualError(t, e.Cause, "boom")
}
