package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scaleencode "github.com/wippyai/scale-encode"
	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/scaletype"
)

const testRegistry = `
types:
  - name: Point
    composite:
      - {name: x, type: i32}
      - {name: y, type: i32}
  - {name: Points, sequence: Point}
  - name: MaybeU8
    variant:
      - {name: None}
      - {name: Some, index: 7, fields: [{type: u8}]}
  - {name: Len, compact: u32}
  - {name: Pair, tuple: [u8, bool]}
  - {name: Flags, bitsequence: {store: u16, order: msb0}}
  - {name: Letter, primitive: u32}
`

func loadTestRegistry(t *testing.T) *scaletype.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRegistry), 0o600))

	reg, err := loadTypes(path, "")
	require.NoError(t, err)
	return reg
}

func TestRun(t *testing.T) {
	reg := loadTestRegistry(t)

	tests := []struct {
		name     string
		typeName string
		format   string
		value    string
		want     string
	}{
		{"reordered fields", "Point", "yaml", "{y: 2, x: 1}", "0100000002000000"},
		{"json", "Point", "json", `{"x": 1, "y": -1}`, "01000000ffffffff"},
		{"sequence of maps", "Points", "yaml", "[{x: 1, y: 0}]", "040100000000000000"},
		{"variant by name", "MaybeU8", "yaml", "{$variant: Some, $fields: [5]}", "0705"},
		{"variant with fields first", "MaybeU8", "yaml", "{$fields: [7], $variant: Some}", "0707"},
		{"variant without fields", "MaybeU8", "yaml", "{$variant: None}", "00"},
		{"compact", "Len", "yaml", "64", "0101"},
		{"tuple", "Pair", "yaml", "{$tuple: [3, true]}", "0301"},
		{"bits", "Flags", "yaml", "{$bits: [1, 0, true]}", "0c00a0"},
		{"char", "Letter", "yaml", "{$char: A}", "41000000"},
		{"by id", "#0", "yaml", "{x: 0, y: 0}", "0000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			opts := options{typeName: tt.typeName, format: tt.format, value: tt.value, out: "hex"}
			require.NoError(t, run(reg, opts, strings.NewReader(""), &stdout, &stderr))
			assert.Equal(t, tt.want+"\n", stdout.String())
		})
	}
}

func TestRun_CBOR(t *testing.T) {
	reg := loadTestRegistry(t)

	tests := []struct {
		name     string
		typeName string
		doc      any
		want     string
	}{
		{"map in key order", "Point", map[string]any{"y": 2, "x": 1}, "0100000002000000"},
		{"variant with fields", "MaybeU8", map[string]any{"$variant": "Some", "$fields": []any{7}}, "0707"},
		{"variant without fields", "MaybeU8", map[string]any{"$variant": "None"}, "00"},
		{"tuple", "Pair", map[string]any{"$tuple": []any{3, true}}, "0301"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := cbor.Marshal(tt.doc)
			require.NoError(t, err)

			var stdout bytes.Buffer
			opts := options{typeName: tt.typeName, format: "cbor", value: hex.EncodeToString(doc), out: "hex"}
			require.NoError(t, run(reg, opts, nil, &stdout, &bytes.Buffer{}))
			assert.Equal(t, tt.want+"\n", stdout.String())
		})
	}
}

func TestRun_RawFromStdin(t *testing.T) {
	reg := loadTestRegistry(t)

	var stdout bytes.Buffer
	opts := options{typeName: "Pair", format: "yaml", valueFile: "-", out: "raw"}
	require.NoError(t, run(reg, opts, strings.NewReader("{$tuple: [255, false]}"), &stdout, &bytes.Buffer{}))
	assert.Equal(t, []byte{0xff, 0x00}, stdout.Bytes())
}

func TestRun_Dump(t *testing.T) {
	reg := loadTestRegistry(t)

	var stdout, stderr bytes.Buffer
	opts := options{typeName: "Points", format: "yaml", value: "[]", out: "hex", dump: true}
	require.NoError(t, run(reg, opts, nil, &stdout, &stderr))
	assert.Equal(t, "00\n", stdout.String())
	assert.Contains(t, stderr.String(), "Point {x: #")
}

func TestRun_Errors(t *testing.T) {
	reg := loadTestRegistry(t)

	tests := []struct {
		name  string
		opts  options
		kind  errors.Kind
		match string
	}{
		{"suggests a close name", options{typeName: "Pont", format: "yaml", value: "1"},
			errors.KindNotFound, `did you mean "Point"`},
		{"unknown id", options{typeName: "#99", format: "yaml", value: "1"},
			errors.KindTypeNotFound, ""},
		{"out of range", options{typeName: "Pair", format: "yaml", value: "{$tuple: [256, true]}", out: "hex"},
			errors.KindNumberOutOfRange, "at [0]"},
		{"bad bit", options{typeName: "Flags", format: "yaml", value: "{$bits: [2]}", out: "hex"},
			errors.KindInvalidData, ""},
		{"bad char", options{typeName: "Letter", format: "yaml", value: "{$char: AB}", out: "hex"},
			errors.KindInvalidData, ""},
		{"fields without variant", options{typeName: "MaybeU8", format: "yaml", value: "{$fields: [7]}", out: "hex"},
			errors.KindInvalidData, "unknown key $fields"},
		{"two shapes", options{typeName: "MaybeU8", format: "yaml", value: "{$variant: Some, $tuple: [1]}", out: "hex"},
			errors.KindInvalidData, "cannot be combined"},
		{"mixed keys", options{typeName: "Point", format: "yaml", value: "{x: 1, $variant: Some}", out: "hex"},
			errors.KindInvalidData, "cannot be mixed"},
		{"unknown format", options{typeName: "Len", format: "toml", value: "1", out: "hex"},
			errors.KindUnsupported, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(reg, tt.opts, nil, &bytes.Buffer{}, &bytes.Buffer{})
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			if tt.match != "" {
				assert.Contains(t, err.Error(), tt.match)
			}
		})
	}

	err := run(reg, options{typeName: "Len", format: "yaml"}, nil, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "no value given")
}

func TestParseDocument_KeepsOrder(t *testing.T) {
	v, err := parseDocument([]byte("{b: 1, a: {d: null, c: [1, 2]}}"), "yaml")
	require.NoError(t, err)

	c, ok := v.(scaleencode.Composite)
	require.True(t, ok, "got %T", v)
	require.Len(t, c, 2)
	assert.Equal(t, "b", c[0].Name)
	assert.Equal(t, "a", c[1].Name)

	inner, ok := c[1].Value.(scaleencode.Composite)
	require.True(t, ok)
	assert.Equal(t, "d", inner[0].Name)
	assert.Nil(t, inner[0].Value)
	assert.Len(t, inner[1].Value, 2)
}

func TestClosestName(t *testing.T) {
	names := []string{"Point", "Points", "Pair"}
	assert.Equal(t, "Point", closestName("Pont", names))
	assert.Equal(t, "Pair", closestName("pair", names))
	assert.Equal(t, "", closestName("Zzzzzzzz", names))
}

func TestInteractiveModel(t *testing.T) {
	reg := loadTestRegistry(t)
	m := newInteractiveModel(reg, "yaml")

	// names are sorted: Flags, Len, Letter, MaybeU8, Pair, Point, Points
	require.Len(t, m.types, 7)
	for i := 0; i < 5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	require.Equal(t, "Point", m.types[m.selected].name)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateEditValue, m.state)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("{x: 1, y: 2}")})
	assert.NoError(t, m.err)
	assert.Equal(t, "0x0100000002000000 (8 bytes)", m.result)
	assert.Contains(t, m.View(), "0x0100000002000000")

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Error(t, m.err)
	assert.Empty(t, m.result)
	assert.Equal(t, stateEditValue, m.state)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateSelectType, m.state)
	assert.Contains(t, m.View(), "Select a target type")
}
