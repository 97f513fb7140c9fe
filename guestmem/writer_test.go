package guestmem

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/scale-encode/errors"
	"github.com/wippyai/scale-encode/scaletype"
)

// memoryWASM is a minimal module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory"
	0x02, 0x00, // kind: memory, index 0
}

func instantiate(t *testing.T) (context.Context, wazero.Runtime, api.Module) {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	return ctx, rt, mod
}

func testTypes() (*scaletype.Registry, scaletype.ID, scaletype.ID) {
	reg := scaletype.NewRegistry()
	u16 := reg.Primitive(scaletype.U16)
	str := reg.Primitive(scaletype.Str)
	pair := reg.Define("Pair", scaletype.CompositeOf(
		scaletype.Field{Name: "id", Type: u16},
		scaletype.Field{Name: "label", Type: str},
	))
	return reg, pair, u16
}

func TestWrapMemory_Nil(t *testing.T) {
	if WrapMemory(nil) != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestWrapAllocator_Nil(t *testing.T) {
	if WrapAllocator(context.Background(), nil) != nil {
		t.Error("expected nil for nil function")
	}
}

func TestMemory_OutOfBounds(t *testing.T) {
	_, _, mod := instantiate(t)
	mem := WrapMemory(mod.ExportedMemory("memory"))

	if got := mem.Size(); got != 65536 {
		t.Fatalf("Size() = %d, want 65536", got)
	}
	if _, err := mem.Read(65530, 10); errors.KindOf(err) != errors.KindOutOfBounds {
		t.Errorf("Read past end: kind = %q, want out_of_bounds", errors.KindOf(err))
	}
	if err := mem.WriteU32(65534, 1); errors.KindOf(err) != errors.KindOutOfBounds {
		t.Errorf("WriteU32 past end: kind = %q, want out_of_bounds", errors.KindOf(err))
	}
	if err := mem.WriteU32(8, 0xdeadbeef); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	v, err := mem.ReadU32(8)
	if err != nil || v != 0xdeadbeef {
		t.Errorf("ReadU32 = %#x, %v; want 0xdeadbeef", v, err)
	}
}

func TestBumpAllocator(t *testing.T) {
	a := NewBumpAllocator(1, 32)

	p1, err := a.Alloc(3, 1)
	if err != nil || p1 != 1 {
		t.Fatalf("Alloc(3, 1) = %d, %v; want 1", p1, err)
	}
	p2, err := a.Alloc(8, 8)
	if err != nil || p2 != 8 {
		t.Fatalf("Alloc(8, 8) = %d, %v; want 8", p2, err)
	}

	a.Free(p2, 8, 8)
	p3, err := a.Alloc(4, 4)
	if err != nil || p3 != 8 {
		t.Fatalf("Alloc after rewind = %d, %v; want 8", p3, err)
	}

	if _, err := a.Alloc(64, 1); errors.KindOf(err) != errors.KindAllocation {
		t.Errorf("exhausted Alloc kind = %q, want allocation", errors.KindOf(err))
	}
}

func TestWriter_Write(t *testing.T) {
	_, _, mod := instantiate(t)
	mem := WrapMemory(mod.ExportedMemory("memory"))
	reg, pair, _ := testTypes()
	w := NewWriter(mem, NewBumpAllocator(1024, 4096), reg)

	span, err := w.Write(map[string]any{"label": "hi", "id": 513}, pair)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []byte{0x01, 0x02, 0x08, 'h', 'i'}
	if span.Ptr != 1024 || span.Len != uint32(len(want)) {
		t.Fatalf("span = %+v, want {1024 %d}", span, len(want))
	}
	got, err := mem.Read(span.Ptr, span.Len)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("memory = %x, want %x", got, want)
	}
}

func TestWriter_WriteFramed(t *testing.T) {
	_, _, mod := instantiate(t)
	mem := WrapMemory(mod.ExportedMemory("memory"))
	reg, _, u16 := testTypes()
	w := NewWriter(mem, NewBumpAllocator(0x100, 0x200), reg)

	span, err := w.WriteFramed(uint16(0x0102), u16)
	if err != nil {
		t.Fatalf("WriteFramed: %v", err)
	}
	got, _ := mem.Read(span.Ptr, span.Len)
	want := []byte{0x02, 0x00, 0x00, 0x00, 0x02, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("memory = %x, want %x", got, want)
	}
}

func TestWriter_EncodeErrorAllocatesNothing(t *testing.T) {
	_, _, mod := instantiate(t)
	mem := WrapMemory(mod.ExportedMemory("memory"))
	reg, _, u16 := testTypes()
	alloc := NewBumpAllocator(64, 128)
	w := NewWriter(mem, alloc, reg)

	_, err := w.Write(70000, u16)
	if errors.KindOf(err) != errors.KindNumberOutOfRange {
		t.Fatalf("kind = %q, want number_out_of_range", errors.KindOf(err))
	}
	if p, _ := alloc.Alloc(1, 1); p != 64 {
		t.Errorf("next allocation at %d, want 64", p)
	}
}

func TestWriter_WriteAllFreesOnFailure(t *testing.T) {
	ctx, rt, mod := instantiate(t)
	mem := WrapMemory(mod.ExportedMemory("memory"))
	reg, pair, u16 := testTypes()

	var freed []uint32
	next := uint32(2048)
	host, err := rt.NewHostModuleBuilder("alloc").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, oldPtr, oldSize, align, newSize uint32) uint32 {
			if newSize == 0 {
				freed = append(freed, oldPtr)
				return 0
			}
			p := next
			next += newSize
			return p
		}).
		Export("cabi_realloc").
		Instantiate(ctx)
	if err != nil {
		t.Fatalf("host module: %v", err)
	}

	w := NewWriter(mem, WrapAllocator(ctx, host.ExportedFunction("cabi_realloc")), reg)

	spans, err := w.WriteAll([]Item{
		{Value: uint16(7), Type: u16},
		{Value: map[string]any{"id": 1, "label": "a"}, Type: pair},
	})
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(spans) != 2 || spans[0].Ptr != 2048 || spans[1].Ptr != 2050 {
		t.Fatalf("spans = %+v", spans)
	}

	_, err = w.WriteAll([]Item{
		{Value: uint16(1), Type: u16},
		{Value: uint16(2), Type: u16},
		{Value: map[string]any{"label": "missing id"}, Type: pair},
	})
	if errors.KindOf(err) != errors.KindCannotFindField {
		t.Fatalf("kind = %q, want field_not_found", errors.KindOf(err))
	}
	if len(freed) != 2 || freed[0] != 2056 || freed[1] != 2054 {
		t.Errorf("freed = %v, want [2056 2054]", freed)
	}
}
