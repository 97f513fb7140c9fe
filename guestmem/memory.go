package guestmem

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/scale-encode/errors"
)

// Memory is a view of guest linear memory.
type Memory interface {
	Read(offset, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	WriteU32(offset uint32, value uint32) error
	Size() uint32
}

// Allocator hands out regions of guest memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// WrapMemory adapts a wazero memory. It returns nil for a nil memory.
func WrapMemory(mem api.Memory) Memory {
	if mem == nil {
		return nil
	}
	return &wazeroMemory{mem: mem}
}

type wazeroMemory struct {
	mem api.Memory
}

func (m *wazeroMemory) Size() uint32 {
	return m.mem.Size()
}

func (m *wazeroMemory) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(offset, length, m.mem.Size())
	}
	return data, nil
}

func (m *wazeroMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(offset, uint32(len(data)), m.mem.Size())
	}
	return nil
}

func (m *wazeroMemory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(offset, 4, m.mem.Size())
	}
	return v, nil
}

func (m *wazeroMemory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(offset, 4, m.mem.Size())
	}
	return nil
}

// WrapAllocator adapts an exported realloc function with the signature
// (old_ptr, old_size, align, new_size) -> ptr. It returns nil for a nil function.
func WrapAllocator(ctx context.Context, fn api.Function) Allocator {
	if fn == nil {
		return nil
	}
	return &reallocAllocator{ctx: ctx, fn: fn}
}

type reallocAllocator struct {
	ctx context.Context
	fn  api.Function
}

func (a *reallocAllocator) Alloc(size, align uint32) (uint32, error) {
	results, err := a.fn.Call(a.ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, errors.AllocationFailed(size, align, err)
	}
	if len(results) == 0 {
		return 0, errors.AllocationFailed(size, align, nil)
	}
	return uint32(results[0]), nil
}

func (a *reallocAllocator) Free(ptr, size, align uint32) {
	if _, err := a.fn.Call(a.ctx, uint64(ptr), uint64(size), uint64(align), 0); err != nil {
		Logger().Warn("guest free failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// BumpAllocator allocates upward from base and never reuses memory.
// Free only rewinds when the freed block is the most recent allocation.
type BumpAllocator struct {
	next  uint32
	limit uint32
}

// NewBumpAllocator allocates within [base, limit).
func NewBumpAllocator(base, limit uint32) *BumpAllocator {
	return &BumpAllocator{next: base, limit: limit}
}

// Alloc implements Allocator.
func (b *BumpAllocator) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	ptr := (uint64(b.next) + uint64(align) - 1) &^ (uint64(align) - 1)
	end := ptr + uint64(size)
	if end > uint64(b.limit) {
		return 0, errors.AllocationFailed(size, align, nil)
	}
	b.next = uint32(end)
	return uint32(ptr), nil
}

// Free implements Allocator.
func (b *BumpAllocator) Free(ptr, size, _ uint32) {
	if ptr+size == b.next {
		b.next = ptr
	}
}
