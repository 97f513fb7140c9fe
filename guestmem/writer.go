package guestmem

import (
	"encoding/binary"
	"sync"

	"go.uber.org/zap"

	scaleencode "github.com/wippyai/scale-encode"
	"github.com/wippyai/scale-encode/internal/codec"
	"github.com/wippyai/scale-encode/scaletype"
)

// Span locates bytes written into guest memory.
type Span struct {
	Ptr uint32
	Len uint32
}

// Item is one value to encode and its target type.
type Item struct {
	Value any
	Type  scaletype.ID
}

const (
	bufInitCap = 256
	bufMaxCap  = 64 << 10
)

var bufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, bufInitCap)
		return &buf
	},
}

func getBuf() *[]byte {
	return bufPool.Get().(*[]byte)
}

func putBuf(buf *[]byte) {
	if cap(*buf) > bufMaxCap {
		return
	}
	*buf = (*buf)[:0]
	bufPool.Put(buf)
}

// Writer encodes values straight into guest memory.
// A Writer is not safe for concurrent use; the guest instance it targets isn't either.
type Writer struct {
	mem   Memory
	alloc Allocator
	types scaletype.Resolver
}

// NewWriter creates a writer placing values allocated by alloc into mem.
func NewWriter(mem Memory, alloc Allocator, types scaletype.Resolver) *Writer {
	return &Writer{mem: mem, alloc: alloc, types: types}
}

// Write encodes v as type id and copies the bytes into a fresh allocation.
func (w *Writer) Write(v any, id scaletype.ID) (Span, error) {
	buf := getBuf()
	defer putBuf(buf)

	if err := scaleencode.EncodeTo(v, id, w.types, buf); err != nil {
		return Span{}, err
	}
	return w.place(*buf)
}

// WriteFramed is Write with the payload prefixed by its length as a u32.
func (w *Writer) WriteFramed(v any, id scaletype.ID) (Span, error) {
	buf := getBuf()
	defer putBuf(buf)

	*buf = codec.AppendU32(*buf, 0)
	if err := scaleencode.EncodeTo(v, id, w.types, buf); err != nil {
		return Span{}, err
	}
	binary.LittleEndian.PutUint32(*buf, uint32(len(*buf)-4))
	return w.place(*buf)
}

// WriteAll writes every item in order. When one fails, the allocations made
// for the earlier items are freed before the error is returned.
func (w *Writer) WriteAll(items []Item) ([]Span, error) {
	allocs := newAllocationList()
	defer allocs.release()

	spans := make([]Span, 0, len(items))
	for i, it := range items {
		span, err := w.Write(it.Value, it.Type)
		if err != nil {
			Logger().Debug("write failed, releasing earlier allocations",
				zap.Int("item", i),
				zap.Int("allocations", allocs.count()))
			allocs.free(w.alloc)
			return nil, err
		}
		allocs.add(span.Ptr, span.Len, 1)
		spans = append(spans, span)
	}
	return spans, nil
}

func (w *Writer) place(data []byte) (Span, error) {
	size := uint32(len(data))
	if size == 0 {
		return Span{}, nil
	}
	ptr, err := w.alloc.Alloc(size, 1)
	if err != nil {
		return Span{}, err
	}
	if err := w.mem.Write(ptr, data); err != nil {
		w.alloc.Free(ptr, size, 1)
		return Span{}, err
	}
	return Span{Ptr: ptr, Len: size}, nil
}

type allocation struct {
	ptr, size, align uint32
}

// allocationList tracks allocations to undo after a partial failure.
type allocationList struct {
	items []allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &allocationList{items: make([]allocation, 0, 8)}
	},
}

const maxPooledAllocations = 128

func newAllocationList() *allocationList {
	return allocationListPool.Get().(*allocationList)
}

func (l *allocationList) add(ptr, size, align uint32) {
	l.items = append(l.items, allocation{ptr: ptr, size: size, align: align})
}

func (l *allocationList) count() int {
	return len(l.items)
}

func (l *allocationList) free(a Allocator) {
	if a == nil {
		return
	}
	for i := len(l.items) - 1; i >= 0; i-- {
		if it := l.items[i]; it.ptr != 0 {
			a.Free(it.ptr, it.size, it.align)
		}
	}
}

// release returns the list to the pool. The list is invalid afterwards.
func (l *allocationList) release() {
	if cap(l.items) > maxPooledAllocations {
		return
	}
	l.items = l.items[:0]
	allocationListPool.Put(l)
}
