// Package guestmem writes SCALE-encoded values into the linear memory of a
// wazero module instance.
//
// The guest either exports a realloc-style allocator, wrapped with
// WrapAllocator, or the host carves out a region and uses a BumpAllocator:
//
//	mem := guestmem.WrapMemory(mod.ExportedMemory("memory"))
//	alloc := guestmem.WrapAllocator(ctx, mod.ExportedFunction("cabi_realloc"))
//	w := guestmem.NewWriter(mem, alloc, registry)
//
//	span, err := w.Write(value, typeID)
//	// pass span.Ptr and span.Len to the guest
package guestmem
