package scaletype

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddResolve(t *testing.T) {
	reg := NewRegistry()
	u8 := reg.Primitive(U8)
	seq := reg.Add(SequenceOf(u8))

	got, err := reg.Resolve(seq)
	require.NoError(t, err)
	assert.Equal(t, KindSequence, got.Kind)
	assert.Equal(t, u8, got.Elem)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_PrimitiveDeduplicates(t *testing.T) {
	reg := NewRegistry()
	a := reg.Primitive(U32)
	b := reg.Primitive(U32)
	c := reg.Primitive(Bool)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ResolveReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	id := reg.Add(ArrayOf(0, 4))

	first, err := reg.Resolve(id)
	require.NoError(t, err)
	first.Len = 99

	second, err := reg.Resolve(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), second.Len)
}

func TestRegistry_NotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Resolve(5)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrNotFound))
}

func TestRegistry_DefineAndLookup(t *testing.T) {
	reg := NewRegistry()
	u8 := reg.Primitive(U8)
	first := reg.Define("Byte", PrimitiveOf(U8))
	point := reg.Define("Point", CompositeOf(Field{Name: "x", Type: u8}))

	id, ok := reg.Lookup("Point")
	require.True(t, ok)
	assert.Equal(t, point, id)

	again := reg.Define("Byte", CompactOf(u8))
	id, _ = reg.Lookup("Byte")
	assert.Equal(t, again, id)
	assert.NotEqual(t, first, again)

	assert.Equal(t, []string{"Byte", "Point"}, reg.Names())

	_, ok = reg.Lookup("Missing")
	assert.False(t, ok)
}

func TestRegistry_ReserveSet(t *testing.T) {
	reg := NewRegistry()
	list := reg.Reserve("List")
	u8 := reg.Primitive(U8)
	require.NoError(t, reg.Set(list, SequenceOf(u8)))

	got, err := reg.Resolve(list)
	require.NoError(t, err)
	assert.Equal(t, KindSequence, got.Kind)
	assert.Equal(t, "List", got.Name)

	err = reg.Set(42, PrimitiveOf(U8))
	assert.True(t, stderrors.Is(err, ErrNotFound))
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	reg := NewRegistry()
	ids := make([]ID, 0, 16)
	for i := 0; i < 16; i++ {
		ids = append(ids, reg.Add(ArrayOf(0, uint64(i))))
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, id := range ids {
				got, err := reg.Resolve(id)
				if err != nil || got.Len != uint64(i) {
					t.Errorf("Resolve(%d) = %v, %v", id, got, err)
				}
			}
		}()
	}
	wg.Wait()
}

func TestResolverFunc(t *testing.T) {
	calls := 0
	r := ResolverFunc(func(id ID) (*Type, error) {
		calls++
		typ := PrimitiveOf(Bool)
		return &typ, nil
	})

	got, err := r.Resolve(3)
	require.NoError(t, err)
	assert.Equal(t, Bool, got.Primitive)
	assert.Equal(t, 1, calls)
}
