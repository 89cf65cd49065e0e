package ref_test

import (
	"reflect"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/serdes/ref"
)

func TestRef_CopiesShareAllocation(t *testing.T) {
	a := ref.Make([]string{"x"})
	b := a
	b.Set([]string{"y", "z"})
	assert.Equal(t, []string{"y", "z"}, a.Get())
	assert.True(t, a.Same(b))
	assert.Equal(t, 0, ref.Compare(a, b))

	*a.Ptr() = append(*a.Ptr(), "w")
	assert.Len(t, b.Get(), 3)
}

func TestRef_DistinctAllocations(t *testing.T) {
	a, b := ref.Make(1), ref.Make(1)
	assert.False(t, a.Same(b))
	assert.NotZero(t, ref.Compare(a, b))
	assert.Equal(t, -ref.Compare(a, b), ref.Compare(b, a))
	assert.NotEqual(t, a.String(), b.String())
}

func TestRef_ZeroMisuseIsLoud(t *testing.T) {
	var r ref.Ref[int]
	assert.True(t, r.IsZero())
	assert.Equal(t, 0, r.Get())
	assert.PanicsWithValue(t, ref.ErrZeroRef, func() { r.Set(5) })
	assert.PanicsWithValue(t, ref.ErrZeroRef, func() { _ = r.Ptr() })
	assert.True(t, r.Share().IsNil())

	var other ref.Ref[int]
	assert.False(t, r.Same(other), "zero Refs share no allocation")
	assert.False(t, r.Same(r))
	assert.Equal(t, 0, ref.Compare(r, other))
	assert.Equal(t, -1, ref.Compare(r, ref.Make(0)))

	v, ok := ref.Handle(r).Load()
	require.True(t, ok)
	assert.Equal(t, int64(0), v.Int())

	n := ref.New[string]()
	assert.False(t, n.IsZero())
	assert.Equal(t, "", n.Get())
	n.Set("set")
	assert.Equal(t, "set", n.Get())
}

func TestOf(t *testing.T) {
	_, ok := ref.Of[int](nil)
	assert.False(t, ok)

	v := 3
	r, ok := ref.Of(&v)
	require.True(t, ok)
	r.Set(4)
	assert.Equal(t, 4, v)
	assert.Same(t, &v, r.Ptr())
}

func TestConvert_AllocatesNewValue(t *testing.T) {
	src := ref.Make(42)
	dst := ref.Convert(src, strconv.Itoa)
	assert.Equal(t, "42", dst.Get())
	src.Set(7)
	assert.Equal(t, "42", dst.Get())
}

func TestSwap(t *testing.T) {
	a, b := ref.Make("a"), ref.Make("b")
	pa := a.Ptr()
	a.Swap(&b)
	assert.Equal(t, "b", a.Get())
	assert.Equal(t, "a", b.Get())
	assert.Same(t, pa, b.Ptr())
}

func TestShared(t *testing.T) {
	var empty ref.Shared[int]
	assert.True(t, empty.IsNil())
	_, ok := empty.Get()
	assert.False(t, ok)
	assert.Nil(t, empty.Ptr())
	_, ok = empty.Ref()
	assert.False(t, ok)

	s := ref.Share(10)
	v, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, 10, v)

	r, ok := s.Ref()
	require.True(t, ok)
	r.Set(11)
	v, _ = s.Get()
	assert.Equal(t, 11, v)
	assert.Same(t, s.Ptr(), r.Share().Ptr())

	assert.True(t, ref.Adopt[int](nil).IsNil())
}

func TestHandle(t *testing.T) {
	var h ref.Handle = ref.Make(2.5)
	assert.Equal(t, reflect.TypeFor[float64](), h.ElemType())
	assert.False(t, h.CanBeEmpty())
	v, ok := h.Load()
	require.True(t, ok)
	assert.Equal(t, 2.5, v.Float())

	stored := h.Store(reflect.ValueOf(4.0))
	got, ok := stored.(ref.Ref[float64])
	require.True(t, ok)
	assert.Equal(t, 4.0, got.Get())
	assert.False(t, got.Same(h.(ref.Ref[float64])))

	var sh ref.Handle = ref.Shared[string]{}
	assert.True(t, sh.CanBeEmpty())
	_, ok = sh.Load()
	assert.False(t, ok)
	loaded, ok := sh.Store(reflect.ValueOf("s")).Load()
	require.True(t, ok)
	assert.Equal(t, "s", loaded.String())
}

func TestRef_ConcurrentCopies(t *testing.T) {
	r := ref.Make(map[string]int{"k": 1})
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r
			_ = c.Get()["k"]
			d := c.Share()
			_, _ = d.Ref()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, r.Get()["k"])
}
