package fbx

import (
	"errors"
	"testing"
)

func TestCountingAllocatorDetectsDoubleFree(t *testing.T) {
	t.Parallel()

	a := NewCountingAllocator(nil)
	p, err := a.Alloc(32)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	a.Free(p)
	a.Free(p)
	a.Free(make([]byte, 8))

	st := a.Stats()
	if st.Allocs != 1 || st.Frees != 1 || st.BadFrees != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.Balanced() {
		t.Fatal("bad frees must not count as balanced")
	}
	if st.PeakBytes != 32 || st.LiveBytes != 0 {
		t.Fatalf("byte accounting: %+v", st)
	}
}

func TestLimitAllocator(t *testing.T) {
	t.Parallel()

	a := NewLimitAllocator(nil, 100)
	p, err := a.Alloc(60)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if _, err := a.Alloc(41); !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	if a.Live() != 60 {
		t.Fatalf("failed request changed live count: %d", a.Live())
	}
	a.Free(p)
	if _, err := a.Alloc(100); err != nil {
		t.Fatalf("alloc after free: %v", err)
	}
}

func TestBufferResizeAndTrim(t *testing.T) {
	t.Parallel()

	a := NewCountingAllocator(nil)
	b := newBuffer(a)
	if err := b.Alloc(0); err != nil || b.Len() != 0 {
		t.Fatalf("zero alloc: len=%d err=%v", b.Len(), err)
	}
	if a.Stats().Allocs != 0 {
		t.Fatal("zero-size request reached the allocator")
	}

	if err := b.Resize(3); err != nil {
		t.Fatalf("resize: %v", err)
	}
	copy(b.Bytes(), "abc")
	if err := b.Resize(5); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if b.Cap() != 6 {
		t.Fatalf("growth should double: cap %d", b.Cap())
	}
	if string(b.Bytes()[:3]) != "abc" {
		t.Fatalf("prefix lost: %q", b.Bytes())
	}
	if err := b.Resize(2); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if b.Cap() != 6 {
		t.Fatal("shrinking length should keep the region")
	}
	if err := b.Trim(); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if b.Cap() != 2 || string(b.Bytes()) != "ab" {
		t.Fatalf("trim: cap=%d bytes=%q", b.Cap(), b.Bytes())
	}

	b.Release()
	b.Release()
	if st := a.Stats(); !st.Balanced() {
		t.Fatalf("not balanced: %+v", st)
	}
}

func TestBufferAllocFailureKeepsNothing(t *testing.T) {
	t.Parallel()

	a := NewLimitAllocator(nil, 8)
	b := newBuffer(a)
	if err := b.Alloc(4); err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if err := b.Alloc(16); !errors.Is(err, ErrAllocation) {
		t.Fatalf("got %v", err)
	}
	if b.Len() != 0 || a.Live() != 0 {
		t.Fatalf("failed alloc left state behind: len=%d live=%d", b.Len(), a.Live())
	}
	if err := b.Resize(-1); !errors.Is(err, ErrAllocation) {
		t.Fatalf("negative resize: %v", err)
	}
}

func TestArrayPushRemove(t *testing.T) {
	t.Parallel()

	a := NewCountingAllocator(nil)
	arr := newArray[uint32](a)
	if _, ok := arr.Last(); ok {
		t.Fatal("empty array has a last element")
	}
	for i := range uint32(10) {
		if err := arr.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	arr.RemoveAt(0)
	arr.RemoveAt(arr.Len() - 1)
	if arr.Len() != 8 || arr.At(0) != 1 {
		t.Fatalf("after removes: len=%d first=%d", arr.Len(), arr.At(0))
	}
	if v, _ := arr.Last(); v != 8 {
		t.Fatalf("last: %d", v)
	}
	*arr.Ptr(0) = 100
	arr.Set(1, 200)
	if s := arr.Slice(); s[0] != 100 || s[1] != 200 {
		t.Fatalf("Ptr and Set should write through: %v", s)
	}

	if st := a.Stats(); st.LiveBytes != 16*4 {
		t.Fatalf("reservation should be cap*sizeof: %+v", st)
	}
	arr.Release()
	arr.Release()
	if st := a.Stats(); !st.Balanced() {
		t.Fatalf("not balanced: %+v", st)
	}
}

func TestArrayRemoveOutOfRangePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	arr := newArray[int](nil)
	arr.RemoveAt(0)
}

func TestArrayGrowthFailure(t *testing.T) {
	t.Parallel()

	arr := newArray[uint64](NewLimitAllocator(nil, 32))
	for i := range uint64(4) {
		if err := arr.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := arr.Push(4); !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	if arr.Len() != 4 {
		t.Fatalf("failed push changed length: %d", arr.Len())
	}
}

func TestArrayKeepsOneReservation(t *testing.T) {
	t.Parallel()

	a := NewCountingAllocator(nil)
	arr := newArray[uint64](a)
	for i := range uint64(1000) {
		if err := arr.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
		st := a.Stats()
		if st.Allocs-st.Frees != 1 || st.LiveBytes != int64(cap(arr.items))*8 {
			t.Fatalf("after push %d: cap=%d stats=%+v", i, cap(arr.items), st)
		}
	}
	if st := a.Stats(); st.PeakBytes > 2*int64(cap(arr.items))*8 {
		t.Fatalf("old reservation held past growth: %+v", st)
	}
	arr.Release()
	if st := a.Stats(); !st.Balanced() {
		t.Fatalf("not balanced: %+v", st)
	}
}

func TestKindAndErrorFormatting(t *testing.T) {
	t.Parallel()

	err := classify(errors.Join(ErrDecompression, errors.New("bad block")), "property 2", 99)
	err.Node = "Vertices"
	want := `fbx: decompression error in property 2 of node "Vertices" at offset 99: fbx: decompression failure` + "\nbad block"
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
	if KindOf(err) != KindDecompression || KindOf(ErrIO) != KindIO || KindOf(errors.New("x")) != 0 {
		t.Fatal("KindOf mismatch")
	}
	if again := classify(err, "other", 5); again != err || again.Op != "property 2" {
		t.Fatal("classify should keep an existing classification")
	}
	if s := newError(KindIO, "open", -1, nil).Error(); s != "fbx: io error in open" {
		t.Fatalf("got %q", s)
	}
}
