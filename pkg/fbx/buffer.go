package fbx

import "fmt"

// Buffer is an owned byte region obtained from an Allocator.
//
// Growth beyond the current region reallocates and copies; Trim makes the
// region exactly Len bytes. The zero Buffer is empty and owns nothing.
type Buffer struct {
	region []byte
	n      int
	alloc  Allocator
}

func newBuffer(a Allocator) Buffer {
	return Buffer{alloc: a}
}

func (b *Buffer) allocator() Allocator {
	if b.alloc == nil {
		b.alloc = HeapAllocator{}
	}
	return b.alloc
}

// Alloc makes b an exact region of n bytes, releasing what it held before.
func (b *Buffer) Alloc(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative buffer size %d", ErrAllocation, n)
	}
	b.Release()
	if n == 0 {
		return nil
	}
	p, err := b.allocator().Alloc(n)
	if err != nil {
		return err
	}
	b.region = p
	b.n = n
	return nil
}

// Resize sets the length to n, preserving the existing prefix. Growing
// past the region doubles it (at least to n).
func (b *Buffer) Resize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative buffer size %d", ErrAllocation, n)
	}
	if n <= len(b.region) {
		b.n = n
		return nil
	}
	return b.realloc(max(n, 2*len(b.region)), n)
}

// Trim shrinks the region to exactly Len bytes.
func (b *Buffer) Trim() error {
	if b.n == len(b.region) {
		return nil
	}
	if b.n == 0 {
		b.Release()
		return nil
	}
	return b.realloc(b.n, b.n)
}

func (b *Buffer) realloc(size, n int) error {
	p, err := b.allocator().Alloc(size)
	if err != nil {
		return err
	}
	copy(p, b.region[:min(b.n, n)])
	if b.region != nil {
		b.alloc.Free(b.region)
	}
	b.region = p
	b.n = n
	return nil
}

// Release returns the region to its allocator. It is safe to call more
// than once.
func (b *Buffer) Release() {
	if b.region != nil {
		b.alloc.Free(b.region)
	}
	b.region = nil
	b.n = 0
}

// Bytes returns the owned bytes. The slice is valid until the next
// Resize, Trim or Release.
func (b *Buffer) Bytes() []byte {
	return b.region[:b.n]
}

func (b *Buffer) Len() int {
	return b.n
}

// Cap is the size of the underlying region.
func (b *Buffer) Cap() int {
	return len(b.region)
}
