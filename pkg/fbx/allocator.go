package fbx

import (
	"fmt"
	"sync"
	"unsafe"
)

// Allocator supplies and reclaims every owned region of a Document.
// Alloc must return a slice of length n. Free receives exactly the slice
// Alloc returned. Zero-size requests never reach an Allocator.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(p []byte)
}

// HeapAllocator allocates from the Go heap. Free is a no-op.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrAllocation, n)
	}
	return make([]byte, n), nil
}

func (HeapAllocator) Free([]byte) {}

// LimitAllocator fails requests that would raise the live byte count of
// its parent above Limit.
type LimitAllocator struct {
	Parent Allocator
	Limit  int64

	mu   sync.Mutex
	live int64
}

// NewLimitAllocator wraps parent with a ceiling of limit live bytes.
// A nil parent means HeapAllocator.
func NewLimitAllocator(parent Allocator, limit int64) *LimitAllocator {
	if parent == nil {
		parent = HeapAllocator{}
	}
	return &LimitAllocator{Parent: parent, Limit: limit}
}

func (a *LimitAllocator) Alloc(n int) ([]byte, error) {
	a.mu.Lock()
	if a.Limit > 0 && a.live+int64(n) > a.Limit {
		live := a.live
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: %d bytes requested with %d of %d live", ErrAllocation, n, live, a.Limit)
	}
	a.live += int64(n)
	a.mu.Unlock()

	p, err := a.Parent.Alloc(n)
	if err != nil {
		a.mu.Lock()
		a.live -= int64(n)
		a.mu.Unlock()
		return nil, err
	}
	return p, nil
}

func (a *LimitAllocator) Free(p []byte) {
	a.mu.Lock()
	a.live -= int64(len(p))
	a.mu.Unlock()
	a.Parent.Free(p)
}

// Live returns the number of bytes currently allocated through a.
func (a *LimitAllocator) Live() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// AllocStats is a snapshot of a CountingAllocator.
type AllocStats struct {
	Allocs    int
	Frees     int
	BadFrees  int
	LiveBytes int64
	PeakBytes int64
}

// Balanced reports whether every allocation was freed exactly once.
func (s AllocStats) Balanced() bool {
	return s.Allocs == s.Frees && s.BadFrees == 0 && s.LiveBytes == 0
}

// CountingAllocator records every allocation and release made through it.
// A Free of a region that is not live (a double or foreign release) is
// counted in BadFrees and not forwarded.
type CountingAllocator struct {
	Parent Allocator

	mu    sync.Mutex
	live  map[*byte]int
	stats AllocStats
}

// NewCountingAllocator wraps parent. A nil parent means HeapAllocator.
func NewCountingAllocator(parent Allocator) *CountingAllocator {
	if parent == nil {
		parent = HeapAllocator{}
	}
	return &CountingAllocator{Parent: parent, live: make(map[*byte]int)}
}

func (a *CountingAllocator) Alloc(n int) ([]byte, error) {
	p, err := a.Parent.Alloc(n)
	if err != nil {
		return nil, err
	}
	if cap(p) == 0 {
		return p, nil
	}
	a.mu.Lock()
	a.live[unsafe.SliceData(p)] = len(p)
	a.stats.Allocs++
	a.stats.LiveBytes += int64(len(p))
	a.stats.PeakBytes = max(a.stats.PeakBytes, a.stats.LiveBytes)
	a.mu.Unlock()
	return p, nil
}

func (a *CountingAllocator) Free(p []byte) {
	if cap(p) == 0 {
		return
	}
	key := unsafe.SliceData(p)
	a.mu.Lock()
	n, ok := a.live[key]
	if !ok {
		a.stats.BadFrees++
		a.mu.Unlock()
		return
	}
	delete(a.live, key)
	a.stats.Frees++
	a.stats.LiveBytes -= int64(n)
	a.mu.Unlock()
	a.Parent.Free(p)
}

// Stats returns a snapshot of the counters.
func (a *CountingAllocator) Stats() AllocStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
