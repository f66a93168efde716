package fbx

import (
	"fmt"
	"unsafe"
)

const minArrayCap = 4

// Array is an ordered, index-addressable sequence of T.
//
// Capacity is accounted against an Allocator as a reservation of
// cap*sizeof(T) bytes, so growth can fail and release can be audited.
// The reservation is accounting only: elements live in a separate Go
// slice, since T may hold pointers the collector must see. Only the
// current reservation is ever live. The zero Array is empty and owns
// nothing.
type Array[T any] struct {
	items   []T
	reserve []byte
	alloc   Allocator
}

func newArray[T any](a Allocator) Array[T] {
	return Array[T]{alloc: a}
}

func (a *Array[T]) allocator() Allocator {
	if a.alloc == nil {
		a.alloc = HeapAllocator{}
	}
	return a.alloc
}

func (a *Array[T]) grow() error {
	var zero T
	elem := max(int(unsafe.Sizeof(zero)), 1)
	newCap := max(minArrayCap, 2*cap(a.items))
	if newCap > int(^uint(0)>>1)/elem {
		return fmt.Errorf("%w: array of %d elements too large", ErrAllocation, newCap)
	}
	res, err := a.allocator().Alloc(newCap * elem)
	if err != nil {
		return err
	}
	items := make([]T, len(a.items), newCap)
	copy(items, a.items)
	if a.reserve != nil {
		a.alloc.Free(a.reserve)
	}
	a.items = items
	a.reserve = res
	return nil
}

// Push appends v.
func (a *Array[T]) Push(v T) error {
	if len(a.items) == cap(a.items) {
		if err := a.grow(); err != nil {
			return err
		}
	}
	a.items = append(a.items, v)
	return nil
}

// RemoveAt deletes the element at i, shifting later elements down.
func (a *Array[T]) RemoveAt(i int) {
	if i < 0 || i >= len(a.items) {
		panic(fmt.Sprintf("fbx: remove index %d out of range [0,%d)", i, len(a.items)))
	}
	copy(a.items[i:], a.items[i+1:])
	var zero T
	a.items[len(a.items)-1] = zero
	a.items = a.items[:len(a.items)-1]
}

// At returns the element at i.
func (a *Array[T]) At(i int) T {
	return a.items[i]
}

// Set replaces the element at i.
func (a *Array[T]) Set(i int, v T) {
	a.items[i] = v
}

// Ptr returns a pointer to the element at i. It is invalidated by the next
// Push.
func (a *Array[T]) Ptr(i int) *T {
	return &a.items[i]
}

// Last returns the final element and whether there is one.
func (a *Array[T]) Last() (T, bool) {
	if len(a.items) == 0 {
		var zero T
		return zero, false
	}
	return a.items[len(a.items)-1], true
}

func (a *Array[T]) Len() int {
	return len(a.items)
}

// Slice returns a view of the elements. Callers must not modify it.
func (a *Array[T]) Slice() []T {
	return a.items
}

// Release returns the reservation to its allocator and empties a. It is
// safe to call more than once.
func (a *Array[T]) Release() {
	if a.reserve != nil {
		a.alloc.Free(a.reserve)
	}
	a.items = nil
	a.reserve = nil
}
