// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package alloc defines the allocator capability that containers consume
// for their backing storage.
//
// The Go runtime owns the actual memory, so an Allocator is an admission and
// accounting contract: it decides whether a request for count elements of
// elemSize bytes is granted and keeps track of it until the returned Block is
// handed back through Deallocate. MakeSlice and New pair a grant with the Go
// value that backs it.
package alloc

import (
	"math"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// ErrRefused is returned (possibly wrapped or marked) by every allocator
// that declines a well-formed request.
var ErrRefused = errors.New("allocation refused")

// ErrInvalidRequest is returned for requests with a non-positive count or a
// negative element size.
var ErrInvalidRequest = errors.New("invalid allocation request")

// Block describes a grant handed out by an Allocator. The zero Block stands
// for "nothing allocated" and may always be passed to Deallocate.
type Block struct {
	Count    int
	ElemSize int
	// Tag identifies the grant. Its meaning is private to the Allocator
	// that produced the block, but it is unique among the live blocks of
	// that allocator.
	Tag uint64
}

// Size returns the number of bytes covered by the block.
func (b Block) Size() int64 {
	return int64(b.Count) * int64(b.ElemSize)
}

// IsZero returns whether b is the zero Block.
func (b Block) IsZero() bool {
	return b == Block{}
}

// Allocator is the capability supplying and reclaiming backing storage.
type Allocator interface {
	// Allocate requests count elements of elemSize bytes each.
	Allocate(count, elemSize int) (Block, error)
	// Deallocate releases a block previously returned by Allocate. The zero
	// Block is ignored.
	Deallocate(Block)
}

// maxSliceBytes is the largest backing array the runtime agrees to make.
const maxSliceBytes = 1 << (31 + 17*(bits.UintSize/64))

// ValidateRequest returns an error wrapping ErrInvalidRequest unless count is
// positive, elemSize is not negative and their product fits in an int64.
func ValidateRequest(count, elemSize int) error {
	if count <= 0 || elemSize < 0 {
		return errors.Wrapf(ErrInvalidRequest, "count=%d elemSize=%d", count, elemSize)
	}
	if elemSize > 0 && int64(count) > math.MaxInt64/int64(elemSize) {
		return errors.Wrapf(ErrInvalidRequest, "count=%d elemSize=%d overflows", count, elemSize)
	}
	return nil
}

// MakeSlice obtains a grant for n elements of type T from a and returns the
// slice backing it. Lengths the runtime cannot allocate are rejected with
// ErrInvalidRequest before a is consulted.
func MakeSlice[T any](a Allocator, n int) ([]T, Block, error) {
	var zero T
	if size := int64(unsafe.Sizeof(zero)); size > 0 && n > 0 && int64(n) > maxSliceBytes/size {
		return nil, Block{}, errors.Wrapf(ErrInvalidRequest,
			"%d elements of %d bytes exceed the largest slice", n, size)
	}
	b, err := a.Allocate(n, int(unsafe.Sizeof(zero)))
	if err != nil {
		return nil, Block{}, err
	}
	return make([]T, n), b, nil
}

// New obtains a grant for a single T from a and returns a pointer to a new
// zero T.
func New[T any](a Allocator) (*T, Block, error) {
	var zero T
	b, err := a.Allocate(1, int(unsafe.Sizeof(zero)))
	if err != nil {
		return nil, Block{}, err
	}
	return new(T), b, nil
}

type heapAllocator struct {
	seq atomic.Uint64
}

var heap heapAllocator

// Heap returns the allocator backed by the Go heap. It grants every valid
// request.
func Heap() Allocator {
	return &heap
}

func (h *heapAllocator) Allocate(count, elemSize int) (Block, error) {
	if err := ValidateRequest(count, elemSize); err != nil {
		return Block{}, err
	}
	return Block{Count: count, ElemSize: elemSize, Tag: h.seq.Add(1)}, nil
}

func (h *heapAllocator) Deallocate(Block) {}

type nullAllocator struct{}

// Null returns an allocator that refuses every request. Containers fall back
// to it once they have been torn down.
func Null() Allocator {
	return nullAllocator{}
}

func (nullAllocator) Allocate(count, elemSize int) (Block, error) {
	if err := ValidateRequest(count, elemSize); err != nil {
		return Block{}, err
	}
	return Block{}, errors.Wrap(ErrRefused, "null allocator")
}

func (nullAllocator) Deallocate(Block) {}
