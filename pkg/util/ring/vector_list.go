// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package ring provides VectorList, a fixed-capacity deque maintained over a
// ring buffer.
package ring

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/aeds/pkg/util/alloc"
	"github.com/cockroachdb/aeds/pkg/util/container"
	"github.com/cockroachdb/aeds/pkg/util/log"
)

// State is the fill state of a VectorList.
type State int8

const (
	// Empty means the list holds no elements. Uninitialized lists are
	// always empty.
	Empty State = iota
	// Partial means the list holds at least one element and has room for
	// more.
	Partial
	// Full means the list holds as many elements as its capacity.
	Full
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("State(%d)", int8(s))
	}
}

// VectorList is a deque maintained over a ring buffer of fixed capacity.
// Storage is obtained once, at construction, from the allocator passed to
// New and given back by Teardown.
//
// The zero value is an uninitialized list: every push fails and every pop
// returns false.
type VectorList[T any] struct {
	allocator alloc.Allocator // borrowed
	cfg       container.Config[T]
	block     alloc.Block
	data      []T

	// head and tail index the first and last elements. They are only
	// meaningful when length > 0. When the list is full, tail's successor is
	// head; when it holds a single element, head == tail. The explicit
	// length tells these cases apart from the empty list.
	head, tail int
	length     int
}

var _ container.Deque[int] = (*VectorList[int])(nil)

// New creates a vector list of the given capacity whose storage is obtained
// from a (the Go heap when a is nil). A capacity of zero or less, or an
// allocator refusing the storage, yields an uninitialized list; no
// allocation is attempted in the former case.
func New[T any](a alloc.Allocator, capacity int, opts ...container.Option[T]) *VectorList[T] {
	if a == nil {
		a = alloc.Heap()
	}
	l := &VectorList[T]{allocator: a, cfg: container.MakeConfig(opts...)}
	if capacity <= 0 {
		return l
	}
	data, blk, err := alloc.MakeSlice[T](a, capacity)
	if err != nil {
		log.VEventf(context.Background(), 1,
			"vector list of capacity %d left uninitialized: %v", capacity, err)
		return l
	}
	l.data, l.block = data, blk
	return l
}

// successor returns the position following p, wrapping to the start of the
// storage.
func (l *VectorList[T]) successor(p int) int {
	if p+1 < len(l.data) {
		return p + 1
	}
	return 0
}

// predecessor returns the position preceding p, wrapping to the end of the
// storage.
func (l *VectorList[T]) predecessor(p int) int {
	if p > 0 {
		return p - 1
	}
	return len(l.data) - 1
}

// IsInitialized returns whether the list has storage.
func (l *VectorList[T]) IsInitialized() bool {
	return l.data != nil
}

// IsEmpty returns whether the list holds no elements.
func (l *VectorList[T]) IsEmpty() bool {
	return l.length == 0
}

// IsFull returns whether the list holds as many elements as its capacity.
func (l *VectorList[T]) IsFull() bool {
	return l.length > 0 && l.length == len(l.data)
}

// State returns the fill state of the list.
func (l *VectorList[T]) State() State {
	switch {
	case l.IsEmpty():
		return Empty
	case l.IsFull():
		return Full
	default:
		return Partial
	}
}

// Len returns the number of elements in the list.
func (l *VectorList[T]) Len() int {
	return l.length
}

// Cap returns the capacity of the list.
func (l *VectorList[T]) Cap() int {
	return len(l.data)
}

func (l *VectorList[T]) checkPush(v T) error {
	switch {
	case !l.IsInitialized():
		return container.ErrUninitialized
	case l.cfg.IsAbsent(v):
		return container.ErrAbsent
	case l.IsFull():
		return container.ErrFull
	}
	return nil
}

// TryPushHead inserts v before the first element. The returned error is one
// of container.ErrUninitialized, container.ErrAbsent or container.ErrFull,
// in which case the list is unchanged.
func (l *VectorList[T]) TryPushHead(v T) error {
	if err := l.checkPush(v); err != nil {
		return err
	}
	if l.IsEmpty() {
		l.head, l.tail = 0, 0
	} else {
		l.head = l.predecessor(l.head)
	}
	l.data[l.head] = v
	l.length++
	return nil
}

// TryPushTail inserts v after the last element. The returned error is one
// of container.ErrUninitialized, container.ErrAbsent or container.ErrFull,
// in which case the list is unchanged.
func (l *VectorList[T]) TryPushTail(v T) error {
	if err := l.checkPush(v); err != nil {
		return err
	}
	if l.IsEmpty() {
		l.head, l.tail = 0, 0
	} else {
		l.tail = l.successor(l.tail)
	}
	l.data[l.tail] = v
	l.length++
	return nil
}

// PushHead inserts v before the first element and returns whether it
// succeeded. It fails when the list is uninitialized or full, or when v is
// absent.
func (l *VectorList[T]) PushHead(v T) bool {
	return l.TryPushHead(v) == nil
}

// PushTail inserts v after the last element and returns whether it
// succeeded. It fails when the list is uninitialized or full, or when v is
// absent.
func (l *VectorList[T]) PushTail(v T) bool {
	return l.TryPushTail(v) == nil
}

// PopHead removes and returns the first element, or the zero T and false if
// the list is empty.
func (l *VectorList[T]) PopHead() (T, bool) {
	var zero T
	if l.IsEmpty() {
		return zero, false
	}
	v := l.data[l.head]
	l.data[l.head] = zero
	if l.head == l.tail {
		l.head, l.tail = 0, 0
	} else {
		l.head = l.successor(l.head)
	}
	l.length--
	return v, true
}

// PopTail removes and returns the last element, or the zero T and false if
// the list is empty.
func (l *VectorList[T]) PopTail() (T, bool) {
	var zero T
	if l.IsEmpty() {
		return zero, false
	}
	v := l.data[l.tail]
	l.data[l.tail] = zero
	if l.head == l.tail {
		l.head, l.tail = 0, 0
	} else {
		l.tail = l.predecessor(l.tail)
	}
	l.length--
	return v, true
}

// PeekHead returns the first element without removing it.
func (l *VectorList[T]) PeekHead() (T, bool) {
	if l.IsEmpty() {
		var zero T
		return zero, false
	}
	return l.data[l.head], true
}

// PeekTail returns the last element without removing it.
func (l *VectorList[T]) PeekTail() (T, bool) {
	if l.IsEmpty() {
		var zero T
		return zero, false
	}
	return l.data[l.tail], true
}

// Each calls f on the elements from head to tail until f returns false.
func (l *VectorList[T]) Each(f func(T) bool) {
	if l.IsEmpty() {
		return
	}
	for p := l.head; ; p = l.successor(p) {
		if !f(l.data[p]) || p == l.tail {
			return
		}
	}
}

// Teardown destroys the list. If the list is not empty and a destructor is
// available (d, or the one the list was configured to own its elements
// with), it is called once on every element from head to tail with a. The
// storage is then returned to the allocator the list was created with, and
// the list is reset to the uninitialized state. Tearing down an
// uninitialized list is a no-op.
func (l *VectorList[T]) Teardown(d container.Destructor[T], a alloc.Allocator) {
	if d = l.cfg.Destructor(d); d != nil && !l.IsEmpty() {
		for p := l.head; ; p = l.successor(p) {
			d(a, l.data[p])
			if p == l.tail {
				break
			}
		}
	}
	if l.allocator != nil {
		l.allocator.Deallocate(l.block)
	}
	*l = VectorList[T]{}
}

// String renders the elements from head to tail.
func (l *VectorList[T]) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	first := true
	l.Each(func(v T) bool {
		if !first {
			buf.WriteByte(' ')
		}
		first = false
		fmt.Fprint(&buf, v)
		return true
	})
	buf.WriteByte(']')
	return buf.String()
}
