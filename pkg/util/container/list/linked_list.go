// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package list provides LinkedList, an unbounded singly-linked deque whose
// nodes are obtained one at a time from an allocator.
package list

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/aeds/pkg/util/alloc"
	"github.com/cockroachdb/aeds/pkg/util/container"
	"github.com/cockroachdb/errors"
)

type node[T any] struct {
	next  *node[T]
	value T
	block alloc.Block
}

// LinkedList is a deque over a chain of nodes, one per element. Unlike
// ring.VectorList it has no capacity; a push only fails when the element is
// absent or the allocator refuses the node.
//
// The zero value is an empty list allocating from the Go heap.
type LinkedList[T any] struct {
	allocator alloc.Allocator // borrowed
	cfg       container.Config[T]

	// head and tail are both nil exactly when the list is empty.
	head, tail *node[T]
	length     int
}

var _ container.Deque[int] = (*LinkedList[int])(nil)

// New creates an empty list allocating its nodes from a (the Go heap when a
// is nil).
func New[T any](a alloc.Allocator, opts ...container.Option[T]) *LinkedList[T] {
	if a == nil {
		a = alloc.Heap()
	}
	return &LinkedList[T]{allocator: a, cfg: container.MakeConfig(opts...)}
}

func (l *LinkedList[T]) nodeAllocator() alloc.Allocator {
	if l.allocator == nil {
		return alloc.Heap()
	}
	return l.allocator
}

func (l *LinkedList[T]) newNode(v T) (*node[T], error) {
	if l.cfg.IsAbsent(v) {
		return nil, container.ErrAbsent
	}
	n, blk, err := alloc.New[node[T]](l.nodeAllocator())
	if err != nil {
		return nil, errors.Mark(err, container.ErrAllocation)
	}
	n.value, n.block = v, blk
	return n, nil
}

func (l *LinkedList[T]) freeNode(n *node[T]) T {
	v := n.value
	l.nodeAllocator().Deallocate(n.block)
	*n = node[T]{}
	return v
}

// IsEmpty returns whether the list holds no elements.
func (l *LinkedList[T]) IsEmpty() bool {
	return l.head == nil
}

// Len returns the number of elements in the list.
func (l *LinkedList[T]) Len() int {
	return l.length
}

// TryPushHead inserts v before the first element. It returns
// container.ErrAbsent for an absent v, or an error marked
// container.ErrAllocation when the node cannot be allocated.
func (l *LinkedList[T]) TryPushHead(v T) error {
	n, err := l.newNode(v)
	if err != nil {
		return err
	}
	n.next = l.head
	if l.IsEmpty() {
		l.tail = n
	}
	l.head = n
	l.length++
	return nil
}

// TryPushTail inserts v after the last element. It returns
// container.ErrAbsent for an absent v, or an error marked
// container.ErrAllocation when the node cannot be allocated.
func (l *LinkedList[T]) TryPushTail(v T) error {
	n, err := l.newNode(v)
	if err != nil {
		return err
	}
	if l.IsEmpty() {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.length++
	return nil
}

// PushHead inserts v before the first element and returns whether it
// succeeded.
func (l *LinkedList[T]) PushHead(v T) bool {
	return l.TryPushHead(v) == nil
}

// PushTail inserts v after the last element and returns whether it
// succeeded.
func (l *LinkedList[T]) PushTail(v T) bool {
	return l.TryPushTail(v) == nil
}

// PopHead removes and returns the first element, or the zero T and false if
// the list is empty. O(1).
func (l *LinkedList[T]) PopHead() (T, bool) {
	if l.IsEmpty() {
		var zero T
		return zero, false
	}
	n := l.head
	l.head = n.next
	if l.tail == n {
		l.tail = nil
	}
	l.length--
	return l.freeNode(n), true
}

// PopTail removes and returns the last element, or the zero T and false if
// the list is empty. The list is singly linked, so this walks to the
// element preceding the tail: O(n).
func (l *LinkedList[T]) PopTail() (T, bool) {
	if l.IsEmpty() {
		var zero T
		return zero, false
	}
	n := l.tail
	if l.head == n {
		l.head, l.tail = nil, nil
	} else {
		prev := l.head
		for prev.next != n {
			prev = prev.next
		}
		prev.next = nil
		l.tail = prev
	}
	l.length--
	return l.freeNode(n), true
}

// PeekHead returns the first element without removing it.
func (l *LinkedList[T]) PeekHead() (T, bool) {
	if l.IsEmpty() {
		var zero T
		return zero, false
	}
	return l.head.value, true
}

// PeekTail returns the last element without removing it.
func (l *LinkedList[T]) PeekTail() (T, bool) {
	if l.IsEmpty() {
		var zero T
		return zero, false
	}
	return l.tail.value, true
}

// Each calls f on the elements from head to tail until f returns false.
func (l *LinkedList[T]) Each(f func(T) bool) {
	for n := l.head; n != nil; n = n.next {
		if !f(n.value) {
			return
		}
	}
}

// Teardown destroys the list. Each node is visited from head to tail: the
// destructor (d, or the one the list was configured to own its elements
// with), if any, is called on the element with a, and the node is returned
// to the list's allocator. The list is left empty, with an allocator that
// refuses every further node.
func (l *LinkedList[T]) Teardown(d container.Destructor[T], a alloc.Allocator) {
	d = l.cfg.Destructor(d)
	var next *node[T]
	for n := l.head; n != nil; n = next {
		next = n.next
		if d != nil {
			d(a, n.value)
		}
		l.freeNode(n)
	}
	*l = LinkedList[T]{allocator: alloc.Null()}
}

// String renders the elements from head to tail.
func (l *LinkedList[T]) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for n := l.head; n != nil; n = n.next {
		if n != l.head {
			buf.WriteByte(' ')
		}
		fmt.Fprint(&buf, n.value)
	}
	buf.WriteByte(']')
	return buf.String()
}
