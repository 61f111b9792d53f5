// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package container holds the contract shared by the double-ended
// containers: the fixed-capacity ring.VectorList and the unbounded
// list.LinkedList. Both store element handles that they borrow from the
// caller unless configured to own them, and both obtain their storage from
// an alloc.Allocator supplied at construction.
//
// None of the containers are safe for concurrent use.
package container

import (
	"github.com/cockroachdb/aeds/pkg/util/alloc"
	"github.com/cockroachdb/errors"
)

// Deque is the push/pop-at-either-end surface implemented by every
// container in this module.
type Deque[T any] interface {
	// IsEmpty returns whether the container holds no elements.
	IsEmpty() bool
	// Len returns the number of elements held.
	Len() int
	// PushHead inserts v before the first element. It returns false, leaving
	// the container untouched, when v cannot be stored.
	PushHead(v T) bool
	// PushTail inserts v after the last element. It returns false, leaving
	// the container untouched, when v cannot be stored.
	PushTail(v T) bool
	// PopHead removes and returns the first element. It returns the zero T
	// and false when there is none.
	PopHead() (T, bool)
	// PopTail removes and returns the last element. It returns the zero T
	// and false when there is none.
	PopTail() (T, bool)
}

// Destructor releases an element handle when a container is torn down. It
// receives the allocator passed to the teardown, which need not be the one
// backing the container.
type Destructor[T any] func(a alloc.Allocator, v T)

// Reasons a push is rejected. The boolean Push methods collapse all of them
// into false; the TryPush methods return one of these.
var (
	// ErrUninitialized is returned when the container has no storage.
	ErrUninitialized = errors.New("container not initialized")
	// ErrAbsent is returned when the pushed handle is absent (nil).
	ErrAbsent = errors.New("absent element handle")
	// ErrFull is returned when a fixed-capacity container is at capacity.
	ErrFull = errors.New("container full")
	// ErrAllocation marks errors of the allocator backing the container.
	ErrAllocation = errors.New("container allocation failed")
)

// Drain pops every element of d from the head and returns them in order.
func Drain[T any](d Deque[T]) []T {
	var res []T
	for {
		v, ok := d.PopHead()
		if !ok {
			return res
		}
		res = append(res, v)
	}
}
