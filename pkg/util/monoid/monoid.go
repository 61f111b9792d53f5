// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package monoid describes values which can be reset to an identity and
// combined associatively, and folds container contents with them.
package monoid

import (
	"github.com/cockroachdb/aeds/pkg/util/container"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Monoid combines values of type T.
//
// Clear returns the identity element, possibly reusing the storage of its
// argument. Append returns the combination of acc and v.
type Monoid[T any] interface {
	Clear(acc T) T
	Append(acc, v T) T
}

// Funcs adapts a pair of functions to the Monoid interface. Invoking an
// operation whose function is nil panics.
type Funcs[T any] struct {
	ClearFn  func(T) T
	AppendFn func(T, T) T
}

var _ Monoid[int] = Funcs[int]{}

// Clear implements the Monoid interface.
func (f Funcs[T]) Clear(acc T) T {
	if f.ClearFn == nil {
		panic(errors.AssertionFailedf("monoid has no clear operation"))
	}
	return f.ClearFn(acc)
}

// Append implements the Monoid interface.
func (f Funcs[T]) Append(acc, v T) T {
	if f.AppendFn == nil {
		panic(errors.AssertionFailedf("monoid has no append operation"))
	}
	return f.AppendFn(acc, v)
}

// Fold clears init and appends every element popped from the head of d, in
// order. The deque is empty afterwards.
func Fold[T any](m Monoid[T], init T, d container.Deque[T]) T {
	acc := m.Clear(init)
	for !d.IsEmpty() {
		v, ok := d.PopHead()
		if !ok {
			break
		}
		acc = m.Append(acc, v)
	}
	return acc
}

// Number is the set of types Sum accepts.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum is the additive monoid.
type Sum[N Number] struct{}

// Clear implements the Monoid interface.
func (Sum[N]) Clear(N) N { return 0 }

// Append implements the Monoid interface.
func (Sum[N]) Append(acc, v N) N { return acc + v }

// Slice concatenates slices. Clear keeps the accumulator's backing array.
type Slice[E any] struct{}

// Clear implements the Monoid interface.
func (Slice[E]) Clear(acc []E) []E { return acc[:0] }

// Append implements the Monoid interface.
func (Slice[E]) Append(acc, v []E) []E { return append(acc, v...) }

// String concatenates strings.
type String struct{}

// Clear implements the Monoid interface.
func (String) Clear(string) string { return "" }

// Append implements the Monoid interface.
func (String) Append(acc, v string) string { return acc + v }
