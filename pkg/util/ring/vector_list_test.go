// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package ring

import (
	"math"
	"testing"

	"github.com/cockroachdb/aeds/pkg/util/alloc"
	"github.com/cockroachdb/aeds/pkg/util/container"
	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func checkInvariants[T any](t *testing.T, l *VectorList[T]) {
	t.Helper()
	require.NoError(t, l.checkInvariants())
	require.False(t, l.IsEmpty() && l.IsFull(), "list both empty and full")
	require.Equal(t, l.Len() == l.Cap() && l.Cap() > 0, l.IsFull())
}

func elements[T any](l *VectorList[T]) []T {
	var res []T
	l.Each(func(v T) bool {
		res = append(res, v)
		return true
	})
	return res
}

type snapshot[T any] struct {
	data       []T
	head, tail int
	length     int
}

func takeSnapshot[T any](l *VectorList[T]) snapshot[T] {
	return snapshot[T]{
		data:   append([]T(nil), l.data...),
		head:   l.head,
		tail:   l.tail,
		length: l.length,
	}
}

// countingAllocator records the requests it sees and forwards them to the
// heap.
type countingAllocator struct {
	allocs, deallocs int
}

func (c *countingAllocator) Allocate(count, elemSize int) (alloc.Block, error) {
	c.allocs++
	return alloc.Heap().Allocate(count, elemSize)
}

func (c *countingAllocator) Deallocate(b alloc.Block) {
	if !b.IsZero() {
		c.deallocs++
	}
}

func TestScenarioCapacityThree(t *testing.T) {
	l := New[string](nil, 3)
	require.True(t, l.IsInitialized())
	require.Equal(t, 3, l.Cap())
	require.Equal(t, Empty, l.State())

	for _, v := range []string{"A", "B", "C"} {
		require.True(t, l.PushTail(v))
		checkInvariants(t, l)
	}
	require.True(t, l.IsFull())
	require.Equal(t, Full, l.State())

	before := takeSnapshot(l)
	require.False(t, l.PushTail("D"))
	require.Equal(t, before, takeSnapshot(l))
	require.False(t, l.PushHead("D"))
	require.Equal(t, before, takeSnapshot(l))

	v, ok := l.PopHead()
	require.True(t, ok)
	require.Equal(t, "A", v)
	require.False(t, l.IsFull())
	require.Equal(t, Partial, l.State())

	require.True(t, l.PushHead("E"))
	require.True(t, l.IsFull())
	checkInvariants(t, l)
	require.Equal(t, []string{"E", "B", "C"}, elements(l))
	require.Equal(t, "[E B C]", l.String())
}

func TestScenarioCapacityZero(t *testing.T) {
	var c countingAllocator
	l := New[int](&c, 0)
	require.False(t, l.IsInitialized())
	require.True(t, l.IsEmpty())
	require.False(t, l.IsFull())
	require.Equal(t, 0, c.allocs)

	require.False(t, l.PushHead(1))
	require.False(t, l.PushTail(1))
	require.True(t, errors.Is(l.TryPushTail(1), container.ErrUninitialized))
	_, ok := l.PopHead()
	require.False(t, ok)
	_, ok = l.PopTail()
	require.False(t, ok)
	require.Equal(t, 0, c.allocs)

	l.Teardown(nil, nil)
	require.Equal(t, 0, c.deallocs)

	require.False(t, New[int](&c, -4).IsInitialized())
	require.Equal(t, 0, c.allocs)
}

func TestZeroValue(t *testing.T) {
	var l VectorList[int]
	require.False(t, l.IsInitialized())
	require.True(t, l.IsEmpty())
	require.False(t, l.PushTail(1))
	_, ok := l.PopTail()
	require.False(t, ok)
	require.Equal(t, "[]", l.String())
	l.Teardown(func(alloc.Allocator, int) { t.Fatal("unexpected destructor call") }, nil)
}

func TestAllocationRefused(t *testing.T) {
	l := New[int](alloc.Null(), 4)
	require.False(t, l.IsInitialized())
	require.False(t, l.PushTail(1))

	b := alloc.NewBudget("small", nil, 16)
	require.False(t, New[int64](b, 3).IsInitialized())
	l2 := New[int64](b, 2)
	require.True(t, l2.IsInitialized())
	require.Equal(t, int64(16), b.Used())
	l2.Teardown(nil, nil)
	require.Equal(t, int64(0), b.Used())

	// Requests whose size overflows are refused without charging the budget.
	huge := New[int64](alloc.NewBudget("huge", nil, 64), math.MaxInt/4+1)
	require.False(t, huge.IsInitialized())
	require.False(t, huge.PushTail(1))
	tooLong := New[int64](nil, math.MaxInt/2)
	require.False(t, tooLong.IsInitialized())
}

func TestPushRejectionKinds(t *testing.T) {
	x, y := 1, 2
	l := New[*int](nil, 1)
	require.True(t, errors.Is(l.TryPushTail(nil), container.ErrAbsent))
	require.True(t, errors.Is(l.TryPushHead(nil), container.ErrAbsent))
	require.False(t, l.PushTail(nil))
	require.True(t, l.IsEmpty())

	require.NoError(t, l.TryPushTail(&x))
	require.True(t, errors.Is(l.TryPushTail(&y), container.ErrFull))
	require.True(t, errors.Is(l.TryPushHead(&y), container.ErrFull))
	// An absent handle is reported as such even when the list is full.
	require.True(t, errors.Is(l.TryPushHead(nil), container.ErrAbsent))

	p, ok := l.PopTail()
	require.True(t, ok)
	require.Same(t, &x, p)
}

func TestCustomAbsent(t *testing.T) {
	l := New[string](nil, 2, container.WithAbsent(func(s string) bool { return s == "" }))
	require.False(t, l.PushTail(""))
	require.True(t, l.PushTail("a"))
	require.Equal(t, 1, l.Len())
}

func TestLIFO(t *testing.T) {
	const n = 7
	for _, tc := range []struct {
		name string
		push func(*VectorList[int], int) bool
		pop  func(*VectorList[int]) (int, bool)
	}{
		{"tail", (*VectorList[int]).PushTail, (*VectorList[int]).PopTail},
		{"head", (*VectorList[int]).PushHead, (*VectorList[int]).PopHead},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := New[int](nil, n)
			for i := 0; i < n; i++ {
				require.True(t, tc.push(l, i))
				checkInvariants(t, l)
			}
			require.True(t, l.IsFull())
			for i := n - 1; i >= 0; i-- {
				v, ok := tc.pop(l)
				require.True(t, ok)
				require.Equal(t, i, v)
				checkInvariants(t, l)
			}
			require.True(t, l.IsEmpty())
		})
	}
}

func TestFIFO(t *testing.T) {
	const n = 5
	for _, tc := range []struct {
		name string
		push func(*VectorList[int], int) bool
		pop  func(*VectorList[int]) (int, bool)
	}{
		{"tail-to-head", (*VectorList[int]).PushTail, (*VectorList[int]).PopHead},
		{"head-to-tail", (*VectorList[int]).PushHead, (*VectorList[int]).PopTail},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := New[int](nil, n)
			// Go around the ring several times so that every slot serves as
			// both head and tail.
			next, want := 0, 0
			for round := 0; round < 4*n; round++ {
				for !l.IsFull() {
					require.True(t, tc.push(l, next))
					next++
				}
				checkInvariants(t, l)
				for i := 0; i < 1+round%n; i++ {
					v, ok := tc.pop(l)
					require.True(t, ok)
					require.Equal(t, want, v)
					want++
					checkInvariants(t, l)
				}
			}
		})
	}
}

func TestWraparound(t *testing.T) {
	l := New[int](nil, 4)
	require.Equal(t, 1, l.successor(0))
	require.Equal(t, 0, l.successor(3))
	require.Equal(t, 3, l.predecessor(0))
	require.Equal(t, 2, l.predecessor(3))

	// A head push on an empty list lands in slot 0, the next one wraps to
	// the last slot.
	require.True(t, l.PushHead(1))
	require.Equal(t, 0, l.head)
	require.True(t, l.PushHead(2))
	require.Equal(t, 3, l.head)
	require.Equal(t, 0, l.tail)
	require.True(t, l.PushTail(3))
	require.True(t, l.PushTail(4))
	require.True(t, l.IsFull())
	require.Equal(t, l.head, l.successor(l.tail))
	checkInvariants(t, l)
	require.Equal(t, []int{2, 1, 3, 4}, elements(l))

	// Single element: head == tail and the list is not full.
	single := New[int](nil, 4)
	require.True(t, single.PushTail(9))
	require.Equal(t, single.head, single.tail)
	require.False(t, single.IsFull())
	v, ok := single.PopTail()
	require.True(t, ok)
	require.Equal(t, 9, v)
	require.True(t, single.IsEmpty())
	checkInvariants(t, single)

	// Capacity one: the only slot is its own successor.
	one := New[int](nil, 1)
	require.True(t, one.PushHead(5))
	require.True(t, one.IsFull())
	require.False(t, one.PushTail(6))
	checkInvariants(t, one)
}

func TestPopEmpty(t *testing.T) {
	l := New[*int](nil, 3)
	for i := 0; i < 3; i++ {
		v, ok := l.PopHead()
		require.False(t, ok)
		require.Nil(t, v)
		v, ok = l.PopTail()
		require.False(t, ok)
		require.Nil(t, v)
		require.True(t, l.IsEmpty())
		checkInvariants(t, l)
	}
}

func TestPopClearsSlot(t *testing.T) {
	x := 1
	l := New[*int](nil, 2)
	require.True(t, l.PushTail(&x))
	_, _ = l.PopHead()
	for _, p := range l.data {
		require.Nil(t, p)
	}
}

func TestPeekAndEach(t *testing.T) {
	l := New[int](nil, 4)
	_, ok := l.PeekHead()
	require.False(t, ok)
	_, ok = l.PeekTail()
	require.False(t, ok)

	for i := 1; i <= 3; i++ {
		l.PushTail(i)
	}
	h, _ := l.PeekHead()
	tl, _ := l.PeekTail()
	require.Equal(t, 1, h)
	require.Equal(t, 3, tl)
	require.Equal(t, 3, l.Len())

	var seen []int
	l.Each(func(v int) bool {
		seen = append(seen, v)
		return v < 2
	})
	require.Equal(t, []int{1, 2}, seen)
}

func TestTeardown(t *testing.T) {
	tr := alloc.NewTracking(nil)
	l := New[int](tr, 4)
	require.Equal(t, 1, tr.Len())
	for _, v := range []int{1, 2, 3} {
		l.PushHead(v)
	}
	l.PushTail(4)
	l.PopHead()
	l.PushTail(5)

	var destroyed []int
	var seenAlloc alloc.Allocator
	marker := alloc.NewBudget("marker", nil, 0)
	l.Teardown(func(a alloc.Allocator, v int) {
		seenAlloc = a
		destroyed = append(destroyed, v)
	}, marker)

	if diff := cmp.Diff([]int{2, 1, 4, 5}, destroyed); diff != "" {
		t.Fatalf("unexpected destruction order (-want +got):\n%s", diff)
	}
	require.Same(t, marker, seenAlloc)
	require.NoError(t, tr.AssertEmpty())
	require.False(t, l.IsInitialized())
	require.True(t, l.IsEmpty())
	require.Equal(t, 0, l.Cap())

	// A second teardown is harmless.
	l.Teardown(func(alloc.Allocator, int) { t.Fatal("unexpected destructor call") }, nil)
	require.NoError(t, tr.AssertEmpty())
}

func TestTeardownWithoutDestructor(t *testing.T) {
	var c countingAllocator
	l := New[int](&c, 3)
	l.PushTail(1)
	l.Teardown(nil, nil)
	require.Equal(t, 1, c.allocs)
	require.Equal(t, 1, c.deallocs)
	require.False(t, l.IsInitialized())
	require.False(t, l.PushTail(1))
}

func TestOwnedElements(t *testing.T) {
	destroyed := map[int]int{}
	owned := func(_ alloc.Allocator, v int) { destroyed[v]++ }
	l := New[int](nil, 3, container.WithOwnedElements[int](owned))
	l.PushTail(1)
	l.PushTail(2)
	l.Teardown(nil, nil)
	require.Equal(t, map[int]int{1: 1, 2: 1}, destroyed)

	// An explicit destructor takes precedence.
	destroyed = map[int]int{}
	var explicit int
	l = New[int](nil, 3, container.WithOwnedElements[int](owned))
	l.PushTail(1)
	l.Teardown(func(alloc.Allocator, int) { explicit++ }, nil)
	require.Empty(t, destroyed)
	require.Equal(t, 1, explicit)
}

func TestDrain(t *testing.T) {
	l := New[int](nil, 3)
	l.PushTail(2)
	l.PushHead(1)
	l.PushTail(3)
	require.Equal(t, []int{1, 2, 3}, container.Drain[int](l))
	require.True(t, l.IsEmpty())
}
