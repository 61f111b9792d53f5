// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"unsafe"

	"github.com/cockroachdb/aeds/pkg/util/alloc"
	"github.com/cockroachdb/aeds/pkg/util/container"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/fifo"
)

var errUnsupported = errors.New("operation not supported by fifo")

type fifoEntry struct {
	v     *record
	block alloc.Block
}

var fifoEntrySize = int(unsafe.Sizeof(fifoEntry{}))

// fifoQueue is the baseline target: a cockroachdb/fifo queue whose entries
// are accounted against the simulation's allocator like list nodes are.
type fifoQueue struct {
	a    alloc.Allocator
	cfg  container.Config[*record]
	pool fifo.QueueBackingPool[fifoEntry]
	q    fifo.Queue[fifoEntry]
}

var _ target = (*fifoQueue)(nil)

func newFIFOQueue(a alloc.Allocator, opts ...container.Option[*record]) *fifoQueue {
	f := &fifoQueue{
		a:    a,
		cfg:  container.MakeConfig(opts...),
		pool: fifo.MakeQueueBackingPool[fifoEntry](),
	}
	f.q = fifo.MakeQueue[fifoEntry](&f.pool)
	return f
}

func (f *fifoQueue) IsEmpty() bool { return f.q.Len() == 0 }

func (f *fifoQueue) Len() int { return f.q.Len() }

func (f *fifoQueue) TryPushHead(*record) error { return errUnsupported }

func (f *fifoQueue) TryPushTail(v *record) error {
	if f.cfg.IsAbsent(v) {
		return container.ErrAbsent
	}
	blk, err := f.a.Allocate(1, fifoEntrySize)
	if err != nil {
		return errors.Mark(err, container.ErrAllocation)
	}
	f.q.PushBack(fifoEntry{v: v, block: blk})
	return nil
}

func (f *fifoQueue) PushHead(v *record) bool { return f.TryPushHead(v) == nil }

func (f *fifoQueue) PushTail(v *record) bool { return f.TryPushTail(v) == nil }

func (f *fifoQueue) PopHead() (*record, bool) {
	e := f.q.PeekFront()
	if e == nil {
		return nil, false
	}
	v, blk := e.v, e.block
	f.q.PopFront()
	f.a.Deallocate(blk)
	return v, true
}

func (f *fifoQueue) PopTail() (*record, bool) { return nil, false }

func (f *fifoQueue) Teardown(d container.Destructor[*record], a alloc.Allocator) {
	d = f.cfg.Destructor(d)
	for {
		v, ok := f.PopHead()
		if !ok {
			return
		}
		if d != nil {
			d(a, v)
		}
	}
}
