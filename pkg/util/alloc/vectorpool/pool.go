// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package vectorpool implements a fixed-slot pool allocator. A Pool reserves
// all of its slots from a parent allocator up front and then hands them out
// one request at a time, which makes it a good fit for node-per-element
// containers such as list.LinkedList.
package vectorpool

import (
	"context"
	"sync"

	"github.com/cockroachdb/aeds/pkg/util/alloc"
	"github.com/cockroachdb/aeds/pkg/util/array"
	"github.com/cockroachdb/aeds/pkg/util/log"
	"github.com/cockroachdb/aeds/pkg/util/ring"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
)

// ErrExhausted marks refusals caused by every slot being in use.
var ErrExhausted = errors.New("pool exhausted")

// ErrTooLarge marks refusals of requests that do not fit in a slot.
var ErrTooLarge = errors.New("request larger than pool slot")

// Option is used to configure a Pool.
type Option interface {
	apply(*config)
}

type optionFunc func(cfg *config)

func (f optionFunc) apply(cfg *config) { f(cfg) }

// OnExhausted creates an Option registering a callback invoked whenever a
// request is refused because no slot is free.
func OnExhausted(f func()) Option {
	return optionFunc(func(cfg *config) {
		cfg.onExhausted = f
	})
}

type config struct {
	onExhausted func()
}

// Stats is a snapshot of the pool's usage.
type Stats struct {
	Slots   int
	InUse   int
	Refused int64
}

// Pool is an allocator granting single slots of a fixed size.
type Pool struct {
	parent   alloc.Allocator
	slotSize int
	cfg      config

	ambientCtx context.Context

	mu struct {
		sync.Mutex
		block   alloc.Block
		free    *ring.VectorList[int]
		inUse   []bool
		refused int64
	}
}

var _ alloc.Allocator = (*Pool)(nil)

// New reserves slots slots of slotSize bytes from parent and returns a pool
// serving them.
func New(parent alloc.Allocator, slots, slotSize int, opts ...Option) (*Pool, error) {
	if parent == nil {
		parent = alloc.Heap()
	}
	if err := alloc.ValidateRequest(slots, slotSize); err != nil {
		return nil, err
	}
	p := &Pool{
		parent:     parent,
		slotSize:   slotSize,
		ambientCtx: logtags.AddTag(context.Background(), "pool", nil),
	}
	for _, opt := range opts {
		opt.apply(&p.cfg)
	}

	blk, err := parent.Allocate(slots, slotSize)
	if err != nil {
		return nil, errors.Wrapf(err, "reserving %d slots of %d bytes", slots, slotSize)
	}
	free := ring.New[int](parent, slots)
	if !free.IsInitialized() {
		parent.Deallocate(blk)
		return nil, errors.Wrapf(alloc.ErrRefused, "allocating free list of %d slots", slots)
	}
	for i := 0; i < slots; i++ {
		free.PushTail(i)
	}
	p.mu.block = blk
	p.mu.free = free
	p.mu.inUse = make([]bool, slots)
	return p, nil
}

// Allocate implements the alloc.Allocator interface. Each granted request
// occupies one slot.
func (p *Pool) Allocate(count, elemSize int) (alloc.Block, error) {
	if err := alloc.ValidateRequest(count, elemSize); err != nil {
		return alloc.Block{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mu.free == nil {
		return alloc.Block{}, errors.Wrap(alloc.ErrRefused, "pool closed")
	}
	if size := int64(count) * int64(elemSize); size > int64(p.slotSize) {
		p.mu.refused++
		return alloc.Block{}, errors.Mark(
			errors.Wrapf(alloc.ErrRefused, "requested %d bytes from slots of %d", size, p.slotSize),
			ErrTooLarge)
	}
	slot, ok := p.mu.free.PopHead()
	if !ok {
		p.mu.refused++
		if p.cfg.onExhausted != nil {
			p.cfg.onExhausted()
		}
		return alloc.Block{}, errors.Mark(
			errors.Wrapf(alloc.ErrRefused, "all %d slots in use", len(p.mu.inUse)),
			ErrExhausted)
	}
	p.mu.inUse[slot] = true
	return alloc.Block{Count: count, ElemSize: elemSize, Tag: uint64(slot) + 1}, nil
}

// Deallocate implements the alloc.Allocator interface. Blocks that do not
// designate a slot in use are logged and ignored.
func (p *Pool) Deallocate(blk alloc.Block) {
	if blk.IsZero() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	slot := int(blk.Tag) - 1
	if slot < 0 || slot >= len(p.mu.inUse) || !p.mu.inUse[slot] {
		log.Errorf(p.ambientCtx, "ignoring release of block %+v: slot not in use", blk)
		return
	}
	p.mu.inUse[slot] = false
	p.mu.free.PushTail(slot)
}

// Stats returns the current usage of the pool.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Stats{Slots: len(p.mu.inUse), Refused: p.mu.refused}
	if p.mu.free != nil {
		s.InUse = s.Slots - p.mu.free.Len()
	}
	return s
}

// Close returns the pool's reservation to the parent allocator. Slots still
// in use are reported and forfeited. Every later request is refused and
// every later release ignored. Closing a closed pool is a no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mu.free == nil {
		return
	}
	if n := len(p.mu.inUse) - p.mu.free.Len(); n > 0 {
		log.Warningf(p.ambientCtx, "closing pool with %d of %d slots in use", n, len(p.mu.inUse))
	}
	// Slots still out are forfeited; releasing them later is ignored.
	array.Fill(p.mu.inUse, false)
	p.mu.free.Teardown(nil, nil)
	p.parent.Deallocate(p.mu.block)
	p.mu.free = nil
	p.mu.block = alloc.Block{}
}
