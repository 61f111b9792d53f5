// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package alloc

import (
	"context"
	"sync"

	"github.com/cockroachdb/aeds/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/google/btree"
)

// Tracking is an allocator that remembers every live block obtained through
// it, ordered by tag. It is used to check that containers give back all
// their storage on teardown.
type Tracking struct {
	parent Allocator

	mu struct {
		sync.Mutex
		live *btree.BTreeG[Block]
	}
}

var _ Allocator = (*Tracking)(nil)

// NewTracking wraps parent. Blocks from parent must carry unique tags while
// live.
func NewTracking(parent Allocator) *Tracking {
	if parent == nil {
		parent = Heap()
	}
	t := &Tracking{parent: parent}
	t.mu.live = btree.NewG(8, func(a, b Block) bool {
		return a.Tag < b.Tag
	})
	return t
}

// Allocate implements the Allocator interface.
func (t *Tracking) Allocate(count, elemSize int) (Block, error) {
	blk, err := t.parent.Allocate(count, elemSize)
	if err != nil {
		return Block{}, err
	}
	t.mu.Lock()
	t.mu.live.ReplaceOrInsert(blk)
	t.mu.Unlock()
	return blk, nil
}

// Deallocate implements the Allocator interface. Blocks that are not live
// are reported and not forwarded to the parent.
func (t *Tracking) Deallocate(blk Block) {
	if blk.IsZero() {
		return
	}
	t.mu.Lock()
	_, ok := t.mu.live.Delete(blk)
	t.mu.Unlock()
	if !ok {
		log.Errorf(context.Background(), "deallocating unknown block %+v", blk)
		return
	}
	t.parent.Deallocate(blk)
}

// Len returns the number of live blocks.
func (t *Tracking) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mu.live.Len()
}

// Live returns the live blocks in tag order.
func (t *Tracking) Live() []Block {
	t.mu.Lock()
	defer t.mu.Unlock()
	res := make([]Block, 0, t.mu.live.Len())
	t.mu.live.Ascend(func(b Block) bool {
		res = append(res, b)
		return true
	})
	return res
}

// InUse returns the total size of the live blocks.
func (t *Tracking) InUse() int64 {
	var n int64
	for _, b := range t.Live() {
		n += b.Size()
	}
	return n
}

// AssertEmpty returns an error describing the live blocks, if any.
func (t *Tracking) AssertEmpty() error {
	live := t.Live()
	if len(live) == 0 {
		return nil
	}
	return errors.Newf("%d blocks still live: %v", len(live), live)
}
