// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package alloc

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/aeds/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// ErrBudgetExceeded marks refusals caused by a Budget running out of bytes.
// Such errors are also ErrRefused.
var ErrBudgetExceeded = errors.New("budget exceeded")

// Budget is an allocator which admits requests from a parent allocator for
// as long as the total size of its live blocks stays within a byte limit.
type Budget struct {
	name   redact.SafeString
	parent Allocator
	limit  int64

	ambientCtx context.Context
	every      log.EveryN

	mu struct {
		sync.Mutex
		used int64
	}
}

var _ Allocator = (*Budget)(nil)

// NewBudget creates a budget named name allowing limit bytes to be allocated
// from parent at any one time.
func NewBudget(name string, parent Allocator, limit int64) *Budget {
	if parent == nil {
		parent = Heap()
	}
	return &Budget{
		name:       redact.SafeString(name),
		parent:     parent,
		limit:      limit,
		ambientCtx: logtags.AddTag(context.Background(), "budget", name),
		every:      log.Every(10 * time.Second),
	}
}

// Allocate implements the Allocator interface.
func (b *Budget) Allocate(count, elemSize int) (Block, error) {
	if err := ValidateRequest(count, elemSize); err != nil {
		return Block{}, err
	}
	size := int64(count) * int64(elemSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mu.used+size > b.limit {
		err := errors.Mark(
			errors.Wrapf(ErrRefused, "budget %s: requested %d bytes with %d of %d in use",
				b.name, size, b.mu.used, b.limit),
			ErrBudgetExceeded)
		if b.every.ShouldLog() {
			log.Warningf(b.ambientCtx, "%v", err)
		}
		return Block{}, err
	}
	blk, err := b.parent.Allocate(count, elemSize)
	if err != nil {
		return Block{}, err
	}
	b.mu.used += size
	return blk, nil
}

// Deallocate implements the Allocator interface.
func (b *Budget) Deallocate(blk Block) {
	if blk.IsZero() {
		return
	}
	b.mu.Lock()
	b.mu.used -= blk.Size()
	if b.mu.used < 0 {
		log.Errorf(b.ambientCtx, "%v", errors.AssertionFailedf(
			"budget %s released %d bytes more than it granted", b.name, -b.mu.used))
		b.mu.used = 0
	}
	b.mu.Unlock()
	b.parent.Deallocate(blk)
}

// Used returns the number of bytes currently granted.
func (b *Budget) Used() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mu.used
}

// Limit returns the budget's byte limit.
func (b *Budget) Limit() int64 {
	return b.limit
}
