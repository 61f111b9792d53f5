// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"context"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/aeds/pkg/util/alloc"
	"github.com/cockroachdb/aeds/pkg/util/alloc/vectorpool"
	"github.com/cockroachdb/aeds/pkg/util/container"
	"github.com/cockroachdb/aeds/pkg/util/container/list"
	"github.com/cockroachdb/aeds/pkg/util/log"
	"github.com/cockroachdb/aeds/pkg/util/resource"
	"github.com/cockroachdb/aeds/pkg/util/ring"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// record is the element type pushed by the workload. Records are allocated
// from the simulation's allocator and owned by whichever container holds
// them.
type record struct {
	id    int64
	block alloc.Block
}

func newRecord(a alloc.Allocator, id int64) (*record, error) {
	r, blk, err := alloc.New[record](a)
	if err != nil {
		return nil, err
	}
	r.id, r.block = id, blk
	return r, nil
}

func destroyRecord(a alloc.Allocator, r *record) {
	a.Deallocate(r.block)
}

// target is a container under simulation.
type target interface {
	container.Deque[*record]
	TryPushHead(v *record) error
	TryPushTail(v *record) error
	Teardown(d container.Destructor[*record], a alloc.Allocator)
}

// allocSim runs a seeded random push/pop workload against one container per
// worker, all drawing from a shared allocator stack.
type allocSim struct {
	cfg Config

	reg      *prometheus.Registry
	tracking *alloc.Tracking
	budget   *alloc.Budget
	pool     *vectorpool.Pool
	alloc    alloc.Allocator

	stats struct {
		ops       int64
		pushed    int64
		popped    int64
		emptyPops int64
		rejected  struct {
			full       int64
			allocation int64
		}
	}
}

// newAllocSim builds the allocator stack named by cfg.Allocator, tracked
// and instrumented, and registers everything needing release with rs.
func newAllocSim(cfg Config, rs *resource.Resources) (*allocSim, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	a := &allocSim{cfg: cfg, reg: prometheus.NewRegistry()}

	var base alloc.Allocator
	switch cfg.Allocator {
	case allocHeap:
		base = alloc.Heap()
	case allocBudget:
		limit, err := cfg.budgetBytes()
		if err != nil {
			return nil, err
		}
		a.budget = alloc.NewBudget("allocsim", nil, limit)
		base = a.budget
	case allocPool:
		p, err := vectorpool.New(nil, cfg.Slots, cfg.SlotSize)
		if err != nil {
			return nil, err
		}
		if err := rs.Register(p, resource.Func(func() error {
			p.Close()
			return nil
		})); err != nil {
			return nil, err
		}
		a.pool = p
		base = p
	}
	a.tracking = alloc.NewTracking(base)
	a.alloc = alloc.WithMetrics(a.tracking, alloc.NewMetrics(a.reg, "allocsim"))
	return a, nil
}

func (a *allocSim) newTarget() (target, error) {
	owned := container.WithOwnedElements[*record](destroyRecord)
	switch a.cfg.Kind {
	case kindRing:
		l := ring.New[*record](a.alloc, a.cfg.Capacity, owned)
		if !l.IsInitialized() {
			return nil, errors.Wrapf(alloc.ErrRefused, "allocating ring of capacity %d", a.cfg.Capacity)
		}
		return l, nil
	case kindList:
		return list.New[*record](a.alloc, owned), nil
	case kindFIFO:
		return newFIFOQueue(a.alloc, owned), nil
	}
	return nil, errors.AssertionFailedf("unknown kind %q", a.cfg.Kind)
}

// run executes the workload and tears every container down. It stops early
// when ctx is canceled.
func (a *allocSim) run(ctx context.Context) (*Report, error) {
	targets := make([]target, a.cfg.Workers)
	for i := range targets {
		t, err := a.newTarget()
		if err != nil {
			for _, t := range targets[:i] {
				t.Teardown(nil, a.alloc)
			}
			return nil, err
		}
		targets[i] = t
	}

	start := time.Now()
	g, gCtx := errgroup.WithContext(ctx)
	for i := range targets {
		i := i
		g.Go(func() error {
			return a.worker(gCtx, i, targets[i])
		})
	}
	workErr := g.Wait()
	elapsed := time.Since(start)

	inUse := a.tracking.InUse()
	for _, t := range targets {
		t.Teardown(nil, a.alloc)
	}
	r := a.report(elapsed, inUse)
	if err := a.tracking.AssertEmpty(); err != nil {
		workErr = errors.Join(workErr, errors.Wrap(err, "leak check"))
	}
	return r, workErr
}

func (a *allocSim) worker(ctx context.Context, i int, t target) error {
	ctx = logtags.AddTag(ctx, "w", i)
	rng := rand.New(rand.NewSource(a.cfg.Seed + int64(i)))
	every := log.Every(time.Second)
	mix := a.cfg.Mix
	total := mix.total()

	for n := 0; n < a.cfg.Ops; n++ {
		if ctx.Err() != nil {
			log.Infof(ctx, "stopping after %d ops: %v", n, ctx.Err())
			return nil
		}
		if every.ShouldLog() {
			log.Infof(ctx, "%d ops, %d elements", n, t.Len())
		}
		atomic.AddInt64(&a.stats.ops, 1)

		var err error
		op := rng.Intn(total)
		switch {
		case op < mix.PushHead:
			err = a.push(t.TryPushHead, int64(n))
		case op < mix.PushHead+mix.PushTail:
			err = a.push(t.TryPushTail, int64(n))
		case op < mix.PushHead+mix.PushTail+mix.PopHead:
			a.pop(t.PopHead)
		default:
			a.pop(t.PopTail)
		}
		if err != nil {
			return errors.Wrapf(err, "worker %d, op %d", i, n)
		}
	}
	return nil
}

// push reports the rejections a bounded container or a limited allocator
// are expected to produce and returns any other error.
func (a *allocSim) push(push func(*record) error, id int64) error {
	r, err := newRecord(a.alloc, id)
	if err == nil {
		if err = push(r); err != nil {
			destroyRecord(a.alloc, r)
		}
	}
	switch {
	case err == nil:
		atomic.AddInt64(&a.stats.pushed, 1)
	case errors.Is(err, container.ErrFull):
		atomic.AddInt64(&a.stats.rejected.full, 1)
	case errors.Is(err, alloc.ErrRefused) || errors.Is(err, container.ErrAllocation):
		atomic.AddInt64(&a.stats.rejected.allocation, 1)
	default:
		return errors.NewAssertionErrorWithWrappedErrf(err, "unexpected push rejection")
	}
	return nil
}

func (a *allocSim) pop(pop func() (*record, bool)) {
	r, ok := pop()
	if !ok {
		atomic.AddInt64(&a.stats.emptyPops, 1)
		return
	}
	destroyRecord(a.alloc, r)
	atomic.AddInt64(&a.stats.popped, 1)
}

func (a *allocSim) report(elapsed time.Duration, inUse int64) *Report {
	r := &Report{
		Kind:       a.cfg.Kind,
		Allocator:  a.cfg.Allocator,
		Workers:    a.cfg.Workers,
		Ops:        atomic.LoadInt64(&a.stats.ops),
		Pushed:     atomic.LoadInt64(&a.stats.pushed),
		Popped:     atomic.LoadInt64(&a.stats.popped),
		EmptyPops:  atomic.LoadInt64(&a.stats.emptyPops),
		BytesInUse: inUse,
		Leaked:     a.tracking.Len(),
		Elapsed:    elapsed,
		Rejected: map[string]int64{
			"full":       atomic.LoadInt64(&a.stats.rejected.full),
			"allocation": atomic.LoadInt64(&a.stats.rejected.allocation),
		},
		Metrics: map[string]float64{},
	}
	if a.budget != nil {
		r.BudgetLimit = a.budget.Limit()
	}
	if a.pool != nil {
		s := a.pool.Stats()
		r.PoolSlots, r.PoolRefused = s.Slots, s.Refused
	}
	families, err := a.reg.Gather()
	if err != nil {
		log.Warningf(context.Background(), "gathering metrics: %v", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				r.Metrics[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				r.Metrics[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	return r
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
