// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package alloc

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the allocator metrics exported through Prometheus.
type Metrics struct {
	Allocations   prometheus.Counter
	Deallocations prometheus.Counter
	Refusals      prometheus.Counter
	BytesInUse    prometheus.Gauge
}

// NewMetrics creates allocator metrics under the given subsystem and, if reg
// is non-nil, registers them.
func NewMetrics(reg prometheus.Registerer, subsystem string) *Metrics {
	m := &Metrics{
		Allocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aeds",
			Subsystem: subsystem,
			Name:      "allocations_total",
			Help:      "Number of granted allocation requests.",
		}),
		Deallocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aeds",
			Subsystem: subsystem,
			Name:      "deallocations_total",
			Help:      "Number of released blocks.",
		}),
		Refusals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aeds",
			Subsystem: subsystem,
			Name:      "refusals_total",
			Help:      "Number of refused allocation requests.",
		}),
		BytesInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aeds",
			Subsystem: subsystem,
			Name:      "bytes_in_use",
			Help:      "Total size of the blocks currently granted.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Allocations, m.Deallocations, m.Refusals, m.BytesInUse)
	}
	return m
}

type instrumented struct {
	parent Allocator
	m      *Metrics
}

// WithMetrics returns an allocator forwarding to parent and recording every
// grant, release and refusal in m.
func WithMetrics(parent Allocator, m *Metrics) Allocator {
	if parent == nil {
		parent = Heap()
	}
	return &instrumented{parent: parent, m: m}
}

func (a *instrumented) Allocate(count, elemSize int) (Block, error) {
	blk, err := a.parent.Allocate(count, elemSize)
	if err != nil {
		if errors.Is(err, ErrRefused) {
			a.m.Refusals.Inc()
		}
		return Block{}, err
	}
	a.m.Allocations.Inc()
	a.m.BytesInUse.Add(float64(blk.Size()))
	return blk, nil
}

func (a *instrumented) Deallocate(blk Block) {
	if blk.IsZero() {
		return
	}
	a.m.Deallocations.Inc()
	a.m.BytesInUse.Sub(float64(blk.Size()))
	a.parent.Deallocate(blk)
}
