// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"os"
	"unsafe"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// Container kinds.
const (
	kindRing = "ring"
	kindList = "list"
	kindFIFO = "fifo"
)

// Allocator stacks.
const (
	allocHeap   = "heap"
	allocBudget = "budget"
	allocPool   = "pool"
)

// Mix holds the relative weights of the workload's operations.
type Mix struct {
	PushHead int `toml:"push_head" yaml:"push_head"`
	PushTail int `toml:"push_tail" yaml:"push_tail"`
	PopHead  int `toml:"pop_head" yaml:"pop_head"`
	PopTail  int `toml:"pop_tail" yaml:"pop_tail"`
}

func (m Mix) total() int {
	return m.PushHead + m.PushTail + m.PopHead + m.PopTail
}

// Config describes a simulation run. It is read from a TOML file and
// overlaid with command line flags.
type Config struct {
	Kind      string `toml:"kind" yaml:"kind"`
	Allocator string `toml:"allocator" yaml:"allocator"`
	Workers   int    `toml:"workers" yaml:"workers"`
	Ops       int    `toml:"ops" yaml:"ops"`
	Seed      int64  `toml:"seed" yaml:"seed"`
	// Capacity bounds each worker's ring.
	Capacity int `toml:"capacity" yaml:"capacity"`
	// Budget is the byte limit of the budget allocator, such as "64KiB".
	Budget   string `toml:"budget" yaml:"budget"`
	Slots    int    `toml:"slots" yaml:"slots"`
	SlotSize int    `toml:"slot_size" yaml:"slot_size"`
	Mix      Mix    `toml:"mix" yaml:"mix"`
}

func defaultConfig() Config {
	return Config{
		Kind:      kindRing,
		Allocator: allocHeap,
		Workers:   1,
		Ops:       10000,
		Seed:      1,
		Capacity:  16,
		Budget:    "64KiB",
		Slots:     1024,
		SlotSize:  256,
		Mix:       Mix{PushHead: 1, PushTail: 1, PopHead: 1, PopTail: 1},
	}
}

// loadConfig decodes the TOML file at path over cfg. Keys absent from the
// file keep their current values.
func loadConfig(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Newf("%s: unknown keys %v", path, undecoded)
	}
	return nil
}

func (c *Config) budgetBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.Budget)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid budget %q", c.Budget)
	}
	return int64(n), nil
}

func (c *Config) validate() error {
	switch c.Kind {
	case kindRing, kindList, kindFIFO:
	default:
		return errors.Newf("unknown container kind %q", c.Kind)
	}
	switch c.Allocator {
	case allocHeap:
	case allocBudget:
		if _, err := c.budgetBytes(); err != nil {
			return err
		}
	case allocPool:
		if c.Slots <= 0 || c.SlotSize <= 0 {
			return errors.Newf("pool needs positive slots and slot_size, got %d and %d",
				c.Slots, c.SlotSize)
		}
		if vec := c.Capacity * int(unsafe.Sizeof((*record)(nil))); c.Kind == kindRing && vec > c.SlotSize {
			return errors.Newf("ring of capacity %d needs %d bytes, more than a %d byte slot",
				c.Capacity, vec, c.SlotSize)
		}
	default:
		return errors.Newf("unknown allocator %q", c.Allocator)
	}
	if c.Workers <= 0 {
		return errors.Newf("workers must be positive, got %d", c.Workers)
	}
	if c.Ops < 0 {
		return errors.Newf("ops must not be negative, got %d", c.Ops)
	}
	m := c.Mix
	if m.PushHead < 0 || m.PushTail < 0 || m.PopHead < 0 || m.PopTail < 0 || m.total() == 0 {
		return errors.Newf("invalid operation mix %+v", m)
	}
	if c.Kind == kindFIFO && (m.PushHead != 0 || m.PopTail != 0) {
		return errors.New("fifo only supports push_tail and pop_head")
	}
	return nil
}
