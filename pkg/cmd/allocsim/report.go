// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Report summarizes a simulation run.
type Report struct {
	Kind        string             `yaml:"kind"`
	Allocator   string             `yaml:"allocator"`
	Workers     int                `yaml:"workers"`
	Ops         int64              `yaml:"ops"`
	Pushed      int64              `yaml:"pushed"`
	Popped      int64              `yaml:"popped"`
	EmptyPops   int64              `yaml:"empty_pops"`
	Rejected    map[string]int64   `yaml:"rejected"`
	BytesInUse  int64              `yaml:"bytes_in_use"`
	BudgetLimit int64              `yaml:"budget_limit,omitempty"`
	PoolSlots   int                `yaml:"pool_slots,omitempty"`
	PoolRefused int64              `yaml:"pool_refused,omitempty"`
	Leaked      int                `yaml:"leaked"`
	Metrics     map[string]float64 `yaml:"metrics"`
	Elapsed     time.Duration      `yaml:"-"`
}

// Output formats.
const (
	formatText = "text"
	formatYAML = "yaml"
)

func (r *Report) write(w io.Writer, format string) error {
	switch format {
	case formatText:
		r.writeText(w)
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encoding report")
		}
		return errors.Wrap(enc.Close(), "encoding report")
	}
	return errors.Newf("unknown format %q", format)
}

func (r *Report) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s/%s: %s ops by %d workers in %s\n",
		r.Kind, r.Allocator, humanize.Comma(r.Ops), r.Workers, r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  pushed %s  popped %s  empty pops %s\n",
		humanize.Comma(r.Pushed), humanize.Comma(r.Popped), humanize.Comma(r.EmptyPops))
	fmt.Fprintf(w, "  rejected")
	for _, k := range sortedKeys(r.Rejected) {
		fmt.Fprintf(w, "  %s %s", k, humanize.Comma(r.Rejected[k]))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  in use before teardown %s", humanize.IBytes(uint64(r.BytesInUse)))
	if r.BudgetLimit > 0 {
		fmt.Fprintf(w, " of %s budget", humanize.IBytes(uint64(r.BudgetLimit)))
	}
	fmt.Fprintln(w)
	if r.PoolSlots > 0 {
		fmt.Fprintf(w, "  pool slots %s  refused %s\n",
			humanize.Comma(int64(r.PoolSlots)), humanize.Comma(r.PoolRefused))
	}
	fmt.Fprintf(w, "  leaked blocks %d\n", r.Leaked)
	for _, k := range sortedKeys(r.Metrics) {
		fmt.Fprintf(w, "  %s %s\n", k, humanize.Ftoa(r.Metrics[k]))
	}
}
