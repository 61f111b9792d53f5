// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// allocsim exercises the containers under different allocators. A pool of
// workers each drive one container with a seeded random push/pop workload
// while every allocation is tracked and instrumented. At the end the
// containers are torn down, the allocator is checked for leaked blocks, and
// a report is printed.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/aeds/pkg/util/log"
	"github.com/cockroachdb/aeds/pkg/util/resource"
	"github.com/cockroachdb/errors"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type cliFlags struct {
	configPath string
	format     string
	verbose    bool
	verbosity  int32
}

func newRootCmd() *cobra.Command {
	cfg := defaultConfig()
	var cf cliFlags

	cmd := &cobra.Command{
		Use:           "allocsim",
		Short:         "run a container workload under a tracked allocator",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cf.configPath != "" {
				if err := overlayConfig(cmd.Flags(), cf.configPath, &cfg); err != nil {
					return err
				}
			}
			defer log.SetVerbosity(cf.verbosity)()
			if cf.verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "%# v\n", pretty.Formatter(cfg))
			}
			return run(cmd.Context(), cfg, cf.format, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&cf.configPath, "config", "", "TOML file to read the configuration from; flags take precedence")
	f.StringVar(&cf.format, "format", formatText, "report format: text or yaml")
	f.BoolVar(&cf.verbose, "verbose", false, "print the effective configuration")
	f.Int32Var(&cf.verbosity, "v", 0, "log verbosity")
	f.StringVar(&cfg.Kind, "kind", cfg.Kind, "container kind: ring, list or fifo")
	f.StringVar(&cfg.Allocator, "allocator", cfg.Allocator, "allocator: heap, budget or pool")
	f.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "number of workers, each with its own container")
	f.IntVarP(&cfg.Ops, "ops", "n", cfg.Ops, "operations per worker")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed; worker i uses seed+i")
	f.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "ring capacity")
	f.StringVar(&cfg.Budget, "budget", cfg.Budget, "byte limit of the budget allocator")
	f.IntVar(&cfg.Slots, "slots", cfg.Slots, "number of pool slots")
	f.IntVar(&cfg.SlotSize, "slot-size", cfg.SlotSize, "size of a pool slot in bytes")
	f.IntVar(&cfg.Mix.PushHead, "push-head", cfg.Mix.PushHead, "weight of head pushes")
	f.IntVar(&cfg.Mix.PushTail, "push-tail", cfg.Mix.PushTail, "weight of tail pushes")
	f.IntVar(&cfg.Mix.PopHead, "pop-head", cfg.Mix.PopHead, "weight of head pops")
	f.IntVar(&cfg.Mix.PopTail, "pop-tail", cfg.Mix.PopTail, "weight of tail pops")
	return cmd
}

// overlayConfig loads the TOML file at path into cfg and then reapplies the
// flags set on the command line, which take precedence over the file.
func overlayConfig(fs *pflag.FlagSet, path string, cfg *Config) error {
	set := map[string]string{}
	fs.Visit(func(f *pflag.Flag) {
		set[f.Name] = f.Value.String()
	})
	if err := loadConfig(path, cfg); err != nil {
		return err
	}
	for name, v := range set {
		if err := fs.Set(name, v); err != nil {
			return errors.Wrapf(err, "reapplying --%s", name)
		}
	}
	return nil
}

func run(ctx context.Context, cfg Config, format string, w io.Writer) error {
	return resource.With(func(rs *resource.Resources) error {
		sim, err := newAllocSim(cfg, rs)
		if err != nil {
			return err
		}
		r, runErr := sim.run(ctx)
		if r != nil {
			if err := r.write(w, format); err != nil {
				return errors.Join(runErr, err)
			}
		}
		return runErr
	})
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	restore := log.SetLogger(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = newRootCmd().ExecuteContext(ctx)
	cancel()
	_ = logger.Sync()
	restore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "allocsim: %v\n", err)
		os.Exit(1)
	}
}
