// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package resource provides scoped acquisition of resources with guaranteed
// release. A Resources registry records each acquired value together with
// the function disposing of it, and Release disposes of everything in the
// reverse order of registration.
package resource

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/aeds/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/spf13/afero"
)

// ErrAbsent is returned when registering a nil resource.
var ErrAbsent = errors.New("absent resource")

// Disposer releases a registered resource.
type Disposer func(v any) error

// Close is a Disposer for io.Closer values.
func Close(v any) error {
	c, ok := v.(io.Closer)
	if !ok {
		return errors.AssertionFailedf("resource %T is not an io.Closer", v)
	}
	return c.Close()
}

// Func adapts a function without arguments to a Disposer.
func Func(f func() error) Disposer {
	return func(any) error { return f() }
}

type entry struct {
	v       any
	dispose Disposer
}

// Resources is a registry of resources awaiting release. The zero value is
// ready to use.
type Resources struct {
	mu struct {
		sync.Mutex
		entries []entry
	}
}

// Register adds v to the registry. Nothing is registered when v is nil.
func (r *Resources) Register(v any, d Disposer) error {
	if v == nil {
		return ErrAbsent
	}
	if d == nil {
		return errors.AssertionFailedf("registering %T without a disposer", v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mu.entries = append(r.mu.entries, entry{v: v, dispose: d})
	return nil
}

// RegisterCloser registers c with the Close disposer.
func (r *Resources) RegisterCloser(c io.Closer) error {
	if c == nil {
		return ErrAbsent
	}
	return r.Register(c, Close)
}

// Len returns the number of resources awaiting release.
func (r *Resources) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mu.entries)
}

// Release disposes of every registered resource, most recently registered
// first, and empties the registry. Every disposer runs even when an earlier
// one fails; the returned error joins the failures, each of which can be
// matched with errors.Is.
func (r *Resources) Release() error {
	r.mu.Lock()
	entries := r.mu.entries
	r.mu.entries = nil
	r.mu.Unlock()

	ctx := logtags.AddTag(context.Background(), "release", nil)
	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := e.dispose(e.v); err != nil {
			err = errors.Wrapf(err, "releasing %T", e.v)
			log.VEventf(ctx, 1, "%v", err)
			errs = append(errs, err)
		}
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// With runs fn with a fresh registry and releases it on every path out of
// fn, panics included. Release failures are joined with fn's error.
func With(fn func(rs *Resources) error) (err error) {
	var rs Resources
	defer func() {
		if rErr := rs.Release(); rErr != nil {
			if err == nil {
				err = rErr
			} else {
				err = errors.Join(err, rErr)
			}
		}
	}()
	return fn(&rs)
}

// RegisterFile opens name on fs and registers the file for closing. When the
// open fails nothing is registered.
func RegisterFile(
	fs afero.Fs, name string, flag int, perm os.FileMode, rs *Resources,
) (afero.File, error) {
	f, err := fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	if err := rs.RegisterCloser(f); err != nil {
		return nil, errors.CombineErrors(err, f.Close())
	}
	return f, nil
}
