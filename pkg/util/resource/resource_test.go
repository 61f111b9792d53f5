// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package resource

import (
	"io"
	"os"
	"testing"

	"github.com/cockroachdb/aeds/pkg/util/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	order *[]string
	name  string
	err   error
}

func (r *recorder) Close() error {
	*r.order = append(*r.order, r.name)
	return r.err
}

func TestReleaseOrder(t *testing.T) {
	var order []string
	var rs Resources
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, rs.RegisterCloser(&recorder{order: &order, name: name}))
	}
	require.NoError(t, rs.Register("d", Func(func() error {
		order = append(order, "d")
		return nil
	})))
	require.Equal(t, 4, rs.Len())

	require.NoError(t, rs.Release())
	require.Equal(t, []string{"d", "c", "b", "a"}, order)
	require.Equal(t, 0, rs.Len())

	// A released registry is empty and may be reused.
	require.NoError(t, rs.Release())
	require.Equal(t, []string{"d", "c", "b", "a"}, order)
}

func TestReleaseFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer log.SetLogger(zap.New(core))()
	defer log.SetVerbosity(1)()

	errA := errors.New("a failed")
	errC := errors.New("c failed")
	var order []string
	var rs Resources
	require.NoError(t, rs.RegisterCloser(&recorder{order: &order, name: "a", err: errA}))
	require.NoError(t, rs.RegisterCloser(&recorder{order: &order, name: "b"}))
	require.NoError(t, rs.RegisterCloser(&recorder{order: &order, name: "c", err: errC}))

	err := rs.Release()
	require.Equal(t, []string{"c", "b", "a"}, order, "every disposer runs")
	require.True(t, errors.Is(err, errA))
	require.True(t, errors.Is(err, errC))
	require.Equal(t, 2, logs.Len())
	require.Contains(t, logs.All()[0].Message, "c failed")
}

func TestRegisterRejects(t *testing.T) {
	var rs Resources
	require.True(t, errors.Is(rs.Register(nil, Close), ErrAbsent))
	require.True(t, errors.Is(rs.RegisterCloser(nil), ErrAbsent))
	require.True(t, errors.HasAssertionFailure(rs.Register("x", nil)))
	require.Equal(t, 0, rs.Len())

	require.NoError(t, rs.Register(42, Close))
	require.True(t, errors.HasAssertionFailure(rs.Release()))
}

func TestWith(t *testing.T) {
	var order []string
	err := With(func(rs *Resources) error {
		require.NoError(t, rs.RegisterCloser(&recorder{order: &order, name: "a"}))
		require.NoError(t, rs.RegisterCloser(&recorder{order: &order, name: "b"}))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, order)

	order = nil
	errBody := errors.New("body failed")
	errClose := errors.New("close failed")
	err = With(func(rs *Resources) error {
		require.NoError(t, rs.RegisterCloser(&recorder{order: &order, name: "a", err: errClose}))
		return errBody
	})
	require.True(t, errors.Is(err, errBody))
	require.True(t, errors.Is(err, errClose))
	require.Equal(t, []string{"a"}, order)

	order = nil
	err = With(func(rs *Resources) error {
		return rs.RegisterCloser(&recorder{order: &order, name: "a", err: errClose})
	})
	require.Equal(t, errClose, errors.UnwrapAll(err))

	order = nil
	require.Panics(t, func() {
		_ = With(func(rs *Resources) error {
			require.NoError(t, rs.RegisterCloser(&recorder{order: &order, name: "a"}))
			panic("boom")
		})
	})
	require.Equal(t, []string{"a"}, order, "released on panic")
}

func TestRegisterFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/in.txt", []byte("hello"), 0644))

	err := With(func(rs *Resources) error {
		in, err := RegisterFile(fs, "/data/in.txt", os.O_RDONLY, 0, rs)
		if err != nil {
			return err
		}
		out, err := RegisterFile(fs, "/data/out.txt", os.O_CREATE|os.O_WRONLY, 0644, rs)
		if err != nil {
			return err
		}
		require.Equal(t, 2, rs.Len())
		_, err = io.Copy(out, in)
		return err
	})
	require.NoError(t, err)
	b, err := afero.ReadFile(fs, "/data/out.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))

	var rs Resources
	_, err = RegisterFile(fs, "/missing", os.O_RDONLY, 0, &rs)
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.Equal(t, 0, rs.Len())
}
