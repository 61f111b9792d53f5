// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package container

import "reflect"

// Option is used to configure a container.
type Option[T any] interface {
	apply(*Config[T])
}

type optionFunc[T any] func(*Config[T])

func (f optionFunc[T]) apply(cfg *Config[T]) { f(cfg) }

// WithOwnedElements makes the container own its elements: teardown calls d
// on every remaining element when the caller does not supply a destructor.
func WithOwnedElements[T any](d Destructor[T]) Option[T] {
	return optionFunc[T](func(cfg *Config[T]) {
		cfg.owned = d
	})
}

// WithAbsent overrides the predicate deciding which handles are absent and
// therefore rejected by push.
func WithAbsent[T any](isAbsent func(T) bool) Option[T] {
	return optionFunc[T](func(cfg *Config[T]) {
		cfg.absent = isAbsent
	})
}

// Config is the resolved configuration of a container.
type Config[T any] struct {
	owned  Destructor[T]
	absent func(T) bool
}

// MakeConfig applies opts over the defaults: borrowed elements, and nil
// handles considered absent.
func MakeConfig[T any](opts ...Option[T]) Config[T] {
	var cfg Config[T]
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if cfg.absent == nil {
		cfg.absent = AbsentFunc[T]()
	}
	return cfg
}

// Owned returns whether the container owns its elements.
func (c *Config[T]) Owned() bool {
	return c.owned != nil
}

// IsAbsent returns whether v is rejected by push. The zero Config uses the
// default predicate.
func (c *Config[T]) IsAbsent(v T) bool {
	if c.absent == nil {
		return IsAbsent(v)
	}
	return c.absent(v)
}

// Destructor resolves the destructor used by a teardown that was passed d.
func (c *Config[T]) Destructor(d Destructor[T]) Destructor[T] {
	if d != nil {
		return d
	}
	return c.owned
}

// AbsentFunc returns the default absence predicate for T: nil values of
// pointer, interface, map, slice, func and chan types are absent, and values
// of any other kind never are.
func AbsentFunc[T any]() func(T) bool {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan, reflect.Interface:
		return func(v T) bool {
			var zero T
			return any(v) == any(zero)
		}
	case reflect.Map, reflect.Slice, reflect.Func:
		return func(v T) bool {
			return reflect.ValueOf(&v).Elem().IsNil()
		}
	default:
		return func(T) bool { return false }
	}
}

// IsAbsent reports whether v is absent under the default predicate.
func IsAbsent[T any](v T) bool {
	return AbsentFunc[T]()(v)
}
