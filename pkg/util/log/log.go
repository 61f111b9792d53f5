// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log is the logging facade used by the aeds packages. Entries are
// annotated with the logging tags found in the context (see
// github.com/cockroachdb/logtags) and emitted through a zap logger.
//
// The package is silent until a logger is installed with SetLogger, so that
// embedding a container in a program never produces unsolicited output.
package log

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	mainLogger atomic.Pointer[zap.Logger]
	verbosity  atomic.Int32
	redactable atomic.Bool
)

func init() {
	mainLogger.Store(zap.NewNop())
}

// SetLogger installs l as the destination of all log entries and returns a
// function restoring the previous logger. A nil logger silences the package.
func SetLogger(l *zap.Logger) (restore func()) {
	if l == nil {
		l = zap.NewNop()
	}
	prev := mainLogger.Swap(l)
	return func() { mainLogger.Store(prev) }
}

// Logger returns the currently installed zap logger.
func Logger() *zap.Logger {
	return mainLogger.Load()
}

// SetVerbosity sets the level up to which V and VEventf are enabled and
// returns a function restoring the previous level.
func SetVerbosity(level int32) (restore func()) {
	prev := verbosity.Swap(level)
	return func() { verbosity.Store(prev) }
}

// SetRedactable configures whether entries keep their redaction markers.
// When false (the default) markers are stripped before output.
func SetRedactable(b bool) (restore func()) {
	prev := redactable.Swap(b)
	return func() { redactable.Store(prev) }
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return verbosity.Load() >= level
}

// Infof logs to the INFO severity.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityInfo, format, args)
}

// Warningf logs to the WARNING severity.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityWarning, format, args)
}

// Errorf logs to the ERROR severity.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityError, format, args)
}

// VEventf logs to the INFO severity if the verbosity is at least level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		addStructured(ctx, SeverityInfo, format, args)
	}
}
