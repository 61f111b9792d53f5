// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import "go.uber.org/zap/zapcore"

// Severity is the importance of a log entry.
type Severity int

const (
	// SeverityInfo is used for informational messages that do not require
	// action.
	SeverityInfo Severity = iota
	// SeverityWarning is used for situations which may require special
	// handling, but do not prevent the library from doing its job.
	SeverityWarning
	// SeverityError is used for situations that the caller most likely
	// needs to look at.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityWarning:
		return zapcore.WarnLevel
	case SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
