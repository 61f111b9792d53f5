// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"strings"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	formatTags(ctx, &buf)
	buf.WriteString(redact.Sprintf(format, args...).StripMarkers())
	return buf.String()
}

// formatTags writes the context tags as "[k1,key=val] ". Single-letter keys
// are concatenated with their value, as in "n1".
func formatTags(ctx context.Context, buf *strings.Builder) {
	tags := logtags.FromContext(ctx)
	if tags == nil {
		return
	}
	tt := tags.Get()
	if len(tt) == 0 {
		return
	}
	buf.WriteByte('[')
	for i := range tt {
		t := &tt[i]
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(t.Key())
		if v := t.ValueStr(); v != "" {
			if len(t.Key()) > 1 {
				buf.WriteByte('=')
			}
			buf.WriteString(v)
		}
	}
	buf.WriteString("] ")
}

// addStructured creates a structured log entry and hands it to the
// installed zap logger.
func addStructured(ctx context.Context, sev Severity, format string, args []interface{}) {
	l := mainLogger.Load()
	ce := l.Check(sev.level(), "")
	if ce == nil {
		return
	}
	var buf strings.Builder
	formatTags(ctx, &buf)
	msg := redact.Sprintf(format, args...)
	if redactable.Load() {
		buf.WriteString(string(msg))
	} else {
		buf.WriteString(msg.StripMarkers())
	}
	ce.Message = buf.String()
	ce.Write()
}
