// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that feeds the local
// activity log. Records at WARN level and above are mirrored into the
// client-state database so the diagnostics panel can show recent
// failures after the fact.
package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Recorder receives mirrored log records. *session.Manager implements it.
type Recorder interface {
	RecordActivity(level, message, metadata string) error
}

// ActivityLogHandler is a slog.Handler that wraps another handler and
// also writes WARN and ERROR records to the activity log.
type ActivityLogHandler struct {
	inner    slog.Handler
	recorder Recorder
	level    slog.Level
}

// NewActivityLogHandler creates a handler that mirrors records at WARN
// and above into the recorder.
func NewActivityLogHandler(inner slog.Handler, recorder Recorder) *ActivityLogHandler {
	return &ActivityLogHandler{
		inner:    inner,
		recorder: recorder,
		level:    slog.LevelWarn,
	}
}

// NewActivityLogHandlerWithLevel creates a handler with a custom
// minimum mirror level.
func NewActivityLogHandlerWithLevel(inner slog.Handler, recorder Recorder, level slog.Level) *ActivityLogHandler {
	return &ActivityLogHandler{
		inner:    inner,
		recorder: recorder,
		level:    level,
	}
}

// Enabled implements slog.Handler.
func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		// Recording failures are swallowed: logging must never take the
		// client down.
		_ = h.recorder.RecordActivity(levelName(r.Level), r.Message, extractMetadata(r))
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ActivityLogHandler{
		inner:    h.inner.WithAttrs(attrs),
		recorder: h.recorder,
		level:    h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	return &ActivityLogHandler{
		inner:    h.inner.WithGroup(name),
		recorder: h.recorder,
		level:    h.level,
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	default:
		return "info"
	}
}

// extractMetadata collects log attributes into a JSON object string.
func extractMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true
	r.Attrs(func(a slog.Attr) bool {
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})
	sb.WriteString("}")
	return sb.String()
}

// escapeJSON escapes special characters in a string for JSON.
func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
