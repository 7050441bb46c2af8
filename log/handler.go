package log

import (
	"context"
	"io"
	"log/slog"
)

// NewTerminalHandlerWithLevel returns a text handler writing records at or
// above lvl to w. Level names use the aligned upper-case form.
func NewTerminalHandlerWithLevel(w io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				l, ok := a.Value.Any().(slog.Level)
				if !ok {
					return a
				}
				name := LevelAlignedString(l)
				if useColor {
					name = colorize(l, name)
				}
				return slog.String(slog.LevelKey, name)
			}
			return a
		},
	}
	return slog.NewTextHandler(w, opts)
}

func colorize(l slog.Level, s string) string {
	switch {
	case l >= LevelCrit:
		return "\x1b[35m" + s + "\x1b[0m"
	case l >= slog.LevelError:
		return "\x1b[31m" + s + "\x1b[0m"
	case l >= slog.LevelWarn:
		return "\x1b[33m" + s + "\x1b[0m"
	case l >= slog.LevelInfo:
		return "\x1b[32m" + s + "\x1b[0m"
	default:
		return "\x1b[36m" + s + "\x1b[0m"
	}
}

type discardHandler struct{}

// DiscardHandler returns a handler that drops every record.
func DiscardHandler() slog.Handler { return discardHandler{} }

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
