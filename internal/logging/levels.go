// Package logging provides the diagnostic sink shared by the cjmtoolkit
// components.
//
// It is a log/slog handler that writes one header line per record,
//
//	[WRN] - [12ms] node not found
//	   name=Width
//	   index=0
//
// to a console writer, optionally coloured, and to a plain log file. Recent
// records are kept in a History so they can be shown to an operator later.
//
// Components take a *slog.Logger by injection. The process-wide sink set up
// by Init exists for the command line entry point only.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Levels beyond the ones slog defines.
const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// LevelName returns the lower case name of a level.
func LevelName(l slog.Level) string {
	switch {
	case l < slog.LevelDebug:
		return "trace"
	case l < slog.LevelInfo:
		return "debug"
	case l < slog.LevelWarn:
		return "info"
	case l < slog.LevelError:
		return "warn"
	case l < LevelFatal:
		return "error"
	default:
		return "fatal"
	}
}

func levelTag(l slog.Level) string {
	switch LevelName(l) {
	case "trace":
		return "[TRC]"
	case "debug":
		return "[DBG]"
	case "info":
		return "[INF]"
	case "warn":
		return "[WRN]"
	case "error":
		return "[ERR]"
	default:
		return "[FTL]"
	}
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want trace, debug, info, warn, error or fatal)", s)
	}
}

// Trace logs at LevelTrace.
func Trace(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.Log(ctx, LevelTrace, msg, args...)
}

// Fatal logs at LevelFatal. It does not exit the process.
func Fatal(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.Log(ctx, LevelFatal, msg, args...)
}
