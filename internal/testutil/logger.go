// Package testutil provides logging helpers for tests.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/cjmtoolkit/cjmtoolkit/internal/logging"
)

// NewTestLogger returns a logger writing the cjmtoolkit diagnostic format,
// uncoloured, to t.Log(). Output only appears on failure or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(logging.NewHandler(testWriter{t}, nil, &logging.HandlerOptions{
		Level:   logging.LevelTrace,
		NoColor: true,
	}))
}

// NewRecordingLogger is NewTestLogger that also keeps every diagnostic in
// the returned history.
func NewRecordingLogger(t testing.TB) (*slog.Logger, *logging.History) {
	t.Helper()
	return logging.Record(NewTestLogger(t), logging.LevelTrace, logging.DefaultHistorySize)
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
