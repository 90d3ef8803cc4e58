package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a clock that advances by step on each call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(step)
		return t
	}
}

func newTestHandler(console, file io.Writer, opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	opts.NoColor = true
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.Start = start
	opts.Now = fixedClock(start.Add(42*time.Millisecond), 0)
	return NewHandler(console, file, opts)
}

func TestHandler_Format(t *testing.T) {
	var console, file bytes.Buffer
	logger := slog.New(newTestHandler(&console, &file, nil))

	logger.Warn("node not found", "name", "Width", "index", 0)

	want := "[WRN] - [42ms] node not found\n   name=Width\n   index=0\n"
	assert.Equal(t, want, file.String())
	assert.Equal(t, want, console.String())
}

func TestHandler_LevelTags(t *testing.T) {
	tests := []struct {
		level slog.Level
		tag   string
	}{
		{LevelTrace, "[TRC]"},
		{slog.LevelDebug, "[DBG]"},
		{slog.LevelInfo, "[INF]"},
		{slog.LevelWarn, "[WRN]"},
		{slog.LevelError, "[ERR]"},
		{LevelFatal, "[FTL]"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			var file bytes.Buffer
			logger := slog.New(newTestHandler(nil, &file, nil))
			logger.Log(context.Background(), tt.level, "msg")
			assert.True(t, strings.HasPrefix(file.String(), tt.tag), file.String())
		})
	}
}

func TestHandler_LevelFilter(t *testing.T) {
	var file bytes.Buffer
	logger := slog.New(newTestHandler(nil, &file, &HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	Trace(context.Background(), logger, "hidden too")
	logger.Error("shown")
	Fatal(context.Background(), logger, "also shown")

	out := file.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[ERR] - [42ms] shown")
	assert.Contains(t, out, "[FTL] - [42ms] also shown")
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	var file bytes.Buffer
	logger := slog.New(newTestHandler(nil, &file, nil)).
		With("component", "loader").
		WithGroup("xml").
		With("file", "settings.xml")

	logger.Error("parse failed", "error", errors.New("unexpected EOF"), slog.Group("pos", "line", 3))

	out := file.String()
	assert.Contains(t, out, "   component=loader\n")
	assert.Contains(t, out, "   xml.file=settings.xml\n")
	assert.Contains(t, out, "   xml.error=\"unexpected EOF\"\n")
	assert.Contains(t, out, "   xml.pos.line=3\n")
}

func TestHandler_QuotesAwkwardStrings(t *testing.T) {
	var file bytes.Buffer
	logger := slog.New(newTestHandler(nil, &file, nil))
	logger.Info("m", "empty", "", "spaced", "a b", "plain", "ab")

	out := file.String()
	assert.Contains(t, out, `empty=""`)
	assert.Contains(t, out, `spaced="a b"`)
	assert.Contains(t, out, "plain=ab")
}

func TestHandler_ColorOnlyOnConsole(t *testing.T) {
	var console, file bytes.Buffer
	h := NewHandler(&console, &file, &HandlerOptions{})
	h.sink.styles = newLevelStyles(&console, false)
	slog.New(h).Error("boom")

	assert.NotContains(t, file.String(), "\x1b[")
}

func TestHandler_RecordsHistory(t *testing.T) {
	history := NewHistory(8)
	logger := slog.New(newTestHandler(nil, nil, &HandlerOptions{History: history}))

	logger.Warn("first", "k", "v")
	logger.Error("second")

	entries := history.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "warn", entries[0].Severity)
	assert.Equal(t, []Field{{Key: "k", Value: "v"}}, entries[0].Fields)
	assert.Equal(t, int64(42), entries[0].Millis)
	assert.Equal(t, "second", entries[1].Message)

	assert.Len(t, history.AtLeast(slog.LevelError), 1)
}

func TestHandler_ConcurrentWrites(t *testing.T) {
	var file bytes.Buffer
	logger := slog.New(newTestHandler(nil, &file, nil))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info("message", "worker", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 40)
	for i := 0; i < len(lines); i += 2 {
		assert.True(t, strings.HasPrefix(lines[i], "[INF]"), "header line expected, got %q", lines[i])
		assert.True(t, strings.HasPrefix(lines[i+1], "   worker="), "attribute line expected, got %q", lines[i+1])
	}
}

func TestHistory_Ring(t *testing.T) {
	h := NewHistory(3)
	assert.Empty(t, h.Entries())

	for i := 0; i < 5; i++ {
		h.Add(Entry{Message: fmt.Sprint(i)})
	}
	assert.Equal(t, 3, h.Len())

	var got []string
	for _, e := range h.Entries() {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"2", "3", "4"}, got)
}

func TestHistory_MinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Add(Entry{Message: "a"})
	h.Add(Entry{Message: "b"})
	require.Len(t, h.Entries(), 1)
	assert.Equal(t, "b", h.Entries()[0].Message)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"fatal", LevelFatal, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, LevelName(got)))
		})
	}
}

func mustParse(t *testing.T, s string) slog.Level {
	t.Helper()
	l, err := ParseLevel(s)
	require.NoError(t, err)
	return l
}

func TestSink_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "log.txt")
	s, err := New(Options{File: path, Console: &bytes.Buffer{}, NoColor: true})
	require.NoError(t, err)

	s.Logger().Info("settings file loaded successfully", "file", "settings.xml")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "settings file loaded successfully")
	assert.Contains(t, string(data), "   file=settings.xml")
	assert.Equal(t, 1, s.History().Len())
}

func TestSink_BadFile(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Options{File: dir, Console: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestDefault_Lifecycle(t *testing.T) {
	require.NoError(t, Close())

	_, err := Default()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Panics(t, func() { MustDefault() })
	assert.Nil(t, Recent())

	var console bytes.Buffer
	require.NoError(t, Init(Options{Console: &console, NoColor: true}))
	t.Cleanup(func() { _ = Close() })

	first := MustDefault()
	require.NoError(t, Init(Options{Console: &bytes.Buffer{}}))
	assert.Same(t, first, MustDefault(), "Init is init-once")

	first.Warn("hello")
	assert.Contains(t, console.String(), "[WRN]")
	require.Len(t, Recent(), 1)

	require.NoError(t, Close())
	_, err = Default()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestRecord(t *testing.T) {
	var out bytes.Buffer
	base := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelError}))

	logger, history := Record(base, slog.LevelDebug, 8)
	logger.Debug("node not found", "name", "Width")
	logger.With("file", "settings.cfg").Error("failed to open the settings file")

	entries := history.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "node not found", entries[0].Message)
	assert.Equal(t, []Field{{Key: "file", Value: "settings.cfg"}}, entries[1].Fields)

	assert.NotContains(t, out.String(), "node not found", "base handler keeps its own level")
	assert.Contains(t, out.String(), "failed to open the settings file")
}

func TestRecord_NilLogger(t *testing.T) {
	logger, history := Record(nil, slog.LevelWarn, 4)
	logger.Info("ignored")
	logger.Warn("kept")
	require.Equal(t, 1, history.Len())
	assert.Equal(t, "kept", history.Entries()[0].Message)
}
