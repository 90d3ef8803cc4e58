package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotInitialized is returned when the process-wide sink is used before Init.
var ErrNotInitialized = errors.New("logging: sink not initialized")

// DefaultHistorySize is the number of entries a Sink remembers by default.
const DefaultHistorySize = 256

// Options configures a Sink.
type Options struct {
	// File is the path of the log file. Empty disables file output.
	File string
	// Level is the minimum level written.
	Level slog.Level
	// NoColor disables ANSI colours on the console.
	NoColor bool
	// Console receives coloured output. Defaults to os.Stderr; use
	// io.Discard to silence the console.
	Console io.Writer
	// HistorySize bounds the in-memory history. Defaults to DefaultHistorySize.
	HistorySize int
}

// Sink owns a logger, its log file and its history.
type Sink struct {
	logger  *slog.Logger
	file    *os.File
	history *History
}

// New creates a Sink. The log file and its directory are created if needed.
func New(opts Options) (*Sink, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	size := opts.HistorySize
	if size <= 0 {
		size = DefaultHistorySize
	}

	s := &Sink{history: NewHistory(size)}

	var file io.Writer
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.Create(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		s.file = f
		file = f
	}

	s.logger = slog.New(NewHandler(console, file, &HandlerOptions{
		Level:   opts.Level,
		NoColor: opts.NoColor,
		History: s.history,
	}))
	return s, nil
}

// Logger returns the sink's logger.
func (s *Sink) Logger() *slog.Logger {
	return s.logger
}

// History returns the sink's recent entries.
func (s *Sink) History() *History {
	return s.history
}

// Close closes the log file, if any.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

var (
	defaultMu   sync.Mutex
	defaultSink *Sink
)

// Init sets up the process-wide sink. Calls after the first successful one
// are no-ops until Close.
func Init(opts Options) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultSink != nil {
		return nil
	}
	s, err := New(opts)
	if err != nil {
		return err
	}
	defaultSink = s
	return nil
}

// Default returns the process-wide logger.
func Default() (*slog.Logger, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultSink == nil {
		return nil, ErrNotInitialized
	}
	return defaultSink.logger, nil
}

// MustDefault is like Default but panics before Init.
func MustDefault() *slog.Logger {
	l, err := Default()
	if err != nil {
		panic(err)
	}
	return l
}

// Recent returns the entries remembered by the process-wide sink.
func Recent() []Entry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultSink == nil {
		return nil
	}
	return defaultSink.history.Entries()
}

// Close tears down the process-wide sink.
func Close() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultSink == nil {
		return nil
	}
	err := defaultSink.Close()
	defaultSink = nil
	return err
}
