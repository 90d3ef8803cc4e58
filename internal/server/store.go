package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// Snapshot describes the document a Store currently serves.
type Snapshot struct {
	File       string    `json:"file"`
	Format     string    `json:"format"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loaded_at"`
	// LastAttempt is the status of the most recent load, which differs from
	// Status when a reload failed and the previous tree was kept.
	LastAttempt string `json:"last_attempt"`
	LastError   string `json:"last_error,omitempty"`
}

// Store holds the settings document served over HTTP. Readers share the
// current document; Reload swaps in a new one only when it loaded cleanly.
type Store struct {
	file   string
	format settings.Format
	logger *slog.Logger

	mu          sync.RWMutex
	doc         *settings.Document
	generation  uint64
	loadedAt    time.Time
	lastAttempt settings.Status
	lastErr     error
}

// NewStore loads file and returns a store serving it. The store is usable
// even when the first load fails; the failure shows in its snapshot.
func NewStore(file string, format settings.Format, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{file: file, format: format, logger: logger}

	doc := s.load()
	s.doc = doc
	s.loadedAt = time.Now()
	s.lastAttempt = doc.Status()
	s.lastErr = doc.Err()
	return s
}

// NewStoreFromDocument returns a store serving an already loaded document.
// Reload reads doc's file again.
func NewStoreFromDocument(doc *settings.Document, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		file:        doc.FileName(),
		format:      doc.Format(),
		logger:      logger,
		doc:         doc,
		loadedAt:    time.Now(),
		lastAttempt: doc.Status(),
		lastErr:     doc.Err(),
	}
}

func (s *Store) load() *settings.Document {
	return settings.Load(s.file, s.format, settings.WithLogger(s.logger))
}

// File returns the path of the served settings file.
func (s *Store) File() string {
	return s.file
}

// Document returns the current document.
func (s *Store) Document() *settings.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Reload reads the settings file again. A document that failed to load
// replaces the current one only if the current one failed too.
func (s *Store) Reload() (settings.Status, error) {
	doc := s.load()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAttempt = doc.Status()
	s.lastErr = doc.Err()

	if doc.Status() != settings.StatusNoError {
		if s.doc.Status() != settings.StatusNoError {
			s.doc = doc
			s.loadedAt = time.Now()
		}
		s.logger.Warn("settings reload failed, keeping the previous tree", "file", s.file, "status", doc.Status(), "error", doc.Err())
		return doc.Status(), fmt.Errorf("reload %s: %w", s.file, doc.Err())
	}

	s.doc = doc
	s.generation++
	s.loadedAt = time.Now()
	s.logger.Info("settings file reloaded", "file", s.file, "generation", s.generation)
	return doc.Status(), nil
}

// Snapshot returns the store's current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		File:        s.file,
		Format:      s.format.String(),
		Status:      s.doc.Status().String(),
		Generation:  s.generation,
		LoadedAt:    s.loadedAt,
		LastAttempt: s.lastAttempt.String(),
	}
	if err := s.doc.Err(); err != nil {
		snap.Error = err.Error()
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}
