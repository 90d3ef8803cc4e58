package logging

import (
	"log/slog"
	"sync"
	"time"
)

// Field is a key/value pair attached to an Entry.
type Field struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Entry is a recorded diagnostic.
type Entry struct {
	Level    slog.Level    `json:"-" yaml:"-"`
	Severity string        `json:"severity" yaml:"severity"`
	Elapsed  time.Duration `json:"-" yaml:"-"`
	Millis   int64         `json:"elapsed_ms" yaml:"elapsed_ms"`
	Message  string        `json:"message" yaml:"message"`
	Fields   []Field       `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// History keeps the most recent entries in a fixed size ring.
type History struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	size    int
}

// NewHistory returns a History holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{entries: make([]Entry, capacity)}
}

// Add records e, dropping the oldest entry when the ring is full.
func (h *History) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = e
	h.next = (h.next + 1) % len(h.entries)
	if h.size < len(h.entries) {
		h.size++
	}
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// Entries returns a copy of the held entries, oldest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, 0, h.size)
	start := (h.next - h.size + len(h.entries)) % len(h.entries)
	for i := 0; i < h.size; i++ {
		out = append(out, h.entries[(start+i)%len(h.entries)])
	}
	return out
}

// AtLeast returns the entries at or above level, oldest first.
func (h *History) AtLeast(level slog.Level) []Entry {
	var out []Entry
	for _, e := range h.Entries() {
		if e.Level >= level {
			out = append(out, e)
		}
	}
	return out
}
