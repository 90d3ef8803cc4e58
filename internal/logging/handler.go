package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const indent = "   "

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level is the minimum level written. Defaults to LevelTrace.
	Level slog.Leveler
	// NoColor disables ANSI colours on the console writer.
	NoColor bool
	// History, if set, receives every written record.
	History *History
	// Start is the reference for the elapsed time printed in each header.
	// Defaults to the handler creation time.
	Start time.Time
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// sink is the state shared by a Handler and its clones.
type sink struct {
	mu      sync.Mutex
	console io.Writer
	file    io.Writer
	styles  map[string]lipgloss.Style
	history *History
	start   time.Time
	now     func() time.Time
}

// Handler is a slog.Handler writing the cjmtoolkit log format. It is safe
// for concurrent use.
type Handler struct {
	level  slog.Leveler
	sink   *sink
	attrs  []slog.Attr
	groups []string
}

// NewHandler returns a handler writing coloured output to console and
// plain output to file. Either writer may be nil.
func NewHandler(console, file io.Writer, opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	level := opts.Level
	if level == nil {
		level = LevelTrace
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := opts.Start
	if start.IsZero() {
		start = now()
	}

	return &Handler{
		level: level,
		sink: &sink{
			console: console,
			file:    file,
			styles:  newLevelStyles(console, opts.NoColor),
			history: opts.History,
			start:   start,
			now:     now,
		},
	}
}

func newLevelStyles(w io.Writer, noColor bool) map[string]lipgloss.Style {
	if w == nil {
		w = io.Discard
	}
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return map[string]lipgloss.Style{
		"trace": r.NewStyle(),
		"debug": r.NewStyle().Faint(true),
		"info":  r.NewStyle().Foreground(lipgloss.Color("7")),
		"warn":  r.NewStyle().Foreground(lipgloss.Color("3")),
		"error": r.NewStyle().Foreground(lipgloss.Color("1")),
		"fatal": r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	elapsed := h.sink.now().Sub(h.sink.start)

	var fields []Field
	for _, a := range h.attrs {
		fields = appendAttr(fields, "", a)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, prefix, a)
		return true
	})

	var header bytes.Buffer
	header.WriteString(levelTag(r.Level))
	header.WriteString(" - [")
	header.WriteString(formatMillis(elapsed))
	header.WriteString("ms] ")
	header.WriteString(r.Message)

	var body bytes.Buffer
	for _, f := range fields {
		body.WriteString(indent)
		body.WriteString(f.Key)
		body.WriteByte('=')
		body.WriteString(f.Value)
		body.WriteByte('\n')
	}

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	if h.sink.console != nil {
		style := h.sink.styles[LevelName(r.Level)]
		line := style.Render(header.String()) + "\n" + body.String()
		if _, err := io.WriteString(h.sink.console, line); err != nil {
			return err
		}
	}
	if h.sink.file != nil {
		line := header.String() + "\n" + body.String()
		if _, err := io.WriteString(h.sink.file, line); err != nil {
			return err
		}
	}
	if h.sink.history != nil {
		h.sink.history.Add(Entry{
			Level:    r.Level,
			Severity: LevelName(r.Level),
			Elapsed:  elapsed,
			Millis:   elapsed.Milliseconds(),
			Message:  r.Message,
			Fields:   fields,
		})
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	prefix := strings.Join(h.groups, ".")
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func appendAttr(fields []Field, prefix string, a slog.Attr) []Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			fields = appendAttr(fields, key, ga)
		}
		return fields
	}
	return append(fields, Field{Key: key, Value: formatValue(a.Value)})
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindString, slog.KindAny:
		return quoteIfNeeded(v.String())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(max(d.Milliseconds(), 0), 10)
}
