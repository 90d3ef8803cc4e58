package logging

import (
	"context"
	"log/slog"
)

// fanoutHandler sends each record to every handler enabled for its level.
type fanoutHandler []slog.Handler

// Fanout returns a handler writing to all of handlers.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanoutHandler(handlers)
}

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for i, h := range handlers {
		derived[i] = h.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for i, h := range handlers {
		derived[i] = h.WithGroup(name)
	}
	return derived
}

// Record returns a logger that writes to logger and also keeps every record
// at or above level in a new History of the given capacity.
func Record(logger *slog.Logger, level slog.Level, capacity int) (*slog.Logger, *History) {
	history := NewHistory(capacity)
	recorder := NewHandler(nil, nil, &HandlerOptions{Level: level, History: history})
	if logger == nil {
		return slog.New(recorder), history
	}
	return slog.New(Fanout(logger.Handler(), recorder)), history
}
