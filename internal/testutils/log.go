package testutils

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// RecordingHandler is a slog.Handler keeping every record for later inspection.
// It is safe for concurrent use.
type RecordingHandler struct {
	mu      *sync.Mutex
	records *[]slog.Record
	attrs   []slog.Attr
}

// NewRecordingHandler returns an empty RecordingHandler.
func NewRecordingHandler() *RecordingHandler {
	return &RecordingHandler{
		mu:      &sync.Mutex{},
		records: &[]slog.Record{},
	}
}

// Enabled implements slog.Handler. Every level is recorded.
func (h *RecordingHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *RecordingHandler) Handle(_ context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, r)
	return nil
}

// WithAttrs implements slog.Handler. Derived handlers share the records of their parent.
func (h *RecordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RecordingHandler{
		mu:      h.mu,
		records: h.records,
		attrs:   append(slices.Clone(h.attrs), attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are ignored.
func (h *RecordingHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of the records handled so far.
func (h *RecordingHandler) Records() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(*h.records)
}

// HasMessage reports whether a record at level contains msg.
func (h *RecordingHandler) HasMessage(level slog.Level, msg string) bool {
	for _, r := range h.Records() {
		if r.Level == level && r.Message == msg {
			return true
		}
	}
	return false
}

// Attr returns the value of the first attribute named key on the first record with msg.
func (h *RecordingHandler) Attr(msg, key string) (slog.Value, bool) {
	for _, r := range h.Records() {
		if r.Message != msg {
			continue
		}
		var v slog.Value
		var found bool
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				v, found = a.Value, true
				return false
			}
			return true
		})
		return v, found
	}
	return slog.Value{}, false
}
