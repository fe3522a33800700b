// Package obslog wires the pipeline's Debug-level tracing (dependency-
// resolution rounds, cycle detection, USING resolution passes) to a pair
// of slog handlers at once: a text handler for a human watching stderr,
// and an in-memory ring buffer a test can inspect afterward. Fanning both
// out from one log/slog.Logger is the whole point of samber/slog-multi;
// without it this package would need its own multi-handler plumbing.
package obslog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

// ringState is the storage a Ring and every handler derived from it
// (via WithAttrs/WithGroup) share, so a record logged through a derived
// logger still shows up to whoever holds the original Ring.
type ringState struct {
	mu       sync.Mutex
	capacity int
	records  []slog.Record
}

// Ring is a slog.Handler that keeps only the last capacity records, the
// handler a test attaches to assert "a cycle was logged" without
// depending on stderr output.
type Ring struct {
	state *ringState
	attrs []slog.Attr
}

// NewRing returns a Ring retaining up to capacity records.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 256
	}
	return &Ring{state: &ringState{capacity: capacity}}
}

func (r *Ring) Enabled(context.Context, slog.Level) bool { return true }

func (r *Ring) Handle(_ context.Context, rec slog.Record) error {
	if len(r.attrs) > 0 {
		rec.AddAttrs(r.attrs...)
	}

	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}
	return nil
}

func (r *Ring) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Ring{state: r.state, attrs: append(append([]slog.Attr{}, r.attrs...), attrs...)}
}

func (r *Ring) WithGroup(string) slog.Handler { return r }

// Records returns a snapshot of every record currently retained, oldest
// first.
func (r *Ring) Records() []slog.Record {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]slog.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Messages returns just the message text of every retained record, the
// shape most tests actually want to assert against.
func (r *Ring) Messages() []string {
	records := r.Records()
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Message
	}
	return out
}

// New returns a slog.Logger that fans Debug-level-and-above records out to
// both a text handler on w (stderr when w is nil) and ring, so a caller
// keeps a human-readable stream and a queryable in-memory one from one
// logger.
func New(w io.Writer, ring *Ring) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})

	handler := slogmulti.Fanout(text, ring)
	return slog.New(handler)
}
