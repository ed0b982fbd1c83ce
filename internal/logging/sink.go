package logging

import (
	"bytes"
	"sync"
)

// LineSink is an append-only receiver of rendered log lines. Appends may
// happen concurrently with reads, so implementations must be safe for
// concurrent use.
type LineSink interface {
	Append(line string)
}

// sinkWriter adapts a LineSink to zapcore's WriteSyncer.
type sinkWriter struct {
	sink LineSink
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		w.sink.Append(string(line))
	}
	return len(p), nil
}

func (w *sinkWriter) Sync() error { return nil }

// MemorySink keeps the most recent log lines in a bounded ring buffer.
// It backs control surfaces that render the activity log on demand.
type MemorySink struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewMemorySink creates a sink retaining at most max lines.
func NewMemorySink(max int) *MemorySink {
	if max <= 0 {
		max = 500
	}
	return &MemorySink{max: max}
}

// Append adds a line, evicting the oldest once the buffer is full.
func (s *MemorySink) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, line)
	if len(s.lines) > s.max {
		s.lines = s.lines[len(s.lines)-s.max:]
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}
