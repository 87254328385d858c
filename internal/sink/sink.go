// Package sink abstracts where unit messages are written.
package sink

import (
	"io"
	"strings"
	"sync"
	"time"
)

// Sink receives whole output lines
type Sink interface {
	Emit(line string) error
}

// WriterSink writes each line to an io.Writer with a single Write call,
// so lines from concurrent units never interleave mid-line
type WriterSink struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterSink creates a sink writing to w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit writes line followed by a newline
func (s *WriterSink) Emit(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// Memory captures lines for later inspection
type Memory struct {
	lines []string
	mu    sync.Mutex
}

// NewMemory creates an empty capturing sink
func NewMemory() *Memory {
	return &Memory{}
}

// Emit records the line
func (m *Memory) Emit(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return nil
}

// Lines returns a copy of every captured line in emission order
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Count returns the number of captured lines containing substr
func (m *Memory) Count(substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

// Multi sends to multiple sinks
type Multi struct {
	sinks []Sink
}

// NewMulti creates a sink that emits to all provided sinks
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Emit sends the line to all sinks
func (m *Multi) Emit(line string) error {
	var lastErr error
	for _, s := range m.sinks {
		if err := s.Emit(line); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Discard drops every line
type Discard struct{}

func (Discard) Emit(string) error { return nil }

// Timestamps prefixes every line with the wall-clock time it was emitted
type Timestamps struct {
	next Sink
	now  func() time.Time
}

// WithTimestamps wraps next so each line starts with "15:04:05.000 "
func WithTimestamps(next Sink) *Timestamps {
	return &Timestamps{next: next, now: time.Now}
}

// Emit prefixes and forwards the line
func (t *Timestamps) Emit(line string) error {
	return t.next.Emit(t.now().Format("15:04:05.000") + " " + line)
}
