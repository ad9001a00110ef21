package testsupport

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogSink collects the messages a logger emitted so tests can assert on
// them.
type LogSink struct {
	mu       sync.Mutex
	messages []string
}

// Messages returns a copy of every recorded message.
func (s *LogSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// Contains reports whether any recorded message contains substr.
func (s *LogSink) Contains(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

type sinkHandler struct {
	sink *LogSink
}

func (h sinkHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h sinkHandler) Handle(_ context.Context, record slog.Record) error {
	h.sink.mu.Lock()
	h.sink.messages = append(h.sink.messages, record.Message)
	h.sink.mu.Unlock()
	return nil
}

func (h sinkHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h sinkHandler) WithGroup(string) slog.Handler { return h }

// NewLogSink returns a logger that records every message into the
// returned sink.
func NewLogSink() (*slog.Logger, *LogSink) {
	sink := &LogSink{}
	return slog.New(sinkHandler{sink: sink}), sink
}
