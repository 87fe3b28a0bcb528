// Package fake provides an in-memory observability.Logger for tests.
package fake

import (
	"context"
	"slices"
	"sync"

	"github.com/release-engineering/pubtools-go/pkg/observability"
)

var _ observability.Logger = (*Logger)(nil)

// Entry is one captured log line.
type Entry struct {
	Level   observability.LogLevel
	Message string
	Fields  []observability.Field
}

// Field returns the value logged under key.
func (e Entry) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Logger records every line it is given. It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLogger returns an empty Logger.
func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) record(level observability.LogLevel, msg string, fields []observability.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: msg, Fields: slices.Clone(fields)})
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.record(observability.LogLevelDebug, msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.record(observability.LogLevelInfo, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.record(observability.LogLevelWarn, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.record(observability.LogLevelError, msg, fields)
}

// Entries returns a copy of the captured lines in order.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Messages returns the captured messages in order.
func (l *Logger) Messages() []string {
	entries := l.Entries()
	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}

// Count returns how many lines were logged at level.
func (l *Logger) Count(level observability.LogLevel) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
