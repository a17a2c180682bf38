package mocks

import (
	"sync"

	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
)

// LogEntry is one captured log call
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// RecordingLogger captures log calls so tests can assert on warnings
type RecordingLogger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Info(msg string, fields ...ports.Field)  { l.record("info", msg, fields) }
func (l *RecordingLogger) Error(msg string, fields ...ports.Field) { l.record("error", msg, fields) }
func (l *RecordingLogger) Warn(msg string, fields ...ports.Field)  { l.record("warn", msg, fields) }
func (l *RecordingLogger) Debug(msg string, fields ...ports.Field) { l.record("debug", msg, fields) }

func (l *RecordingLogger) record(level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := LogEntry{Level: level, Message: msg, Fields: make(map[string]interface{}, len(fields))}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}
	l.Entries = append(l.Entries, entry)
}

// ByLevel returns the captured entries at level
func (l *RecordingLogger) ByLevel(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogEntry
	for _, e := range l.Entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
