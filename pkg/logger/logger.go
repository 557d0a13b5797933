package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger is the diagnostic logging interface. It never carries transcript
// content; conversation turns go to the transcript recorder instead.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

type writerLogger struct {
	mu  *sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewWriterLogger builds a logger that writes one line per entry to w.
func NewWriterLogger(w io.Writer) Logger {
	return writerLogger{mu: &sync.Mutex{}, w: w, now: time.Now}
}

func (l writerLogger) write(level, msg string, obj any) {
	if l.w == nil {
		return
	}

	ts := l.now().Format(time.RFC3339)
	line := fmt.Sprintf("%s %-5s %s", ts, level, msg)
	if obj != nil {
		if b, err := json.Marshal(obj); err == nil {
			line += " obj=" + string(b)
		} else {
			line += fmt.Sprintf(" obj=%q", fmt.Sprintf("%+v", obj))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, line+"\n")
}

func (l writerLogger) Info(msg string, obj any)  { l.write("INFO", msg, obj) }
func (l writerLogger) Warn(msg string, obj any)  { l.write("WARN", msg, obj) }
func (l writerLogger) Debug(msg string, obj any) { l.write("DEBUG", msg, obj) }
func (l writerLogger) Error(msg string, obj any) { l.write("ERROR", msg, obj) }

// fieldLogger merges a fixed set of fields into every map-shaped entry.
type fieldLogger struct {
	next   Logger
	fields map[string]any
}

// WithFields returns a logger that adds fields to every entry. Entries whose
// obj is not a map[string]any are wrapped under the "obj" key.
func WithFields(l Logger, fields map[string]any) Logger {
	if l == nil {
		return NopLogger{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return fieldLogger{next: l, fields: copied}
}

func (l fieldLogger) merge(obj any) map[string]any {
	out := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		out[k] = v
	}
	switch v := obj.(type) {
	case nil:
	case map[string]any:
		for k, val := range v {
			out[k] = val
		}
	default:
		out["obj"] = v
	}
	return out
}

func (l fieldLogger) Info(msg string, obj any)  { l.next.Info(msg, l.merge(obj)) }
func (l fieldLogger) Warn(msg string, obj any)  { l.next.Warn(msg, l.merge(obj)) }
func (l fieldLogger) Debug(msg string, obj any) { l.next.Debug(msg, l.merge(obj)) }
func (l fieldLogger) Error(msg string, obj any) { l.next.Error(msg, l.merge(obj)) }

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}
