// Package transcript appends timestamped conversation lines to a flat text file.
package transcript

import (
	"fmt"
	"os"
	"time"
)

// TimestampLayout is the local, second-precision timestamp used in each line.
const TimestampLayout = "2006-01-02 15:04:05"

// Recorder appends lines to the transcript file at its path.
// A single process is assumed to be the only writer.
type Recorder struct {
	path string
	now  func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// New returns a Recorder for path. The file is created on first Record.
func New(path string, opts ...Option) *Recorder {
	r := &Recorder{path: path, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Record appends "[<timestamp>] text\n" and closes the file before returning.
func (r *Recorder) Record(text string) (err error) {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript %s: %w", r.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close transcript %s: %w", r.path, cerr)
		}
	}()

	line := fmt.Sprintf("[%s] %s\n", r.now().Format(TimestampLayout), text)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write transcript %s: %w", r.path, err)
	}
	return nil
}
