package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// TimestampLayout is the session log timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// Log is the append-only session log: one "[timestamp] message" line per
// event. Every Write reaches the file before it returns. A nil *Log drops
// all writes, which is how a failed open degrades.
type Log struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
}

// OpenLog opens path for appending, creating it if needed.
func OpenLog(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open log %s", path)
	}
	return &Log{w: f, closer: f, now: time.Now}, nil
}

// NewLog writes log lines to w using now for timestamps.
func NewLog(w io.Writer, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{w: w, now: now}
}

// Write appends one timestamped line.
func (l *Log) Write(msg string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return nil
	}
	_, err := fmt.Fprintf(l.w, "[%s] %s\n", l.now().Format(TimestampLayout), msg)
	return err
}

// Close closes the underlying file. Later writes are dropped.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w = nil
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
