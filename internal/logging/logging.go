// Package logging sets up the zerolog logger for the dashboard client.
//
// The terminal belongs to the UI, so log lines go to a file. A Ring keeps the
// most recent lines in memory for the activity overlay.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// RingSize is the number of entries a Ring keeps.
const RingSize = 200

// Options configures New.
type Options struct {
	File  string
	Level string
}

// New opens (appending) the log file and returns a logger writing to it and
// to ring. The returned closer closes the file.
func New(opts Options, ring *Ring) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}
	if ring != nil {
		writers = append(writers, ring)
	}
	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Entry is one decoded log line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Fields  string // remaining fields as compact key=value pairs
}

// Ring is an io.Writer that decodes zerolog JSON lines into a bounded buffer.
// It is safe for concurrent use.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	size    int
}

// NewRing creates a ring holding at most size entries.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = RingSize
	}
	return &Ring{size: size}
}

// Write implements io.Writer. Each call carries one JSON log line.
func (r *Ring) Write(p []byte) (int, error) {
	line := gjson.ParseBytes(p)
	e := Entry{
		Level:   line.Get(zerolog.LevelFieldName).String(),
		Message: line.Get(zerolog.MessageFieldName).String(),
	}
	if ts := line.Get(zerolog.TimestampFieldName); ts.Exists() {
		e.Time, _ = time.Parse(time.RFC3339, ts.String())
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	var extra []string
	line.ForEach(func(k, v gjson.Result) bool {
		switch k.String() {
		case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.TimestampFieldName:
		default:
			extra = append(extra, k.String()+"="+v.String())
		}
		return true
	})
	e.Fields = strings.Join(extra, " ")

	r.mu.Lock()
	r.entries = append(r.entries, e)
	if len(r.entries) > r.size {
		r.entries = r.entries[len(r.entries)-r.size:]
	}
	r.mu.Unlock()
	return len(p), nil
}

// Entries returns a copy of the buffered entries, oldest first.
func (r *Ring) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of buffered entries.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
