package proxy

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gaspardpetit/mcptap/internal/logx"
)

// Entry is one traffic log line: a relayed message with its direction and,
// for correlated responses, the round-trip duration.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Direction  string    `json:"direction"`
	Content    string    `json:"content"`
	DurationMS *float64  `json:"duration_ms,omitempty"`
}

// TrafficLog appends JSONL entries to a session log file. The file is opened
// once per session; writes from both relay directions serialize on the
// mutex. Every failure is swallowed with a warning because logging must
// never stop the relay.
type TrafficLog struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// OpenTrafficLog opens (or creates) the log at path, creating parent
// directories as needed. On failure it returns a disabled log that drops
// entries.
func OpenTrafficLog(path string) *TrafficLog {
	l := &TrafficLog{path: path}
	if path == "" {
		return l
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		logx.Log.Warn().Err(err).Str("path", path).Msg("traffic log directory unavailable")
		return l
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		logx.Log.Warn().Err(err).Str("path", path).Msg("traffic log unavailable")
		return l
	}
	l.f = f
	return l
}

// Append writes one entry. Disabled logs and write errors drop the entry.
func (l *TrafficLog) Append(e Entry) {
	if l == nil || l.f == nil {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		logx.Log.Warn().Err(err).Msg("traffic log encode failed")
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.Write(append(b, '\n')); err != nil {
		logx.Log.Warn().Err(err).Str("path", l.path).Msg("traffic log write failed")
	}
}

// Close releases the underlying file.
func (l *TrafficLog) Close() {
	if l == nil || l.f == nil {
		return
	}
	_ = l.f.Close()
	l.f = nil
}

// ReadEntries loads every entry from a traffic log file. Lines that do not
// parse are skipped.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	var out []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
