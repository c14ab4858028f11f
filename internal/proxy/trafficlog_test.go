package proxy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTrafficLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "traffic.log")
	l := OpenTrafficLog(path)

	ms := 12.5
	l.Append(Entry{Timestamp: time.Now().UTC(), Direction: "request", Content: `{"jsonrpc":"2.0","id":1}`})
	l.Append(Entry{Timestamp: time.Now().UTC(), Direction: "response", Content: `{"jsonrpc":"2.0","id":1,"result":{}}`, DurationMS: &ms})
	l.Close()

	entries, err := ReadEntries(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Direction != "request" || entries[0].DurationMS != nil {
		t.Fatalf("request entry = %+v", entries[0])
	}
	if entries[1].Direction != "response" || entries[1].DurationMS == nil || *entries[1].DurationMS != 12.5 {
		t.Fatalf("response entry = %+v", entries[1])
	}
	if entries[0].Timestamp.IsZero() {
		t.Fatal("timestamp not persisted")
	}
}

func TestTrafficLogDisabledOnOpenFailure(t *testing.T) {
	// Parent path occupied by a file; open fails and the log goes inert.
	base := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(base, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	l := OpenTrafficLog(filepath.Join(base, "traffic.log"))
	l.Append(Entry{Direction: "request", Content: "still fine"})
	l.Close()
}

func TestTrafficLogAppendsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic.log")

	first := OpenTrafficLog(path)
	first.Append(Entry{Direction: "request", Content: "a"})
	first.Close()

	second := OpenTrafficLog(path)
	second.Append(Entry{Direction: "request", Content: "b"})
	second.Close()

	entries, err := ReadEntries(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want append across sessions", len(entries))
	}
}

func TestReadEntriesSkipsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic.log")
	data := `{"timestamp":"2026-01-02T15:04:05Z","direction":"request","content":"ok"}
not json at all
{"timestamp":"2026-01-02T15:04:06Z","direction":"response","content":"ok","duration_ms":3.25}
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	entries, err := ReadEntries(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want garbage skipped", len(entries))
	}
}
