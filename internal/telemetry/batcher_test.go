package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type captureSender struct {
	mu      sync.Mutex
	batches []Batch
	err     error
}

func (s *captureSender) SendBatch(_ context.Context, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, batch)
	return nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func TestBufferFlushesAtThreshold(t *testing.T) {
	sender := &captureSender{}
	b := NewBatcher(sender, BatcherOptions{Size: 3, CLIVersion: "1.2.3"})
	ctx := context.Background()

	b.Buffer(ctx, NewEvent(DirectionRequest, []byte("one"), "", "", 0))
	b.Buffer(ctx, NewEvent(DirectionRequest, []byte("two"), "", "", 0))
	if sender.count() != 0 {
		t.Fatal("flushed before threshold")
	}
	if b.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", b.Pending())
	}

	b.Buffer(ctx, NewEvent(DirectionResponse, []byte("three"), "", "", 0))
	if sender.count() != 1 {
		t.Fatalf("batches = %d, want 1", sender.count())
	}
	if b.Pending() != 0 {
		t.Fatal("queue not drained")
	}

	batch := sender.batches[0]
	if len(batch.Events) != 3 {
		t.Fatalf("batch carried %d events", len(batch.Events))
	}
	if batch.CLIVersion != "1.2.3" {
		t.Fatalf("cliVersion = %q", batch.CLIVersion)
	}
	if batch.CorrelationID == "" {
		t.Fatal("batch missing correlation id")
	}
}

func TestDefaultSizeSendsImmediately(t *testing.T) {
	sender := &captureSender{}
	b := NewBatcher(sender, BatcherOptions{})
	b.Buffer(context.Background(), NewEvent(DirectionRequest, []byte("x"), "", "", 0))
	if sender.count() != 1 {
		t.Fatalf("batches = %d, want 1 for size 1", sender.count())
	}
}

func TestSendFailureDropsBatch(t *testing.T) {
	sender := &captureSender{err: errors.New("boom")}
	dropped := 0
	b := NewBatcher(sender, BatcherOptions{OnDrop: func(n int) { dropped += n }})

	b.Buffer(context.Background(), NewEvent(DirectionRequest, []byte("x"), "", "", 0))
	if b.Pending() != 0 {
		t.Fatal("failed batch must not stay queued")
	}
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}

	sender.err = nil
	b.Buffer(context.Background(), NewEvent(DirectionRequest, []byte("y"), "", "", 0))
	if sender.count() != 1 {
		t.Fatal("batcher did not recover after a failed send")
	}
	if len(sender.batches[0].Events) != 1 {
		t.Fatal("dropped events leaked into the next batch")
	}
}

func TestExcludePing(t *testing.T) {
	sender := &captureSender{}
	b := NewBatcher(sender, BatcherOptions{Size: 1, ExcludePing: true})

	b.Buffer(context.Background(), NewEvent(DirectionRequest, []byte(`{"method":"ping"}`), "ping", "", 0))
	if sender.count() != 0 {
		t.Fatal("ping event was not excluded")
	}

	b.Buffer(context.Background(), NewEvent(DirectionRequest, []byte(`{"method":"tools/list"}`), "tools/list", "", 0))
	if sender.count() != 1 {
		t.Fatal("non-ping event was excluded")
	}
}

func TestConcurrentBuffer(t *testing.T) {
	sender := &captureSender{}
	b := NewBatcher(sender, BatcherOptions{Size: 10})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(dir Direction) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Buffer(ctx, NewEvent(dir, []byte("line"), "", "", 0))
			}
		}([]Direction{DirectionRequest, DirectionResponse}[i])
	}
	wg.Wait()
	b.Flush(ctx)

	total := 0
	for _, batch := range sender.batches {
		total += len(batch.Events)
	}
	if total != 100 {
		t.Fatalf("events delivered = %d, want 100", total)
	}
}

func TestEventPayloadTruncation(t *testing.T) {
	line := []byte("0123456789")
	ev := NewEvent(DirectionRequest, line, "m", "7", 4)
	if string(ev.Payload) != "0123" {
		t.Fatalf("payload = %q", ev.Payload)
	}
	if ev.Size != 10 {
		t.Fatalf("size = %d, want original length", ev.Size)
	}

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["payload"] != "MDEyMw==" {
		t.Fatalf("payload not base64: %v", decoded["payload"])
	}
	if decoded["correlationId"] != "7" {
		t.Fatalf("correlationId = %v", decoded["correlationId"])
	}
}
