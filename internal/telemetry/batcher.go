package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gaspardpetit/mcptap/internal/logx"
)

// Sender ships a finished batch to the platform.
type Sender interface {
	SendBatch(ctx context.Context, batch Batch) error
}

// Batcher queues events from both relay directions and flushes them once the
// configured batch size is reached. The default size of 1 sends each event
// as it arrives.
type Batcher struct {
	mu          sync.Mutex
	queue       []Event
	size        int
	sender      Sender
	cliVersion  string
	excludePing bool
	onDrop      func(n int)
}

// BatcherOptions configures a Batcher.
type BatcherOptions struct {
	// Size is the flush threshold; values below 1 are treated as 1.
	Size int
	// CLIVersion stamps every batch.
	CLIVersion string
	// ExcludePing drops MCP ping events instead of queueing them.
	ExcludePing bool
	// OnDrop observes how many events were lost when a send failed.
	OnDrop func(n int)
}

// NewBatcher builds a Batcher delivering through sender. A nil sender
// disables queueing entirely; Buffer becomes a no-op.
func NewBatcher(sender Sender, opts BatcherOptions) *Batcher {
	size := opts.Size
	if size < 1 {
		size = 1
	}
	return &Batcher{
		size:        size,
		sender:      sender,
		cliVersion:  opts.CLIVersion,
		excludePing: opts.ExcludePing,
		onDrop:      opts.OnDrop,
	}
}

// Buffer queues one event and flushes when the threshold is reached. Safe
// for concurrent use by both relay loops.
func (b *Batcher) Buffer(ctx context.Context, ev Event) {
	if b == nil || b.sender == nil {
		return
	}
	if b.excludePing && ev.Method == "ping" {
		return
	}
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	ready := len(b.queue) >= b.size
	b.mu.Unlock()
	if ready {
		b.Flush(ctx)
	}
}

// Flush drains the whole queue and sends it as one batch. Failed sends drop
// the batch; there is no retry and nothing is written to disk.
func (b *Batcher) Flush(ctx context.Context) {
	if b == nil || b.sender == nil {
		return
	}
	b.mu.Lock()
	events := b.queue
	b.queue = nil
	b.mu.Unlock()
	if len(events) == 0 {
		return
	}
	batch := Batch{
		Events:         events,
		CLIVersion:     b.cliVersion,
		BatchTimestamp: time.Now().UTC(),
		CorrelationID:  uuid.NewString(),
	}
	if err := b.sender.SendBatch(ctx, batch); err != nil {
		logx.Log.Warn().Err(err).Int("events", len(events)).Msg("telemetry batch dropped")
		if b.onDrop != nil {
			b.onDrop(len(events))
		}
	}
}

// Pending reports how many events are queued but not yet flushed.
func (b *Batcher) Pending() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
