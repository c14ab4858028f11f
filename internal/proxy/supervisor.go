// Package proxy spawns the target MCP server and relays newline-delimited
// JSON-RPC between the caller's stdio and the child's, timing each
// request/response pair along the way. The relay is transparent: every line
// passes through byte-for-byte whether or not it parses as JSON-RPC.
package proxy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/gaspardpetit/mcptap/internal/jsonrpc"
	"github.com/gaspardpetit/mcptap/internal/logx"
	"github.com/gaspardpetit/mcptap/internal/metrics"
	"github.com/gaspardpetit/mcptap/internal/telemetry"
)

// maxLineBytes bounds a single relayed line. MCP payloads can embed file
// contents, so this is generous.
const maxLineBytes = 10 * 1024 * 1024

const sampleInterval = 2 * time.Second

// Supervisor runs one proxied MCP server session.
type Supervisor struct {
	// Command and Args are the (already filtered) launch command.
	Command string
	Args    []string

	// Log receives one entry per relayed line; may be a disabled log.
	Log *TrafficLog

	// Batcher ships relay events to the platform; nil disables telemetry.
	Batcher *telemetry.Batcher

	// PayloadLimit truncates telemetry payloads; 0 keeps whole lines.
	PayloadLimit int

	// Stdin and Stdout default to the process's own; tests inject pipes.
	Stdin  io.Reader
	Stdout io.Writer

	pending *tracker
	stats   *SessionStats
}

// Status reports live session counters for the status endpoint.
func (s *Supervisor) Status() StatusView {
	pending := 0
	if s.pending != nil {
		pending = s.pending.Len()
	}
	if s.stats == nil {
		return StatusView{PendingCorrelations: pending}
	}
	return s.stats.snapshot(pending)
}

// Run spawns the child and relays until it exits. The child's stderr passes
// straight through. The returned error is nil for a clean exit, the spawn
// error when the command could not start, or the child's *exec.ExitError so
// callers can mirror its exit code. Cancelling ctx kills the child.
func (s *Supervisor) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stderr = os.Stderr
	childIn, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("spawn %s: %w", s.Command, err)
	}
	childOut, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("spawn %s: %w", s.Command, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", s.Command, err)
	}
	logx.Log.Debug().Str("command", s.Command).Strs("args", s.Args).Int("pid", cmd.Process.Pid).Msg("child started")

	s.pending = newTracker()
	s.stats = newSessionStats()

	in := s.Stdin
	if in == nil {
		in = os.Stdin
	}
	out := s.Stdout
	if out == nil {
		out = os.Stdout
	}

	sampleCtx, stopSampling := context.WithCancel(ctx)
	defer stopSampling()
	go s.stats.sampleLoop(sampleCtx, cmd.Process.Pid, sampleInterval)

	// The outbound loop owns the child's stdin and closes it on EOF so the
	// child can shut down cleanly. It is not joined: a read on the caller's
	// stdin cannot be interrupted, and once the child is gone there is
	// nothing left to relay to.
	go s.outbound(ctx, in, childIn)

	inboundDone := make(chan struct{})
	go func() {
		defer close(inboundDone)
		s.inbound(ctx, out, childOut)
	}()

	select {
	case <-inboundDone:
	case <-ctx.Done():
		// CommandContext kills the child; its stdout EOFs right after.
		<-inboundDone
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Batcher.Flush(flushCtx)
	s.stats.logSummary()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("child exited: %w", err)
	}
	return nil
}

// outbound relays caller stdin to the child, tracking request ids.
func (s *Supervisor) outbound(ctx context.Context, in io.Reader, child io.WriteCloser) {
	defer func() {
		_ = child.Close()
	}()
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := sc.Bytes()
		s.Log.Append(Entry{Timestamp: time.Now().UTC(), Direction: "request", Content: string(line)})

		method, corrID := "", ""
		if env, ok := jsonrpc.Inspect(line); ok {
			method = env.Method
			if env.HasID() {
				corrID = env.CorrelationKey()
				s.pending.Track(corrID, time.Now())
				metrics.SetPendingCorrelations(s.pending.Len())
			}
		}
		s.Batcher.Buffer(ctx, telemetry.NewEvent(telemetry.DirectionRequest, line, method, corrID, s.PayloadLimit))
		s.stats.countLine("request", len(line))
		metrics.RecordLine("request", len(line))

		buf := make([]byte, 0, len(line)+1)
		buf = append(buf, line...)
		buf = append(buf, '\n')
		if _, err := child.Write(buf); err != nil {
			logx.Log.Warn().Err(err).Msg("write to child failed; stopping outbound relay")
			return
		}
	}
	if err := sc.Err(); err != nil {
		logx.Log.Warn().Err(err).Msg("stdin read failed; stopping outbound relay")
	}
}

// inbound relays child stdout to the caller, resolving correlation ids and
// annotating matched responses with their round-trip duration.
func (s *Supervisor) inbound(ctx context.Context, out io.Writer, child io.Reader) {
	sc := bufio.NewScanner(child)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := sc.Bytes()

		var durationMS *float64
		method, corrID := "", ""
		if env, ok := jsonrpc.Inspect(line); ok {
			method = env.Method
			if env.HasID() {
				corrID = env.CorrelationKey()
				if started, found := s.pending.Resolve(corrID); found {
					d := time.Since(started)
					ms := float64(d.Microseconds()) / 1000.0
					durationMS = &ms
					metrics.ObserveRequestDuration(d)
					metrics.SetPendingCorrelations(s.pending.Len())
				}
			}
		}
		s.Log.Append(Entry{Timestamp: time.Now().UTC(), Direction: "response", Content: string(line), DurationMS: durationMS})
		s.Batcher.Buffer(ctx, telemetry.NewEvent(telemetry.DirectionResponse, line, method, corrID, s.PayloadLimit))
		s.stats.countLine("response", len(line))
		metrics.RecordLine("response", len(line))

		buf := make([]byte, 0, len(line)+1)
		buf = append(buf, line...)
		buf = append(buf, '\n')
		if _, err := out.Write(buf); err != nil {
			logx.Log.Warn().Err(err).Msg("write to caller failed; stopping inbound relay")
			return
		}
	}
	if err := sc.Err(); err != nil {
		logx.Log.Warn().Err(err).Msg("child stdout read failed; stopping inbound relay")
	}
}
