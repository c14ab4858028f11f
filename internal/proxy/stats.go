package proxy

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/gaspardpetit/mcptap/internal/logx"
)

// SessionStats aggregates relay counters and best-effort child process
// resource usage for the status endpoint and the end-of-session summary.
type SessionStats struct {
	mu            sync.Mutex
	requestLines  int64
	responseLines int64
	requestBytes  int64
	responseBytes int64
	peakRSS       uint64
	cpuPercent    float64
	sampled       bool
	started       time.Time
}

// StatusView is the JSON shape served by the status endpoint.
type StatusView struct {
	RequestLines        int64   `json:"request_lines"`
	ResponseLines       int64   `json:"response_lines"`
	RequestBytes        int64   `json:"request_bytes"`
	ResponseBytes       int64   `json:"response_bytes"`
	PendingCorrelations int     `json:"pending_correlations"`
	UptimeSeconds       float64 `json:"uptime_seconds"`
	PeakRSSBytes        uint64  `json:"peak_rss_bytes,omitempty"`
	CPUPercent          float64 `json:"cpu_percent,omitempty"`
}

func newSessionStats() *SessionStats {
	return &SessionStats{started: time.Now()}
}

func (s *SessionStats) countLine(direction string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if direction == "request" {
		s.requestLines++
		s.requestBytes += int64(n)
	} else {
		s.responseLines++
		s.responseBytes += int64(n)
	}
}

// snapshot renders the current counters; pending is supplied by the caller.
func (s *SessionStats) snapshot(pending int) StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatusView{
		RequestLines:        s.requestLines,
		ResponseLines:       s.responseLines,
		RequestBytes:        s.requestBytes,
		ResponseBytes:       s.responseBytes,
		PendingCorrelations: pending,
		UptimeSeconds:       time.Since(s.started).Seconds(),
		PeakRSSBytes:        s.peakRSS,
		CPUPercent:          s.cpuPercent,
	}
}

// sampleLoop polls the child's CPU and memory every interval until ctx ends.
// Sampling failures are expected around child exit and only logged at trace.
func (s *SessionStats) sampleLoop(ctx context.Context, pid int, interval time.Duration) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		logx.Log.Trace().Err(err).Int("pid", pid).Msg("process stats unavailable")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sampleOnce(proc)
		}
	}
}

func (s *SessionStats) sampleOnce(proc *process.Process) {
	cpu, err := proc.CPUPercent()
	if err != nil {
		return
	}
	mem, err := proc.MemoryInfo()
	if err != nil || mem == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampled = true
	s.cpuPercent = cpu
	if mem.RSS > s.peakRSS {
		s.peakRSS = mem.RSS
	}
}

// logSummary emits the end-of-session debug summary.
func (s *SessionStats) logSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := logx.Log.Debug().
		Int64("request_lines", s.requestLines).
		Int64("response_lines", s.responseLines).
		Int64("request_bytes", s.requestBytes).
		Int64("response_bytes", s.responseBytes).
		Dur("uptime", time.Since(s.started))
	if s.sampled {
		ev = ev.Uint64("peak_rss_bytes", s.peakRSS).Float64("cpu_percent", s.cpuPercent)
	}
	ev.Msg("session finished")
}
