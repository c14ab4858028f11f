package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	SetBuildInfo("1.0.0", "abc", "2024-01-01")
	RecordLine("request", 64)
	RecordLine("request", 36)
	RecordLine("response", 100)
	ObserveRequestDuration(100 * time.Millisecond)
	SetPendingCorrelations(2)
	RecordEventsDropped(3)
	RecordCommandBlocked("risk_analysis")

	if v := testutil.ToFloat64(linesRelayed.WithLabelValues("request")); v != 2 {
		t.Fatalf("request lines: %v", v)
	}
	if v := testutil.ToFloat64(bytesRelayed.WithLabelValues("request")); v != 100 {
		t.Fatalf("request bytes: %v", v)
	}
	if v := testutil.ToFloat64(pendingCorrelations); v != 2 {
		t.Fatalf("pending correlations: %v", v)
	}
	if v := testutil.ToFloat64(eventsDropped); v != 3 {
		t.Fatalf("events dropped: %v", v)
	}
	if v := testutil.ToFloat64(commandsBlocked.WithLabelValues("risk_analysis")); v != 1 {
		t.Fatalf("commands blocked: %v", v)
	}
	if v := testutil.ToFloat64(buildInfo.WithLabelValues("2024-01-01", "abc", "1.0.0")); v != 1 {
		t.Fatalf("build info: %v", v)
	}
}

func TestServeEndpoints(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := Serve(ctx, "127.0.0.1:0", func() any {
		return map[string]int{"pending": 1}
	})
	if err != nil {
		t.Fatalf("serve: %v", err)
	}

	get := func(path string) string {
		resp, err := http.Get("http://" + addr + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get %s: status %d", path, resp.StatusCode)
		}
		b, _ := io.ReadAll(resp.Body)
		return string(b)
	}

	if body := get("/healthz"); body != "ok" {
		t.Fatalf("healthz = %q", body)
	}
	if body := get("/status"); body != "{\"pending\":1}\n" {
		t.Fatalf("status = %q", body)
	}
	get("/metrics")
}
