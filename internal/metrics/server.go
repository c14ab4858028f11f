package metrics

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaspardpetit/mcptap/internal/logx"
)

// Serve starts an HTTP server exposing /metrics, /healthz and /status on
// addr. Status reports whatever the provider returns, marshaled as JSON.
// The server shuts down when ctx is cancelled. It returns the address it is
// listening on, useful when addr requests port 0.
func Serve(ctx context.Context, addr string, status func() any) (string, error) {
	reg := prometheus.NewRegistry()
	Register(reg)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var v any
		if status != nil {
			v = status()
		}
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logx.Log.Warn().Err(err).Msg("status encode failed")
		}
	})

	srv := &http.Server{Handler: r}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	actual := ln.Addr().String()
	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(c)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logx.Log.Error().Err(err).Str("addr", actual).Msg("metrics server error")
		}
	}()
	return actual, nil
}
