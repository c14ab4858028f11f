package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gaspardpetit/mcptap/internal/config"
	"github.com/gaspardpetit/mcptap/internal/jsonrpc"
	"github.com/gaspardpetit/mcptap/internal/proxy"
)

// runLogs prints captured traffic from the traffic log, newest entries last.
func runLogs(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	var cfg config.Config
	cfg.BindFlags(fs)
	requestsOnly := fs.Bool("requests", false, "show only requests")
	responsesOnly := fs.Bool("responses", false, "show only responses")
	method := fs.String("method", "", "show only entries for this JSON-RPC method")
	limit := fs.Int("n", 20, "number of entries to show (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config %s: %w", cfg.ConfigFile, err)
		}
	}

	entries, err := proxy.ReadEntries(cfg.TrafficLog)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stdout, "no traffic log at %s\n", cfg.TrafficLog)
			return nil
		}
		return fmt.Errorf("read traffic log: %w", err)
	}

	kept := entries[:0]
	for _, e := range entries {
		if *requestsOnly && e.Direction != "request" {
			continue
		}
		if *responsesOnly && e.Direction != "response" {
			continue
		}
		if *method != "" && entryMethod(e) != *method {
			continue
		}
		kept = append(kept, e)
	}
	if *limit > 0 && len(kept) > *limit {
		kept = kept[len(kept)-*limit:]
	}
	for _, e := range kept {
		if e.DurationMS != nil {
			fmt.Fprintf(stdout, "%s %-8s (%.3f ms) %s\n", e.Timestamp.Format("15:04:05.000"), e.Direction, *e.DurationMS, e.Content)
		} else {
			fmt.Fprintf(stdout, "%s %-8s %s\n", e.Timestamp.Format("15:04:05.000"), e.Direction, e.Content)
		}
	}
	return nil
}

func entryMethod(e proxy.Entry) string {
	env, ok := jsonrpc.Inspect([]byte(e.Content))
	if !ok {
		return ""
	}
	return env.Method
}
