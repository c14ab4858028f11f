package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gaspardpetit/mcptap/internal/config"
	"github.com/gaspardpetit/mcptap/internal/secret"
)

// runClearLogs removes captured traffic, the command log and the cached
// session token. With --include-config the config file goes too. Missing
// files are not an error.
func runClearLogs(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("clear-logs", flag.ContinueOnError)
	var cfg config.Config
	cfg.BindFlags(fs)
	includeConfig := fs.Bool("include-config", false, "also remove the config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config %s: %w", cfg.ConfigFile, err)
		}
	}

	for _, path := range []string{cfg.TrafficLog, cfg.CommandLog} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	if err := secret.Open(cfg.TokenFile).Clear(); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	if *includeConfig && cfg.ConfigFile != "" {
		if err := os.Remove(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", cfg.ConfigFile, err)
		}
	}
	fmt.Fprintln(stdout, "Cleared local logs and cached session.")
	return nil
}
