package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gaspardpetit/mcptap/internal/auth"
	"github.com/gaspardpetit/mcptap/internal/config"
	"github.com/gaspardpetit/mcptap/internal/secret"
)

// runDoctor reports on the local setup: config file, cached session and
// log files.
func runDoctor(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	var cfg config.Config
	cfg.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	loaded := true
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load config %s: %w", cfg.ConfigFile, err)
			}
			loaded = false
		}
	}

	if loaded {
		fmt.Fprintf(stdout, "config:      %s\n", cfg.ConfigFile)
	} else {
		fmt.Fprintf(stdout, "config:      %s (missing, run mcptap init)\n", cfg.ConfigFile)
	}
	if cfg.APIKey != "" {
		fmt.Fprintf(stdout, "api key:     %s\n", config.MaskSecret(cfg.APIKey))
	} else {
		fmt.Fprintln(stdout, "api key:     not set")
	}
	fmt.Fprintf(stdout, "api url:     %s\n", cfg.APIURL)

	store := secret.Open(cfg.TokenFile)
	if !store.Exists() {
		fmt.Fprintln(stdout, "session:     no cached token")
	} else if tok, err := store.Load(); err != nil {
		fmt.Fprintf(stdout, "session:     unreadable (%v)\n", err)
	} else {
		who := tok.Claims.Subject
		if who == "" {
			who = tok.Claims.UserID
		}
		tier := tok.Claims.Tier
		if tier == "" {
			tier = auth.FreeTier
		}
		if auth.IsExpired(tok, time.Now()) {
			fmt.Fprintf(stdout, "session:     %s (tier %s), expired\n", who, tier)
		} else {
			left := time.Until(time.Unix(tok.ExpiresAt, 0)).Round(time.Second)
			fmt.Fprintf(stdout, "session:     %s (tier %s), expires in %s\n", who, tier, left)
		}
	}

	printLogStatus(stdout, "traffic log", cfg.TrafficLog)
	printLogStatus(stdout, "command log", cfg.CommandLog)
	return nil
}

func printLogStatus(stdout io.Writer, label, path string) {
	if path == "" {
		fmt.Fprintf(stdout, "%s: disabled\n", label)
		return
	}
	fi, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(stdout, "%s: %s (empty)\n", label, path)
		return
	}
	fmt.Fprintf(stdout, "%s: %s (%d bytes)\n", label, path, fi.Size())
}
