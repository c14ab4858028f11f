package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gaspardpetit/mcptap/internal/auth"
	"github.com/gaspardpetit/mcptap/internal/config"
	"github.com/gaspardpetit/mcptap/internal/logx"
	"github.com/gaspardpetit/mcptap/internal/secret"
)

// runInit validates an API key against the platform, caches the session
// token and writes the config file. The key comes from --api-key, the
// environment, or an interactive prompt.
func runInit(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	var cfg config.Config
	cfg.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config %s: %w", cfg.ConfigFile, err)
		}
	}
	logx.Configure(cfg.LogLevel)

	if cfg.APIKey == "" {
		fmt.Fprint(stdout, "Platform API key: ")
		sc := bufio.NewScanner(stdin)
		if !sc.Scan() {
			return errors.New("init: no API key provided")
		}
		cfg.APIKey = strings.TrimSpace(sc.Text())
	}
	if cfg.APIKey == "" {
		return errors.New("init: no API key provided")
	}

	tok, err := auth.New(cfg.APIURL).Exchange(ctx, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("init: API key validation failed: %w", err)
	}

	if err := secret.Open(cfg.TokenFile).Save(tok); err != nil {
		logx.Log.Warn().Err(err).Msg("could not cache session token")
	}
	if err := cfg.Save(cfg.ConfigFile); err != nil {
		return fmt.Errorf("init: write config %s: %w", cfg.ConfigFile, err)
	}

	who := tok.Claims.Subject
	if who == "" {
		who = tok.Claims.UserID
	}
	tier := tok.Claims.Tier
	if tier == "" {
		tier = auth.FreeTier
	}
	fmt.Fprintf(stdout, "Authenticated as %s (tier %s). Config written to %s\n", who, tier, cfg.ConfigFile)
	return nil
}
