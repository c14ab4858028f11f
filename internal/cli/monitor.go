package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gaspardpetit/mcptap/internal/auth"
	"github.com/gaspardpetit/mcptap/internal/config"
	"github.com/gaspardpetit/mcptap/internal/filter"
	"github.com/gaspardpetit/mcptap/internal/logx"
	"github.com/gaspardpetit/mcptap/internal/metrics"
	"github.com/gaspardpetit/mcptap/internal/platform"
	"github.com/gaspardpetit/mcptap/internal/proxy"
	"github.com/gaspardpetit/mcptap/internal/secret"
	"github.com/gaspardpetit/mcptap/internal/telemetry"
)

// runMonitor resolves the session, filters the launch command, then hands it
// to the supervisor and relays until the child exits.
func runMonitor(ctx context.Context, args []string, build Build) error {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	var cfg config.Config
	cfg.BindFlags(fs)
	var verb verbosity
	fs.Var(&verb, "v", "increase verbosity; repeat for more detail")
	localOnly := fs.Bool("local-only", false, "skip authentication and telemetry entirely")
	overrideTier := fs.String("override-tier", "", "force a tier instead of the token's claim")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("monitor: no command given; usage: mcptap monitor [flags] -- <command> [args...]")
	}

	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config %s: %w", cfg.ConfigFile, err)
		}
	}
	level := cfg.LogLevel
	if verb > 0 {
		level = logx.VerbosityLevel(int(verb))
	}
	logx.Configure(level)
	metrics.SetBuildInfo(build.Version, build.SHA, build.Date)

	override := *overrideTier
	if override == "" {
		override = cfg.DefaultTier
	}
	tok, tier := (*auth.Token)(nil), auth.FreeTier
	if *localOnly {
		if override != "" {
			tier = override
		}
		logx.Log.Debug().Msg("local-only session; platform disabled")
	} else {
		mgr := &auth.Manager{
			Store:  secret.Open(cfg.TokenFile),
			Client: auth.New(cfg.APIURL),
			APIKey: cfg.APIKey,
		}
		tok, tier = mgr.ResolveSession(ctx, override)
	}

	var client *platform.Client
	sessionToken, userID := "", ""
	if tok != nil {
		client = platform.New(cfg.APIURL, tok.Token)
		sessionToken = tok.Token
		userID = tok.Claims.UserID
	}

	pipeline := filter.Compose(filter.Deps{
		CommandLog:    cfg.CommandLog,
		Client:        client,
		Tier:          tier,
		UserID:        userID,
		RiskThreshold: cfg.RiskThreshold,
	})
	fc := &filter.Context{
		Request:      &filter.Request{Command: rest[0], Args: rest[1:]},
		SessionToken: sessionToken,
	}
	final, err := pipeline.Execute(ctx, fc)
	if err != nil {
		return err
	}

	var batcher *telemetry.Batcher
	if client != nil {
		batcher = telemetry.NewBatcher(client, telemetry.BatcherOptions{
			Size:        cfg.BatchSize,
			CLIVersion:  build.Version,
			ExcludePing: cfg.ExcludePing,
			OnDrop:      metrics.RecordEventsDropped,
		})
	}

	log := proxy.OpenTrafficLog(cfg.TrafficLog)
	defer log.Close()
	sup := &proxy.Supervisor{
		Command:      final.Command,
		Args:         final.Args,
		Log:          log,
		Batcher:      batcher,
		PayloadLimit: cfg.PayloadLimit,
	}

	if cfg.MetricsAddr != "" {
		addr, err := metrics.Serve(ctx, cfg.MetricsAddr, func() any { return sup.Status() })
		if err != nil {
			logx.Log.Warn().Err(err).Msg("metrics server failed to start")
		} else {
			logx.Log.Info().Str("addr", addr).Msg("metrics server listening")
		}
	}

	logx.Log.Info().
		Str("command", final.Command).
		Strs("args", final.Args).
		Str("tier", tier).
		Bool("authenticated", tok != nil).
		Msg("starting proxied session")
	return sup.Run(ctx)
}
