// Package cli implements the mcptap subcommands. Handlers return errors;
// Run translates them into process exit codes, mirroring the child's code
// when a proxied server exits non-zero.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/gaspardpetit/mcptap/internal/filter"
	"github.com/gaspardpetit/mcptap/internal/logx"
	"github.com/gaspardpetit/mcptap/internal/metrics"
)

// Build identifies the binary; main fills it from ldflags.
type Build struct {
	Version string
	SHA     string
	Date    string
}

const usage = `mcptap proxies a stdio MCP server, logging and reporting its traffic.

Usage:
  mcptap monitor [flags] -- <command> [args...]   run a server behind the proxy
  mcptap init [flags]                             exchange an API key and save config
  mcptap config [flags]                           show the resolved configuration
  mcptap logs [flags]                             print recent traffic log entries
  mcptap clear-logs [flags]                       delete logs and cached credentials
  mcptap doctor [flags]                           inspect the cached session token
  mcptap version                                  print build information

Run 'mcptap <command> -h' for command flags.
`

// Run dispatches a subcommand and returns the process exit code.
func Run(ctx context.Context, args []string, build Build) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "version", "--version", "-version":
		fmt.Printf("mcptap version=%s sha=%s date=%s\n", build.Version, build.SHA, build.Date)
		return 0
	case "help", "--help", "-h":
		fmt.Fprint(os.Stderr, usage)
		return 0
	case "monitor":
		err = runMonitor(ctx, args[1:], build)
	case "init":
		err = runInit(ctx, args[1:], os.Stdin, os.Stdout)
	case "config":
		err = runConfigShow(args[1:], os.Stdout)
	case "logs":
		err = runLogs(args[1:], os.Stdout)
	case "clear-logs":
		err = runClearLogs(args[1:], os.Stdout)
	case "doctor":
		err = runDoctor(args[1:], os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "mcptap: unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err == nil {
		return 0
	}

	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logx.Log.Error().Int("code", exitErr.ExitCode()).Msg("child process exited with error")
		return exitErr.ExitCode()
	}
	var blocked *filter.BlockedError
	if errors.As(err, &blocked) {
		metrics.RecordCommandBlocked(blocked.Filter)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// verbosity counts repeated -v flags.
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) Set(string) error {
	*v++
	return nil
}

func (v *verbosity) IsBoolFlag() bool { return true }
