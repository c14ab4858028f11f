package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gaspardpetit/mcptap/internal/cli"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	code := cli.Run(ctx, os.Args[1:], cli.Build{Version: version, SHA: buildSHA, Date: buildDate})
	cancel()
	os.Exit(code)
}
