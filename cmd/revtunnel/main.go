// Package main is the entry point for the revtunnel CLI.
//
// revtunnel keeps a reverse ssh tunnel open from a machine behind NAT (for
// example a shipboard computer) to a reachable host, so that somebody on that
// host can log back in. The ssh client is restarted a bounded number of times
// with a delay between attempts; a process manager such as systemd restarts
// revtunnel itself.
//
// Commands: tunnel, check, init, install.
//
// For detailed usage information, run:
//
//	revtunnel --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/revtunnel/cmd/revtunnel/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
